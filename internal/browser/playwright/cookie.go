package playwright

import (
	"math/rand"

	"github.com/playwright-community/playwright-go"
)

// cookie is the stored form of a browser cookie.
type cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HttpOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

func fromPlaywright(c playwright.Cookie) cookie {
	out := cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
	}
	if c.SameSite != nil {
		out.SameSite = string(*c.SameSite)
	}
	return out
}

func (c cookie) optional() playwright.OptionalCookie {
	out := playwright.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   playwright.String(c.Domain),
		Path:     playwright.String(c.Path),
		HttpOnly: playwright.Bool(c.HttpOnly),
		Secure:   playwright.Bool(c.Secure),
	}
	if c.Expires > 0 {
		out.Expires = playwright.Float(c.Expires)
	}
	switch c.SameSite {
	case "Strict":
		out.SameSite = playwright.SameSiteAttributeStrict
	case "Lax":
		out.SameSite = playwright.SameSiteAttributeLax
	case "None":
		out.SameSite = playwright.SameSiteAttributeNone
	}
	return out
}

var randIntn = rand.Intn
