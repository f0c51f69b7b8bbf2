package playwright

import (
	"encoding/json"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

func TestCookieSurvivesStorage(t *testing.T) {
	src := playwright.Cookie{
		Name:     "auth_token",
		Value:    "abc",
		Domain:   ".twitter.com",
		Path:     "/",
		Expires:  1767225600,
		HttpOnly: true,
		Secure:   true,
		SameSite: playwright.SameSiteAttributeNone,
	}

	raw, err := json.Marshal([]cookie{fromPlaywright(src)})
	require.NoError(t, err)

	var stored []cookie
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)

	opt := stored[0].optional()
	require.Equal(t, "auth_token", opt.Name)
	require.Equal(t, ".twitter.com", *opt.Domain)
	require.Equal(t, 1767225600.0, *opt.Expires)
	require.True(t, *opt.HttpOnly)
	require.Equal(t, playwright.SameSiteAttributeNone, opt.SameSite)
}

func TestSessionCookieHasNoExpiry(t *testing.T) {
	opt := cookie{Name: "ct0", Value: "x", Domain: ".twitter.com", Path: "/", Expires: -1}.optional()
	require.Nil(t, opt.Expires)
	require.Nil(t, opt.SameSite)
}
