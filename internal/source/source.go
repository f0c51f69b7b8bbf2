// Package source defines content sources and the text helpers they share.
package source

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

// Source fetches raw items from one upstream. Sources never retry; the next
// aggregation cycle does.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// CleanText strips markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NameFromURL turns https://www.theverge.com/rss into "Theverge".
func NameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "RSS Feed"
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	label, _, _ := strings.Cut(host, ".")
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}
