package render

import (
	"html"
	"net/url"
	"strings"
	"unicode"
)

// Sanitizer neutralizes untrusted text before a surface places it in its markup
type Sanitizer interface {
	// Text escapes a free-text value
	Text(s string) string
	// URL escapes a link target
	URL(s string) string
}

// HTML escapes text for HTML element content and attribute values.
type HTML struct{}

// Text escapes the five markup-significant characters
func (HTML) Text(s string) string {
	return html.EscapeString(s)
}

// URL escapes a link target. Targets whose scheme is not http, https or
// mailto are replaced by "#" so they cannot execute script when followed.
func (HTML) URL(s string) string {
	if !SafeScheme(s) {
		return "#"
	}
	return html.EscapeString(s)
}

// SafeScheme reports whether s is relative or uses http, https or mailto.
func SafeScheme(s string) bool {
	trimmed := strings.TrimSpace(s)
	// control characters inside a scheme are ignored by browsers ("java\tscript:")
	trimmed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)
	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}

// Terminal strips control characters so text written to a terminal cannot
// carry escape sequences.
type Terminal struct{}

// Text removes control characters except tab
func (Terminal) Text(s string) string {
	return StripControl(s)
}

// URL removes control characters
func (Terminal) URL(s string) string {
	return StripControl(s)
}

// StripControl drops every control rune other than tab.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
