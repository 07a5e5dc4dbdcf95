package cases

import "strings"

// Filter returns the cases whose company, description or comma-joined tags
// contain query, compared case-insensitively. Store order is preserved and an
// empty query matches everything. The input slice is never modified.
func Filter(query string, in []Case) []Case {
	needle := Fold(query)
	out := make([]Case, 0, len(in))
	for _, c := range in {
		if needle == "" || Matches(c, needle) {
			out = append(out, c)
		}
	}
	return out
}

// Fold maps s to the form used for case-insensitive comparison. Going through
// upper case first sends letters such as dotless i and I to the same result.
func Fold(s string) string {
	return strings.ToLower(strings.ToUpper(s))
}

// Matches reports whether c contains the already folded needle.
func Matches(c Case, needle string) bool {
	return strings.Contains(Fold(c.Company), needle) ||
		strings.Contains(Fold(c.Description), needle) ||
		strings.Contains(Fold(strings.Join(c.ManipulationType, ",")), needle)
}
