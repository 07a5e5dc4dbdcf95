package render

import (
	"strings"
	"testing"

	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store3() []cases.Case {
	return []cases.Case{
		{Company: "First National", Description: "Bank inflated deposits", SourceURL: "https://example.com/a", ManipulationType: []string{"accounting"}, ReportedDate: "2024-01-10"},
		{Company: "Acme", Description: "Fake reviews", SourceURL: "https://example.com/b", ManipulationType: []string{"reviews"}, ReportedDate: "2024-02-11"},
		{Company: "Mutual Trust", Description: "Regional bank hid fees", SourceURL: "https://example.com/c", ManipulationType: []string{"pricing"}, ReportedDate: "2024-03-12"},
	}
}

func TestProjectBankScenario(t *testing.T) {
	all := store3()
	view := Project(cases.Filter("bank", all), len(all), "bank", HTML{}, DefaultLinkPolicy())

	require.Len(t, view.Items, 2)
	assert.Equal(t, "First National", view.Items[0].Company)
	assert.Equal(t, "Mutual Trust", view.Items[1].Company)
	assert.False(t, view.NoResults)
	assert.Equal(t, "Displaying 2 of 3 cases.", view.CountLabel)
}

func TestProjectWithoutQuery(t *testing.T) {
	all := store3()
	view := Project(all, len(all), "", HTML{}, DefaultLinkPolicy())
	assert.Len(t, view.Items, 3)
	assert.Equal(t, "Showing all 3 cases.", view.CountLabel)
}

func TestProjectNoResults(t *testing.T) {
	all := store3()
	view := Project(cases.Filter("nothing matches", all), len(all), "nothing matches", HTML{}, DefaultLinkPolicy())
	assert.True(t, view.NoResults)
	assert.Empty(t, view.Items)
	assert.Equal(t, "Displaying 0 of 3 cases.", view.CountLabel)
}

func TestProjectIsIdempotent(t *testing.T) {
	all := store3()
	display := cases.Filter("a", all)
	first := Project(display, len(all), "a", HTML{}, DefaultLinkPolicy())
	second := Project(display, len(all), "a", HTML{}, DefaultLinkPolicy())
	assert.Equal(t, first, second)
	assert.Equal(t, len(first.Items), len(second.Items))
	assert.Equal(t, first.CountLabel, second.CountLabel)
}

func TestProjectLinkAttributesAreExplicit(t *testing.T) {
	view := Project(store3()[:1], 1, "", HTML{}, DefaultLinkPolicy())
	link := view.Items[0].Source
	assert.Equal(t, "https://example.com/a", link.Href)
	assert.Equal(t, "_blank", link.Target)
	assert.Equal(t, "noopener noreferrer", link.Rel)
	assert.Equal(t, "Source", link.Text)
}

func TestProjectSanitizesEveryField(t *testing.T) {
	evil := "<script>alert(1)</script>"
	c := cases.Case{
		Company:          evil,
		Description:      evil,
		SourceURL:        `https://example.com/"><script>`,
		ManipulationType: []string{evil},
		ReportedDate:     evil,
	}
	view := Project([]cases.Case{c}, 1, "", HTML{}, DefaultLinkPolicy())
	item := view.Items[0]

	escaped := "&lt;script&gt;alert(1)&lt;/script&gt;"
	assert.Equal(t, escaped, item.Company)
	assert.Equal(t, escaped, item.Description)
	assert.Equal(t, []string{escaped}, item.Tags)
	assert.Equal(t, escaped, item.ReportedDate)
	assert.NotContains(t, item.Source.Href, "<")
	assert.NotContains(t, item.Source.Href, `"`)
}

func TestHTMLSanitizerURLSchemes(t *testing.T) {
	s := HTML{}
	assert.Equal(t, "https://example.com/?a=1&amp;b=2", s.URL("https://example.com/?a=1&b=2"))
	assert.Equal(t, "mailto:tips@example.com", s.URL("mailto:tips@example.com"))
	assert.Equal(t, "/relative/path", s.URL("/relative/path"))
	assert.Equal(t, "#", s.URL("javascript:alert(1)"))
	assert.Equal(t, "#", s.URL(" JavaScript:alert(1)"))
	assert.Equal(t, "#", s.URL("java\tscript:alert(1)"))
	assert.Equal(t, "#", s.URL("data:text/html,<b>x</b>"))
}

func TestTerminalSanitizerStripsEscapes(t *testing.T) {
	in := "Acme\x1b[31m red\x07\tok"
	out := Terminal{}.Text(in)
	assert.False(t, strings.ContainsRune(out, '\x1b'))
	assert.False(t, strings.ContainsRune(out, '\x07'))
	assert.Equal(t, "Acme[31m red\tok", out)
}

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "Showing all 0 cases.", CountLabel(0, 0, ""))
	assert.Equal(t, "Displaying 1 of 5 cases.", CountLabel(1, 5, "x"))
}
