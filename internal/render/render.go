package render

import (
	"fmt"

	"github.com/Ashfaaq98/console-cases/internal/cases"
)

// LinkPolicy lists the attributes every outbound source link carries.
// Surfaces must not rely on their own defaults for these.
type LinkPolicy struct {
	Target string
	Rel    string
	Text   string
}

// DefaultLinkPolicy opens sources in a new browsing context without giving
// the opened page a reference back to this one.
func DefaultLinkPolicy() LinkPolicy {
	return LinkPolicy{
		Target: "_blank",
		Rel:    "noopener noreferrer",
		Text:   "Source",
	}
}

// Link is one outbound link, already sanitized
type Link struct {
	Href   string
	Text   string
	Target string
	Rel    string
}

// Item is the display descriptor for one case. Every string is sanitized.
type Item struct {
	Company      string
	Description  string
	Source       Link
	Tags         []string
	ReportedDate string
}

// View is everything a surface needs to replace its displayed content
type View struct {
	Items      []Item
	NoResults  bool
	CountLabel string
	Displayed  int
	Total      int
	Query      string
}

// Project turns the cases to display into sanitized descriptors. total is
// the number of cases in the store and query the active search text; it has
// no side effects, so rendering the same input twice gives the same View.
func Project(display []cases.Case, total int, query string, s Sanitizer, links LinkPolicy) View {
	items := make([]Item, 0, len(display))
	for _, c := range display {
		items = append(items, projectCase(c, s, links))
	}
	return View{
		Items:      items,
		NoResults:  len(items) == 0,
		CountLabel: CountLabel(len(items), total, query),
		Displayed:  len(items),
		Total:      total,
		Query:      query,
	}
}

func projectCase(c cases.Case, s Sanitizer, links LinkPolicy) Item {
	tags := make([]string, 0, len(c.ManipulationType))
	for _, tag := range c.ManipulationType {
		tags = append(tags, s.Text(tag))
	}
	return Item{
		Company:     s.Text(c.Company),
		Description: s.Text(c.Description),
		Source: Link{
			Href:   s.URL(c.SourceURL),
			Text:   links.Text,
			Target: links.Target,
			Rel:    links.Rel,
		},
		Tags:         tags,
		ReportedDate: s.Text(c.ReportedDate),
	}
}

// CountLabel describes how many cases are displayed. A non-empty query
// counts as an active filter.
func CountLabel(displayed, total int, query string) string {
	if query != "" {
		return fmt.Sprintf("Displaying %d of %d cases.", displayed, total)
	}
	return fmt.Sprintf("Showing all %d cases.", total)
}
