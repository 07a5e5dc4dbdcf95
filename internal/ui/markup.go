package ui

import (
	"github.com/Ashfaaq98/console-cases/internal/render"
	"github.com/rivo/tview"
)

// Markup neutralizes untrusted text for tview widgets with dynamic colors:
// control characters are dropped and color/region tags are escaped.
type Markup struct{}

var _ render.Sanitizer = Markup{}

func (Markup) Text(s string) string {
	return tview.Escape(render.StripControl(s))
}

// URL does not filter schemes; a terminal never follows the link.
func (Markup) URL(s string) string {
	return tview.Escape(render.StripControl(s))
}
