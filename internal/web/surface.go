package web

import (
	"sync"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/render"
)

// pageSurface records what the session asked the page to show besides the
// case list. Each HTTP response projects the list from the session itself
// while holding the entry lock, so it always matches that request's query.
type pageSurface struct {
	mu      sync.Mutex
	loading bool
	errMsg  string
	flash   string
	form    formValues
}

// formValues are the add-form field contents echoed back into the page
type formValues struct {
	Company          string
	Description      string
	SourceURL        string
	ManipulationType string
}

var _ browser.Surface = (*pageSurface)(nil)

func (p *pageSurface) ShowLoading(visible bool) {
	p.mu.Lock()
	p.loading = visible
	p.mu.Unlock()
}

func (p *pageSurface) ShowError(message string) {
	p.mu.Lock()
	p.errMsg = message
	p.mu.Unlock()
}

// Render keeps nothing; responses project the list via Session.View.
func (p *pageSurface) Render(render.View) {}

func (p *pageSurface) Acknowledge(message string) {
	p.mu.Lock()
	p.flash = message
	p.mu.Unlock()
}

func (p *pageSurface) ResetForm() {
	p.mu.Lock()
	p.form = formValues{}
	p.mu.Unlock()
}

func (p *pageSurface) setForm(f formValues) {
	p.mu.Lock()
	p.form = f
	p.mu.Unlock()
}

// snapshot copies the page state for view and consumes the one-shot
// acknowledgment
func (p *pageSurface) snapshot(view render.View, query string) pageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := pageState{
		Loading: p.loading,
		Error:   p.errMsg,
		View:    view,
		Query:   query,
		Flash:   p.flash,
		Form:    p.form,
	}
	p.flash = ""
	return st
}

type pageState struct {
	Loading bool
	Error   string
	View    render.View
	Query   string
	Flash   string
	Form    formValues
}
