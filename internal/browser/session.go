// Package browser wires the case store, loader, filter and renderer into one
// browsing session and drives a presentation Surface through it.
package browser

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/Ashfaaq98/console-cases/internal/render"
)

// User-visible texts shared by every surface.
const (
	LoadFailedMessage = "Failed to load case data. Please try again later."
	AddedMessage      = "Case added to the display! (Note: This is a local session only and will not be saved permanently.)"
	NoResultsMessage  = "No cases match your search."
)

// ErrNotLoaded is returned when a case is submitted before the dataset has
// loaded, or after the load failed.
var ErrNotLoaded = errors.New("case data is not loaded")

// Fetcher retrieves the dataset; *loader.Loader satisfies it.
type Fetcher interface {
	Load(ctx context.Context, source string) ([]cases.Case, error)
}

// Surface is the thin adapter a presentation layer implements. Calls never
// happen while the state lock is held, and views reach Render in the order
// the session produced them.
type Surface interface {
	ShowLoading(visible bool)
	ShowError(message string)
	Render(view render.View)
	Acknowledge(message string)
	ResetForm()
}

// Options configures a Session
type Options struct {
	Fetcher   Fetcher
	Source    string
	Surface   Surface
	Sanitizer render.Sanitizer
	Links     render.LinkPolicy
	Logger    *log.Logger
	// Now stamps new cases; defaults to time.Now.
	Now func() time.Time
}

// Session is one browsing session: a Store owned by exactly one surface.
type Session struct {
	// renderMu spans computing a view and handing it to the surface
	renderMu sync.Mutex
	mu       sync.Mutex
	store    *cases.Store
	fetcher  Fetcher
	source   string
	surface  Surface
	sanit    render.Sanitizer
	links    render.LinkPolicy
	logger   *log.Logger
	now      func() time.Time

	state   State
	query   string
	loadErr error
}

// NewSession creates a session in the Uninitialized state
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = render.HTML{}
	}
	if opts.Links == (render.LinkPolicy{}) {
		opts.Links = render.DefaultLinkPolicy()
	}
	if opts.Surface == nil {
		opts.Surface = NopSurface{}
	}
	return &Session{
		store:   cases.NewStore(),
		fetcher: opts.Fetcher,
		source:  opts.Source,
		surface: opts.Surface,
		sanit:   opts.Sanitizer,
		links:   opts.Links,
		logger:  opts.Logger,
		now:     opts.Now,
		state:   StateUninitialized,
	}
}

// Load fetches the dataset once. On success the store is replaced and the
// full list is rendered with no active filter; on failure the store stays
// empty and the surface shows the static error message. The loading
// indicator is cleared on every exit path. Later calls are no-ops.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	s.surface.ShowLoading(true)
	defer s.surface.ShowLoading(false)

	items, err := s.fetcher.Load(ctx, s.source)

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.loadErr = err
		s.mu.Unlock()

		s.logger.Printf("Error loading cases from %s: %v", s.source, err)
		s.surface.ShowError(LoadFailedMessage)
		return err
	}
	s.store.Replace(items)
	s.query = ""
	s.state = StateIdle
	view := s.viewLocked()
	s.mu.Unlock()

	// the view carries the empty query so surfaces clear text typed while loading
	s.logger.Printf("Loaded %d cases from %s", len(items), s.source)
	s.surface.Render(view)
	return nil
}

// Search sets the active query and re-renders the matching cases. Before the
// dataset has loaded, and after a failed load, nothing is rendered.
func (s *Session) Search(query string) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	s.query = query
	if !s.state.Loaded() {
		s.mu.Unlock()
		return
	}
	s.state = stateForQuery(query)
	view := s.viewLocked()
	s.mu.Unlock()

	s.surface.Render(view)
}

// ClearSearch empties the query and renders every case
func (s *Session) ClearSearch() {
	s.Search("")
}

// Submit turns form input into a new case, prepends it to the store and
// re-renders with the current query, so the case only shows if it matches.
// The surface then acknowledges the session-local addition and resets its form.
func (s *Session) Submit(in cases.FormInput) (cases.Case, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	if !s.state.Loaded() {
		s.mu.Unlock()
		return cases.Case{}, ErrNotLoaded
	}
	c := cases.NewCase(in, s.now())
	s.store.Prepend(c)
	view := s.viewLocked()
	s.mu.Unlock()

	s.logger.Printf("Added session-local case %q (%d tags)", c.Company, len(c.ManipulationType))
	s.surface.Render(view)
	s.surface.Acknowledge(AddedMessage)
	s.surface.ResetForm()
	return c, nil
}

// View projects the current store through the active query
func (s *Session) View() render.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the active search text
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Err returns the load failure, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Cases returns a snapshot of every stored case in store order
func (s *Session) Cases() []cases.Case {
	return s.store.All()
}

func (s *Session) viewLocked() render.View {
	all := s.store.All()
	return render.Project(cases.Filter(s.query, all), len(all), s.query, s.sanit, s.links)
}

// NopSurface discards every call
type NopSurface struct{}

func (NopSurface) ShowLoading(bool)   {}
func (NopSurface) ShowError(string)   {}
func (NopSurface) Render(render.View) {}
func (NopSurface) Acknowledge(string) {}
func (NopSurface) ResetForm()         {}
