package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	items []cases.Case
	err   error
}

func (f stubFetcher) Load(ctx context.Context, source string) ([]cases.Case, error) {
	return f.items, f.err
}

func newTestUI(t *testing.T, f browser.Fetcher) *UI {
	t.Helper()
	ui := NewUI(context.Background(), Options{
		Fetcher: f,
		Source:  "data/cases.json",
		Logger:  log.New(io.Discard, "", 0),
		Now:     func() time.Time { return time.Date(2025, 3, 9, 8, 0, 0, 0, time.Local) },
	})
	t.Cleanup(ui.cancel)
	return ui
}

func testCases() []cases.Case {
	return []cases.Case{
		{Company: "First National", Description: "Bank inflated deposits", SourceURL: "https://example.com/a", ManipulationType: []string{"accounting"}, ReportedDate: "2024-01-10"},
		{Company: "Globex", Description: "Fake reviews", SourceURL: "https://example.com/b", ManipulationType: []string{"reviews"}, ReportedDate: "2024-02-11"},
		{Company: "Mutual Trust", Description: "Regional bank hid fees", SourceURL: "https://example.com/c", ManipulationType: []string{"pricing"}, ReportedDate: "2024-03-12"},
	}
}

func TestNewUI(t *testing.T) {
	ui := newTestUI(t, stubFetcher{})
	assert.Equal(t, "dark", ui.themeName)
	assert.Equal(t, browser.StateUninitialized, ui.session.State())
	assert.Equal(t, ui.search, ui.app.GetFocus())
}

func TestLoadRendersCases(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.load()

	assert.Equal(t, "Showing all 3 cases.", ui.count.GetText(true))
	assert.Empty(t, ui.loader.GetText(true), "loader hidden after load")
	list := ui.caseList.GetText(false)
	assert.Contains(t, list, "First National")
	assert.Contains(t, list, "Reported: 2024-03-12 | Source: https://example.com/c")
}

func TestLoadFailureShowsMessage(t *testing.T) {
	ui := newTestUI(t, stubFetcher{err: errors.New("unexpected status: 503")})
	ui.load()

	assert.Contains(t, ui.caseList.GetText(false), browser.LoadFailedMessage)
	assert.Empty(t, ui.loader.GetText(true))
	assert.Empty(t, ui.count.GetText(true))
	assert.Equal(t, browser.StateError, ui.session.State())
}

func TestStartLoadsThroughEventLoop(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.app.SetScreen(tcell.NewSimulationScreen("UTF-8"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ui.Start(ctx) }()

	// widgets are only read on the event loop
	countText := func() string {
		got := make(chan string, 1)
		ui.app.QueueUpdate(func() { got <- ui.count.GetText(true) })
		select {
		case text := <-got:
			return text
		case <-time.After(time.Second):
			return ""
		}
	}
	require.Eventually(t, func() bool {
		return countText() == "Showing all 3 cases."
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, browser.StateIdle, ui.session.State())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("UI did not stop after cancel")
	}
}

func TestLoadClearsSearchTypedWhileLoading(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.search.SetText("bank")
	assert.Equal(t, browser.StateUninitialized, ui.session.State())

	ui.load()

	assert.Equal(t, "", ui.search.GetText())
	assert.Equal(t, "", ui.session.Query())
	assert.Equal(t, browser.StateIdle, ui.session.State())
	assert.Equal(t, "Showing all 3 cases.", ui.count.GetText(true))
}

func TestSearchAndClear(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.load()

	ui.onSearchChanged("bank")
	assert.Equal(t, "Displaying 2 of 3 cases.", ui.count.GetText(true))
	assert.NotContains(t, ui.caseList.GetText(false), "Globex")

	ui.onSearchChanged("zzz")
	assert.Contains(t, ui.caseList.GetText(false), browser.NoResultsMessage)

	ui.clearSearch()
	assert.Equal(t, "", ui.search.GetText())
	assert.Equal(t, "Showing all 3 cases.", ui.count.GetText(true))
	assert.Contains(t, ui.caseList.GetText(false), "Globex")
}

func TestSubmitForm(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.load()

	ui.field(labelCompany).SetText("Acme")
	ui.field(labelTypes).SetText("greenwashing, , pricing")
	ui.submitForm()

	require.Len(t, ui.session.Cases(), 4)
	assert.Equal(t, "Acme", ui.session.Cases()[0].Company)
	assert.Equal(t, "2025-03-09", ui.session.Cases()[0].ReportedDate)
	assert.Equal(t, browser.AddedMessage, ui.lastAck)
	assert.Equal(t, "Showing all 4 cases.", ui.count.GetText(true))
	assert.Contains(t, ui.caseList.GetText(false), "greenwashing, pricing")

	for _, label := range []string{labelCompany, labelDescription, labelSourceURL, labelTypes} {
		assert.Empty(t, ui.fieldText(label), label)
	}
}

func TestSubmitBeforeLoad(t *testing.T) {
	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.field(labelCompany).SetText("Acme")
	ui.submitForm()

	assert.Empty(t, ui.session.Cases())
	assert.Empty(t, ui.lastAck)
	assert.Equal(t, "Acme", ui.fieldText(labelCompany))
}

func TestMarkupEscapesTags(t *testing.T) {
	m := Markup{}
	assert.Equal(t, "[red[]x", m.Text("[red]x\x1b"))
	assert.Equal(t, "plain", m.Text("plain"))
}

func TestThemeCycle(t *testing.T) {
	assert.Equal(t, "light", nextTheme("dark"))
	assert.Equal(t, "dark", nextTheme("high-contrast"))
	assert.Equal(t, "dark", nextTheme("unknown"))

	name, _ := themeByName("bogus")
	assert.Equal(t, "dark", name)

	ui := newTestUI(t, stubFetcher{items: testCases()})
	ui.load()
	ui.cycleTheme()
	assert.Equal(t, "light", ui.themeName)
	assert.Contains(t, ui.caseList.GetText(false), themeLight().TagAccent)
}
