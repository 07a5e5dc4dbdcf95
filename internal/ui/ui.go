package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/Ashfaaq98/console-cases/internal/render"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Form field labels, also used to look the fields up again
const (
	labelCompany     = "Company"
	labelDescription = "Description"
	labelSourceURL   = "Source URL"
	labelTypes       = "Manipulation type"
)

// Options configures the terminal browser.
type Options struct {
	Fetcher browser.Fetcher
	Source  string
	Logger  *log.Logger
	// Theme is one of dark, light, neon, high-contrast
	Theme string
	Now   func() time.Time
}

// UI represents the terminal user interface
type UI struct {
	app     *tview.Application
	session *browser.Session
	logger  *log.Logger

	// Layout components
	layout    *tview.Flex
	appTitle  *tview.TextView
	search    *tview.InputField
	clear     *tview.Button
	count     *tview.TextView
	loader    *tview.TextView
	caseList  *tview.TextView
	form      *tview.Form
	statusBar *tview.TextView

	// Theme state
	theme        Theme
	themeName    string
	hasTrueColor bool

	running   int32
	lastFocus tview.Primitive
	lastView  render.View
	lastAck   string

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
}

var _ browser.Surface = (*UI)(nil)

// NewUI builds the widgets and a browsing session bound to them. Nothing is
// loaded until Start.
func NewUI(ctx context.Context, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}
	uiCtx, cancel := context.WithCancel(ctx)

	ui := &UI{
		app:          tview.NewApplication(),
		logger:       logger,
		ctx:          uiCtx,
		cancel:       cancel,
		hasTrueColor: detectTrueColor(),
	}
	ui.themeName, ui.theme = themeByName(opts.Theme)
	ui.session = browser.NewSession(browser.Options{
		Fetcher:   opts.Fetcher,
		Source:    opts.Source,
		Surface:   ui,
		Sanitizer: Markup{},
		Logger:    logger,
		Now:       opts.Now,
	})

	ui.setupLayout()
	ui.setupKeybindings()
	ui.applyTheme()
	return ui
}

// Start shows the UI immediately, loads the dataset in the background and
// blocks until the application exits.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Println("Starting TUI application")

	// updates queue until Run starts draining them
	atomic.StoreInt32(&ui.running, 1)
	go ui.load()

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Println("External context cancelled, stopping TUI")
		case <-ui.ctx.Done():
			ui.logger.Println("UI context cancelled, stopping TUI")
		}
		ui.cancel()
		ui.app.Stop()
	}()

	err := ui.app.Run()
	atomic.StoreInt32(&ui.running, 0)
	ui.logger.Printf("app.Run() returned with error: %v", err)
	return err
}

// Stop stops the TUI application
func (ui *UI) Stop() {
	ui.logger.Println("Stopping TUI application")
	ui.cancel()
	ui.app.Stop()
}

func (ui *UI) load() {
	if err := ui.session.Load(ui.ctx); err != nil {
		ui.setStatus("[%s]Load failed[-:-:-]", ui.theme.TagError)
		return
	}
	// the loaded list is unfiltered, so drop anything typed while loading
	ui.dispatch(func() {
		if ui.search.GetText() != "" {
			ui.search.SetText("")
		}
	})
	ui.setStatus("[%s]Cases loaded[-:-:-]", ui.theme.TagSuccess)
}

// setupLayout creates the main layout
func (ui *UI) setupLayout() {
	ui.appTitle = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	ui.search = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("company, description or type").
		SetChangedFunc(ui.onSearchChanged)
	ui.search.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEsc:
			ui.clearSearch()
		case tcell.KeyTab, tcell.KeyEnter:
			ui.app.SetFocus(ui.caseList)
		}
	})

	ui.clear = tview.NewButton("Clear").SetSelectedFunc(ui.clearSearch)

	ui.loader = tview.NewTextView().SetDynamicColors(true)
	ui.count = tview.NewTextView().SetDynamicColors(true)

	ui.caseList = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	ui.caseList.SetTitle(" Cases ")
	ui.caseList.SetBorder(true)
	ui.caseList.SetTitleAlign(tview.AlignLeft)

	ui.form = tview.NewForm().
		AddInputField(labelCompany, "", 40, nil, nil).
		AddInputField(labelDescription, "", 40, nil, nil).
		AddInputField(labelSourceURL, "", 40, nil, nil).
		AddInputField(labelTypes, "", 40, nil, nil).
		AddButton("Add case", ui.submitForm)
	ui.form.SetTitle(" Add a case ")
	ui.form.SetBorder(true)
	ui.form.SetTitleAlign(tview.AlignLeft)
	ui.form.SetCancelFunc(func() { ui.app.SetFocus(ui.caseList) })

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)
	ui.statusBar.SetText("[yellow]Console-Cases[white] | [green]/[white]:search [green]a[white]:add [green]t[white]:theme [green]Tab[white]:navigate [green]q[white]:quit")

	searchRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.search, 0, 1, true).
		AddItem(ui.clear, 9, 0, false)

	infoRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.count, 0, 1, false).
		AddItem(ui.loader, 20, 0, false)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.appTitle, 1, 0, false).
		AddItem(searchRow, 1, 0, true).
		AddItem(infoRow, 1, 0, false).
		AddItem(ui.caseList, 0, 1, false)

	ui.layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(left, 0, 2, true).
		AddItem(ui.form, 50, 0, false)

	ui.app.SetRoot(ui.root(), true)
	ui.app.SetFocus(ui.search)
}

func (ui *UI) root() tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.layout, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyTab && !ui.isDialogActive() {
			ui.cycleFocus()
			return nil
		}
		if ev.Key() != tcell.KeyRune || ui.isDialogActive() {
			return ev
		}
		switch ev.Rune() {
		case 'q':
			ui.Stop()
			return nil
		case '/':
			ui.app.SetFocus(ui.search)
			return nil
		case 'a':
			ui.app.SetFocus(ui.form)
			return nil
		case 't':
			ui.cycleTheme()
			return nil
		}
		return ev
	})
}

// isDialogActive returns true when a text input, form or modal has focus so
// global shortcuts do not swallow typed characters.
func (ui *UI) isDialogActive() bool {
	focused := ui.app.GetFocus()
	if focused == nil {
		return false
	}
	switch focused.(type) {
	case *tview.Form,
		*tview.Modal,
		*tview.InputField,
		*tview.Button:
		return true
	default:
		return false
	}
}

func (ui *UI) cycleFocus() {
	switch ui.app.GetFocus() {
	case ui.caseList:
		ui.app.SetFocus(ui.form)
	default:
		ui.app.SetFocus(ui.search)
	}
	ui.highlightFocus(ui.app.GetFocus())
}

func (ui *UI) highlightFocus(focused tview.Primitive) {
	ui.caseList.SetBorderColor(ui.theme.Border)
	ui.form.SetBorderColor(ui.theme.Border)
	switch focused {
	case ui.caseList:
		ui.caseList.SetBorderColor(ui.theme.FocusBorder)
	case ui.form:
		ui.form.SetBorderColor(ui.theme.FocusBorder)
	}
}

func (ui *UI) onSearchChanged(text string) {
	ui.session.Search(text)
}

func (ui *UI) clearSearch() {
	ui.search.SetText("")
	ui.session.ClearSearch()
}

func (ui *UI) submitForm() {
	in := cases.FormInput{
		Company:          ui.fieldText(labelCompany),
		Description:      ui.fieldText(labelDescription),
		SourceURL:        ui.fieldText(labelSourceURL),
		ManipulationType: ui.fieldText(labelTypes),
	}
	if _, err := ui.session.Submit(in); err != nil {
		if errors.Is(err, browser.ErrNotLoaded) {
			ui.setStatus("[%s]Cases are not loaded; nothing was added[-:-:-]", ui.theme.TagWarning)
			return
		}
		ui.setStatus("[%s]Add failed: %v[-:-:-]", ui.theme.TagError, err)
	}
}

func (ui *UI) field(label string) *tview.InputField {
	if f, ok := ui.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return f
	}
	return nil
}

func (ui *UI) fieldText(label string) string {
	if f := ui.field(label); f != nil {
		return f.GetText()
	}
	return ""
}

// dispatch runs fn on the UI goroutine once the application is running
func (ui *UI) dispatch(fn func()) {
	if atomic.LoadInt32(&ui.running) == 1 {
		ui.app.QueueUpdateDraw(fn)
		return
	}
	// When the app is not running (e.g., unit tests), apply directly.
	fn()
}

// ShowLoading toggles the loading indicator
func (ui *UI) ShowLoading(visible bool) {
	ui.dispatch(func() {
		if visible {
			ui.loader.SetText(fmt.Sprintf("[%s]Loading cases...[-]", ui.theme.TagWarning))
			return
		}
		ui.loader.SetText("")
	})
}

// ShowError replaces the case list with a static error message
func (ui *UI) ShowError(message string) {
	ui.dispatch(func() {
		ui.count.SetText("")
		ui.caseList.SetText(fmt.Sprintf("[%s]%s[-]", ui.theme.TagError, tview.Escape(message)))
	})
}

// Render replaces the displayed cases and count label
func (ui *UI) Render(view render.View) {
	ui.dispatch(func() {
		ui.lastView = view
		ui.count.SetText(view.CountLabel)
		ui.caseList.SetText(ui.caseListText(view))
		ui.caseList.ScrollToBeginning()
	})
}

// Acknowledge confirms a session-local addition in a modal
func (ui *UI) Acknowledge(message string) {
	ui.dispatch(func() {
		ui.lastAck = message
		ui.setStatusDirect("[%s]Case added[-:-:-]", ui.theme.TagSuccess)
		if atomic.LoadInt32(&ui.running) == 1 {
			ui.showModal("Case added", message)
		}
	})
}

// ResetForm clears every input field of the add form
func (ui *UI) ResetForm() {
	ui.dispatch(func() {
		for _, label := range []string{labelCompany, labelDescription, labelSourceURL, labelTypes} {
			if f := ui.field(label); f != nil {
				f.SetText("")
			}
		}
	})
}

// caseListText lays out already-escaped items as tview markup
func (ui *UI) caseListText(view render.View) string {
	if view.NoResults {
		return fmt.Sprintf("[%s]%s[-]", ui.theme.TagMuted, browser.NoResultsMessage)
	}
	var b strings.Builder
	for _, it := range view.Items {
		fmt.Fprintf(&b, "[%s::b]%s[-::-]\n", ui.theme.TagAccent, it.Company)
		b.WriteString(it.Description)
		b.WriteString("\n")
		if len(it.Tags) > 0 {
			fmt.Fprintf(&b, "[%s]%s[-]\n", ui.theme.TagWarning, strings.Join(it.Tags, ", "))
		}
		fmt.Fprintf(&b, "[%s]Reported: %s | %s: %s[-]\n\n", ui.theme.TagMuted, it.ReportedDate, it.Source.Text, it.Source.Href)
	}
	return b.String()
}

func (ui *UI) showModal(title, text string) {
	modal := tview.NewModal()
	modal.SetText(text)
	modal.SetTitle(fmt.Sprintf(" %s ", title))
	modal.AddButtons([]string{"Close"})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetButtonBackgroundColor(ui.theme.SelectionBg)
	modal.SetButtonTextColor(ui.theme.SelectionFg)
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		ui.restoreMainLayout()
	})

	ui.lastFocus = ui.app.GetFocus()
	ui.app.SetRoot(modal, true)
	ui.app.SetFocus(modal)
}

// restoreMainLayout restores the main layout after closing a modal
func (ui *UI) restoreMainLayout() {
	ui.app.SetRoot(ui.root(), true)
	target := ui.lastFocus
	if target == nil {
		target = ui.search
	}
	ui.app.SetFocus(target)
	ui.highlightFocus(target)
}

// setStatus updates the status bar from any goroutine
func (ui *UI) setStatus(format string, args ...interface{}) {
	ui.dispatch(func() { ui.setStatusDirect(format, args...) })
}

func (ui *UI) setStatusDirect(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")
	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s", ui.theme.TagMuted, timestamp, ui.theme.TagTextPrimary, message))
}

func (ui *UI) applyTheme() {
	ui.logger.Printf("Applying theme: %s (truecolor=%v)", ui.themeName, ui.hasTrueColor)

	ui.appTitle.SetBackgroundColor(ui.theme.Surface)
	ui.appTitle.SetTextColor(ui.theme.TextPrimary)
	ui.appTitle.SetText(fmt.Sprintf(" [%s::b]Data Manipulation Cases[-::-]", ui.theme.TagAccent))

	ui.search.SetBackgroundColor(ui.theme.Surface)
	ui.search.SetLabelColor(ui.theme.TextPrimary)
	ui.search.SetFieldBackgroundColor(ui.theme.SelectionBg)
	ui.search.SetFieldTextColor(ui.theme.TextPrimary)

	ui.clear.SetLabelColor(ui.theme.SelectionFg)
	ui.clear.SetBackgroundColor(ui.theme.SelectionBg)

	for _, tv := range []*tview.TextView{ui.count, ui.loader, ui.caseList, ui.statusBar} {
		tv.SetBackgroundColor(ui.theme.Surface)
		tv.SetTextColor(ui.theme.TextPrimary)
	}

	ui.form.SetBackgroundColor(ui.theme.Surface)
	ui.form.SetFieldBackgroundColor(ui.theme.SelectionBg)
	ui.form.SetFieldTextColor(ui.theme.TextPrimary)
	ui.form.SetLabelColor(ui.theme.TextPrimary)
	ui.form.SetButtonBackgroundColor(ui.theme.SelectionBg)
	ui.form.SetButtonTextColor(ui.theme.SelectionFg)

	// re-render so inline color tags pick up the new palette
	if ui.session.State().Loaded() {
		ui.caseList.SetText(ui.caseListText(ui.lastView))
	}
	ui.highlightFocus(ui.app.GetFocus())
}

func (ui *UI) cycleTheme() {
	ui.setTheme(nextTheme(ui.themeName))
}

func (ui *UI) setTheme(name string) {
	ui.themeName, ui.theme = themeByName(name)
	ui.applyTheme()
	ui.setStatusDirect("[%s]Theme: %s[-:-:-]", ui.theme.TagAccent, ui.themeName)
}
