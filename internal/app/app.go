package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/rollover"
	"github.com/nhle/medreminder/internal/schedule"
	"github.com/nhle/medreminder/internal/ui"
	"github.com/nhle/medreminder/internal/ui/command"
	"github.com/nhle/medreminder/internal/ui/contacts"
	"github.com/nhle/medreminder/internal/ui/dashboard"
	"github.com/nhle/medreminder/internal/ui/detail"
	helpview "github.com/nhle/medreminder/internal/ui/help"
	"github.com/nhle/medreminder/internal/ui/home"
	"github.com/nhle/medreminder/internal/ui/login"
	"github.com/nhle/medreminder/internal/ui/medform"
	"github.com/nhle/medreminder/internal/vision"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewHome ViewState = iota
	ViewLogin
	ViewDashboard
	ViewDetail
	ViewAddMed
	ViewContacts
	ViewHelp
	ViewCommand
)

// Options carries the optional collaborators of the root model.
type Options struct {
	Analyzer        vision.Analyzer
	AnalyzerTimeout time.Duration
	Contacts        []model.Contact
	Watcher         *rollover.Watcher
	Logger          *slog.Logger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the reminder service.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	service      *reminder.Service
	watcher      *rollover.Watcher
	logger       *slog.Logger
	keys         *keys.KeyMap
	home         home.Model
	login        login.Model
	dashboard    dashboard.Model
	detail       detail.Model
	medForm      medform.Model
	contacts     contacts.Model
	helpView     helpview.Model
	commandView  command.Model
	ready        bool
	loggedIn     bool
	phone        string
	status       string
	reminderNote string
}

// New creates the root application model around svc.
func New(svc *reminder.Service, opts Options) Model {
	k := keys.DefaultKeyMap()
	logger := logging.OrDiscard(opts.Logger)

	return Model{
		currentView: ViewHome,
		layout:      ui.NewLayout(80, 24),
		service:     svc,
		watcher:     opts.Watcher,
		logger:      logger,
		keys:        k,
		home:        home.New(k, 80, 24),
		login:       login.New(k, 80, 24),
		dashboard:   dashboard.New(k, 80, 24),
		detail:      detail.New(k, 80, 24),
		medForm:     medform.New(opts.Analyzer, opts.AnalyzerTimeout, logger, 80, 24),
		contacts:    contacts.New(opts.Contacts, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.home.Init()
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height).ShowNav(m.loggedIn)
		m.ready = true
		m.resize()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case home.StartMsg:
		m.currentView = ViewLogin
		return m, m.login.Focus()

	case login.BackMsg:
		m.currentView = ViewHome
		return m, nil

	case login.LoggedInMsg:
		m.loggedIn = true
		m.phone = msg.Phone
		m.layout = m.layout.ShowNav(true)
		m.resize()
		m.currentView = ViewDashboard
		m.logger.Info("session started", "phone", msg.Phone)
		cmds := []tea.Cmd{m.loadDay()}
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.Start())
		}
		return m, tea.Batch(cmds...)

	case dashboard.DayLoadedMsg:
		if msg.Err != nil {
			m.status = "Could not load today: " + msg.Err.Error()
			m.logger.Error("loading today", "err", msg.Err)
		}
		if e, ok := m.detail.Entry(); ok && msg.Err == nil {
			if fresh, found := findEntry(msg.Day, e.Medication.ID); found {
				m.detail.SetEntry(fresh)
			} else if m.currentView == ViewDetail {
				m.currentView = ViewDashboard
			}
		}
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd

	case dashboard.RefreshMsg:
		return m, m.loadDay()

	case dashboard.ToggleRequestMsg:
		return m, m.toggle(msg.ID)

	case detail.ToggleMsg:
		return m, m.toggle(msg.ID)

	case toggledMsg:
		if msg.err != nil {
			m.status = "Could not update: " + msg.err.Error()
			m.logger.Error("toggling medication", "err", msg.err)
		} else {
			m.status = msg.result.Message
		}
		return m, m.loadDay()

	case dashboard.DetailRequestMsg:
		m.detail.SetEntry(msg.Entry)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewDashboard
		return m, nil

	case dashboard.RemoveRequestMsg:
		if !msg.Approved {
			m.status = "Removal cancelled."
			return m, nil
		}
		return m, m.remove(msg.Medication)

	case removedMsg:
		switch {
		case msg.err != nil:
			m.status = "Could not remove: " + msg.err.Error()
			m.logger.Error("removing medication", "err", msg.err)
		case msg.removed:
			m.status = fmt.Sprintf("Removed %s.", msg.name)
		default:
			m.status = fmt.Sprintf("%s was already removed.", msg.name)
		}
		return m, m.loadDay()

	case medform.SaveRequestMsg:
		return m, m.save(msg.Draft)

	case savedMsg:
		if msg.err != nil {
			m.logger.Warn("saving medication", "err", msg.err)
			return m, m.medForm.ShowError(msg.err)
		}
		m.status = fmt.Sprintf("Saved %s.", msg.med.Name)
		m.currentView = ViewDashboard
		return m, m.loadDay()

	case medform.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case contacts.RefreshMsg:
		return m, m.loadOutbox()

	case contacts.OutboxLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("loading outbox", "err", msg.Err)
		}
		var cmd tea.Cmd
		m.contacts, cmd = m.contacts.Update(msg)
		return m, cmd

	case rollover.DayChangedMsg:
		m.reminderNote = ""
		m.status = "Good morning! Today's list has been reset."
		return m, tea.Batch(m.loadDay(), m.waitForWatcher())

	case rollover.ReminderMsg:
		if pendingIn(m.dashboard.Day(), msg.Period) {
			m.reminderNote = fmt.Sprintf("%s %s medication due (%s)",
				msg.Period.Glyph(), msg.Period.Label(), msg.Period.Clock())
		}
		return m, tea.Batch(m.loadDay(), m.waitForWatcher())

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.capturingInput() {
			return m.updateActiveView(msg)
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturingInput reports whether the active view consumes every key, so
// global shortcuts must not fire.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewLogin, ViewAddMed, ViewCommand:
		return true
	case ViewDashboard:
		return m.dashboard.Confirming()
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
		m.currentView = m.previousView
		return m, nil, true
	}

	if !m.loggedIn {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Dashboard):
		m.currentView = ViewDashboard
		return m, m.loadDay(), true

	case key.Matches(msg, m.keys.AddMed):
		cmd := m.openAddForm()
		return m, cmd, true

	case key.Matches(msg, m.keys.Contacts):
		m.currentView = ViewContacts
		return m, m.loadOutbox(), true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case m.currentView == ViewContacts && key.Matches(msg, m.keys.Back):
		m.currentView = ViewDashboard
		return m, nil, true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewHome:
		m.home, cmd = m.home.Update(msg)
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewAddMed:
		m.medForm, cmd = m.medForm.Update(msg)
	case ViewContacts:
		m.contacts, cmd = m.contacts.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

func (m *Model) resize() {
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()
	m.home.SetSize(w, h)
	m.login.SetSize(w, h)
	m.dashboard.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.medForm.SetSize(w, h)
	m.contacts.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
}

func (m *Model) openAddForm() tea.Cmd {
	m.currentView = ViewAddMed
	return m.medForm.Start()
}

func (m *Model) logout() {
	m.loggedIn = false
	m.phone = ""
	m.status = ""
	m.reminderNote = ""
	m.layout = m.layout.ShowNav(false)
	m.resize()
	m.currentView = ViewHome
}

func (m Model) quit() tea.Cmd {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	return tea.Quit
}

func (m Model) waitForWatcher() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.WaitForNext()
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(input string) tea.Cmd {
	name, ok := command.Parse(input)
	if !ok {
		if input != "" {
			m.status = fmt.Sprintf("Unknown command %q", input)
		}
		return nil
	}

	switch name {
	case "today":
		m.currentView = ViewDashboard
		return m.loadDay()
	case "add":
		return m.openAddForm()
	case "contacts":
		m.currentView = ViewContacts
		return m.loadOutbox()
	case "refresh":
		return m.loadDay()
	case "logout":
		m.logout()
		return nil
	case "quit":
		return m.quit()
	}
	return nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("💊 MedReminder", m.headerStatus())
	content := m.renderContent()
	var nav string
	if m.loggedIn {
		nav = m.layout.RenderNav(m.navItems())
	}
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, nav, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHome:
		return m.home.View()
	case ViewLogin:
		return m.login.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewDetail:
		return m.detail.View()
	case ViewAddMed:
		return m.medForm.View()
	case ViewContacts:
		return m.contacts.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerStatus() string {
	if !m.loggedIn {
		return ""
	}
	if m.reminderNote != "" {
		return m.reminderNote
	}
	return m.phone
}

func (m Model) navItems() []ui.NavItem {
	active := m.currentView
	if active == ViewDetail {
		active = ViewDashboard
	}
	return []ui.NavItem{
		{Key: "1", Label: "Today", Active: active == ViewDashboard},
		{Key: "2", Label: "Add", Active: active == ViewAddMed},
		{Key: "3", Label: "Contacts", Active: active == ViewContacts},
	}
}

// statusLine shows the latest result message, falling back to key hints.
func (m Model) statusLine() string {
	if m.status != "" && (m.currentView == ViewDashboard || m.currentView == ViewDetail) {
		return m.status
	}
	return m.keyHints()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHome:
		return "enter start | ? help | q quit"
	case ViewLogin:
		return "enter sign in | esc back"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "space taken | esc back | j/k scroll"
	case ViewAddMed:
		if m.medForm.Busy() {
			return "reading the photo... | esc cancel"
		}
		return "enter next | tab move | esc cancel"
	case ViewContacts:
		return "r refresh | esc back | 1 today | 2 add"
	default:
		if m.dashboard.Confirming() {
			return "←/→ choose | enter confirm | esc cancel"
		}
		return "space taken | enter details | d remove | n add | : command | ? help | q quit"
	}
}

func findEntry(day schedule.Day, id string) (schedule.Entry, bool) {
	for _, e := range day.Entries {
		if e.Medication.ID == id {
			return e, true
		}
	}
	return schedule.Entry{}, false
}

// pendingIn reports whether any untaken entry of day is taken in period p.
func pendingIn(day schedule.Day, p model.Period) bool {
	for _, e := range day.Entries {
		if !e.Taken && e.Medication.HasPeriod(p) {
			return true
		}
	}
	return false
}
