// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Drives the same controllers as the web front end from a full-screen terminal app
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/viewmodel"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewLogin ViewMode = iota
	ViewRegister
	ViewList
	ViewEdit
	ViewConfirmDelete
)

// Tab is a section of the signed-in screen.
type Tab int

const (
	TabDashboard Tab = iota
	TabContacts
	TabDeals
	TabTasks
	TabCalendar
	TabAnalytics
)

var tabNames = []string{"Dashboard", "Contacts", "Deals", "Tasks", "Calendar", "Analytics"}

// redirectMsg carries a navigation request from a controller.
type redirectMsg struct{ path string }

// chanNavigator forwards redirects into the bubbletea event loop. Redirects
// may arrive from the session cache's goroutine.
type chanNavigator struct {
	ch chan string
}

func newChanNavigator() *chanNavigator {
	return &chanNavigator{ch: make(chan string, 32)}
}

func (n *chanNavigator) Redirect(path string) {
	select {
	case n.ch <- path:
	default:
	}
}

func (n *chanNavigator) wait() tea.Cmd {
	return func() tea.Msg {
		return redirectMsg{path: <-n.ch}
	}
}

// screens bundles the controllers behind the signed-in tabs.
type screens struct {
	dashboard *viewmodel.Dashboard
	contacts  *viewmodel.Contacts
	deals     *viewmodel.Deals
	tasks     *viewmodel.TaskList
	calendar  *viewmodel.Calendar
	analytics *viewmodel.Analytics
}

func (s screens) mount(ctx context.Context) {
	s.dashboard.Mount(ctx)
	s.contacts.Mount(ctx)
	s.deals.Mount(ctx)
	s.tasks.Mount(ctx)
	s.calendar.Mount(ctx)
	s.analytics.Mount(ctx)
}

func (s screens) unmount() {
	s.dashboard.Unmount()
	s.contacts.Unmount()
	s.deals.Unmount()
	s.tasks.Unmount()
	s.calendar.Unmount()
	s.analytics.Unmount()
}

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	sessions viewmodel.SessionManager
	log      zerolog.Logger
	nav      *chanNavigator

	login    *viewmodel.Login
	register *viewmodel.Register
	screens  screens
	mounted  bool

	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int

	// Edit view state
	formInputs []textinput.Model
	focusIndex int
	editingID  string

	// Delete confirmation state
	deleteID     string
	deletePrompt string

	// UI state
	status string
	err    string
	width  int
	height int
}

// NewModel creates a new TUI model bound to sessions and stores. Deletes
// are confirmed by the TUI's own dialog before the controller is called.
func NewModel(ctx context.Context, sessions viewmodel.SessionManager, stores viewmodel.Stores, log zerolog.Logger) Model {
	nav := newChanNavigator()
	confirm := viewmodel.AlwaysConfirm{}

	m := Model{
		ctx:      ctx,
		sessions: sessions,
		log:      log,
		nav:      nav,
		login:    viewmodel.NewLogin(sessions, nav, log),
		register: viewmodel.NewRegister(sessions, nav, log),
		screens: screens{
			dashboard: viewmodel.NewDashboard(sessions, stores, nav, log),
			contacts:  viewmodel.NewContacts(sessions, stores.Contacts, nav, confirm, log),
			deals:     viewmodel.NewDeals(sessions, stores.Deals, nav, confirm, log),
			tasks:     viewmodel.NewTaskList(sessions, stores.Tasks, nav, confirm, log),
			calendar:  viewmodel.NewCalendar(sessions, stores.Events, nav, confirm, log),
			analytics: viewmodel.NewAnalytics(sessions, stores.Deals, stores.Tasks, nav, log),
		},
		viewMode: ViewLogin,
		width:    80,
		height:   24,
	}

	if sessions.Current() != nil {
		m.enterList()
	} else {
		m.initLoginForm()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.nav.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case redirectMsg:
		m.handleRedirect(msg.path)
		return m, m.nav.wait()
	}
	return m, nil
}

func (m *Model) handleRedirect(path string) {
	switch path {
	case viewmodel.PathLogin:
		if m.viewMode == ViewLogin || m.viewMode == ViewRegister {
			return
		}
		m.leaveList()
		m.initLoginForm()
	case viewmodel.PathDashboard:
		if m.mounted {
			return
		}
		m.enterList()
	}
}

// enterList mounts the data screens and shows the dashboard tab.
func (m *Model) enterList() {
	m.screens.mount(m.ctx)
	m.mounted = true
	m.viewMode = ViewList
	m.tab = TabDashboard
	m.selectedRow = 0
	m.err = ""
}

func (m *Model) leaveList() {
	if m.mounted {
		m.screens.unmount()
		m.mounted = false
	}
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewLogin, ViewRegister:
		return m.renderLoginView()
	case ViewList:
		return m.renderListView()
	case ViewEdit:
		return m.renderEditView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leaveList()
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewLogin, ViewRegister:
		return m.handleLoginKeys(msg)
	case ViewList:
		return m.handleListKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, sessions viewmodel.SessionManager, stores viewmodel.Stores, log zerolog.Logger) error {
	model := NewModel(ctx, sessions, stores, log)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(Model); ok {
		fm.leaveList()
	}
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)
