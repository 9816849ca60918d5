package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/shaft/viz"
)

const timeLayout = "2006-01-02 15:04"

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	title := "SHAFT"
	if sess := m.sessions.Current(); sess != nil {
		name := sess.DisplayName
		if name == "" {
			name = sess.Email
		}
		title += " · " + name
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderTab())
	s.WriteString("\n")

	if msg := m.screenError(); msg != "" {
		s.WriteString(errorStyle.Render(msg))
		s.WriteString("\n")
	} else if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTab() string {
	switch m.tab {
	case TabDashboard:
		return m.renderDashboard()
	case TabContacts:
		return m.renderTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Email", Width: 30},
			{Title: "Phone", Width: 16},
		}, m.rows())
	case TabDeals:
		return m.renderTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Stage", Width: 15},
			{Title: "Amount", Width: 14},
		}, m.rows())
	case TabTasks:
		return m.renderTable([]table.Column{
			{Title: "Done", Width: 6},
			{Title: "Title", Width: 50},
		}, m.rows())
	case TabCalendar:
		return m.renderTable([]table.Column{
			{Title: "Title", Width: 30},
			{Title: "Start", Width: 18},
			{Title: "End", Width: 18},
		}, m.rows())
	case TabAnalytics:
		snap := m.screens.analytics.Snapshot()
		return viz.RenderDashboard(m.screens.dashboard.Snapshot().Stats, snap.Stages, snap.Monthly)
	}
	return ""
}

// rows returns the table rows of the current tab, in display order.
func (m Model) rows() []table.Row {
	var rows []table.Row
	switch m.tab {
	case TabContacts:
		for _, c := range m.screens.contacts.Contacts() {
			rows = append(rows, table.Row{c.Name, c.Email, c.Phone})
		}
	case TabDeals:
		for _, d := range m.screens.deals.Deals() {
			rows = append(rows, table.Row{d.Name, d.Stage, fmt.Sprintf("$%.2f", d.Amount)})
		}
	case TabTasks:
		for _, t := range m.screens.tasks.Tasks() {
			done := "[ ]"
			if t.Completed {
				done = "[x]"
			}
			rows = append(rows, table.Row{done, t.Title})
		}
	case TabCalendar:
		for _, e := range m.screens.calendar.Events() {
			rows = append(rows, table.Row{e.Title, e.Start.Local().Format(timeLayout), e.End.Local().Format(timeLayout)})
		}
	}
	return rows
}

// selectedID returns the ID under the cursor, or "".
func (m Model) selectedID() string {
	var ids []string
	switch m.tab {
	case TabContacts:
		for _, c := range m.screens.contacts.Contacts() {
			ids = append(ids, c.ID)
		}
	case TabDeals:
		for _, d := range m.screens.deals.Deals() {
			ids = append(ids, d.ID)
		}
	case TabTasks:
		for _, t := range m.screens.tasks.Tasks() {
			ids = append(ids, t.ID)
		}
	case TabCalendar:
		for _, e := range m.screens.calendar.Events() {
			ids = append(ids, e.ID)
		}
	}
	if m.selectedRow < len(ids) {
		return ids[m.selectedRow]
	}
	return ""
}

func (m Model) renderTable(columns []table.Column, rows []table.Row) string {
	if len(rows) == 0 {
		return helpStyle.Render("Nothing here yet. Press n to add one.")
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) renderDashboard() string {
	if m.screens.dashboard.Loading() {
		return "Loading..."
	}
	snap := m.screens.dashboard.Snapshot()

	var s strings.Builder
	stats := snap.Stats
	s.WriteString(fmt.Sprintf("Contacts: %d   Deals: %d   Pipeline: $%.2f   Won: $%.2f\n",
		stats.TotalContacts, stats.TotalDeals, stats.TotalDealValue, stats.WonDealValue))
	s.WriteString(fmt.Sprintf("Tasks: %d done, %d open\n\n", stats.Tasks.Completed, stats.Tasks.Incomplete))

	s.WriteString("RECENT CONTACTS\n")
	for _, c := range snap.RecentContacts {
		s.WriteString("  " + c.Name + "\n")
	}
	s.WriteString("\nRECENT DEALS\n")
	for _, d := range snap.RecentDeals {
		s.WriteString(fmt.Sprintf("  %s (%s, $%.2f)\n", d.Name, d.Stage, d.Amount))
	}
	s.WriteString("\nUPCOMING EVENTS\n")
	for _, e := range snap.UpcomingEvents {
		s.WriteString(fmt.Sprintf("  %s  %s\n", e.Start.Local().Format(timeLayout), e.Title))
	}
	return s.String()
}

// screenError is the failure message of the controller behind the tab.
func (m Model) screenError() string {
	if m.err != "" {
		return m.err
	}
	switch m.tab {
	case TabDashboard:
		return m.screens.dashboard.Error()
	case TabContacts:
		return m.screens.contacts.Error()
	case TabDeals:
		return m.screens.deals.Error()
	case TabTasks:
		return m.screens.tasks.Error()
	case TabCalendar:
		return m.screens.calendar.Error()
	case TabAnalytics:
		return m.screens.analytics.Error()
	}
	return ""
}

func (m Model) renderListHelp() string {
	help := []string{"Tab: Switch tabs", "↑/↓: Navigate"}
	switch m.tab {
	case TabContacts, TabDeals:
		help = append(help, "n: New", "e: Edit", "d: Delete")
	case TabTasks:
		help = append(help, "n: New", "space: Toggle", "d: Delete")
	case TabCalendar:
		help = append(help, "n: New", "e: Move", "d: Delete")
	}
	help = append(help, "r: Refresh", "L: Log out", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.leaveList()
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.rows())-1 {
			m.selectedRow++
		}
	case "tab":
		m.switchTab((m.tab + 1) % Tab(len(tabNames)))
	case "shift+tab":
		m.switchTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case "r":
		m.refresh()
	case "L":
		if err := m.screens.dashboard.Logout(m.ctx); err != nil {
			m.err = m.screens.dashboard.Error()
		}
	case "n":
		if m.tab != TabDashboard && m.tab != TabAnalytics {
			m.initEditForm("")
		}
	case "e":
		if id := m.selectedID(); id != "" && (m.tab == TabContacts || m.tab == TabDeals || m.tab == TabCalendar) {
			m.initEditForm(id)
		}
	case "d":
		if id := m.selectedID(); id != "" {
			m.askDelete(id)
		}
	case " ", "x":
		if id := m.selectedID(); id != "" && m.tab == TabTasks {
			m.status = ""
			if err := m.screens.tasks.Toggle(m.ctx, id); err == nil {
				m.refreshAggregates()
			}
		}
	}

	return m, nil
}

func (m *Model) switchTab(tab Tab) {
	m.tab = tab
	m.selectedRow = 0
	m.err = ""
	m.status = ""
}

func (m *Model) refresh() {
	m.err = ""
	m.status = ""
	switch m.tab {
	case TabContacts:
		_ = m.screens.contacts.Refresh(m.ctx)
	case TabDeals:
		_ = m.screens.deals.Refresh(m.ctx)
	case TabTasks:
		_ = m.screens.tasks.Refresh(m.ctx)
	case TabCalendar:
		_ = m.screens.calendar.Refresh(m.ctx)
	}
	m.refreshAggregates()
}

// refreshAggregates re-fetches the screens that summarize other tabs.
func (m *Model) refreshAggregates() {
	_ = m.screens.dashboard.Refresh(m.ctx)
	_ = m.screens.analytics.Refresh(m.ctx)
}
