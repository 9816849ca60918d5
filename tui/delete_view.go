// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Asks before a contact, deal, task or event is removed
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m *Model) askDelete(id string) {
	m.deleteID = id
	m.status = ""

	switch m.tab {
	case TabContacts:
		m.deletePrompt = "Are you sure you want to delete this contact?"
	case TabDeals:
		m.deletePrompt = "Are you sure you want to delete this deal?"
	case TabTasks:
		m.deletePrompt = "Are you sure you want to delete this task?"
	case TabCalendar:
		title := id
		for _, e := range m.screens.calendar.Events() {
			if e.ID == id {
				title = e.Title
				break
			}
		}
		m.deletePrompt = fmt.Sprintf("Are you sure you want to delete the event '%s'", title)
	default:
		return
	}
	m.viewMode = ViewConfirmDelete
}

func (m Model) renderConfirmDeleteView() string {
	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		m.deletePrompt,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.performDelete(); err != nil {
			m.err = err.Error()
		} else {
			m.status = "Successfully deleted"
			m.refreshAggregates()
		}
		if m.selectedRow > 0 && m.selectedRow >= len(m.rows()) {
			m.selectedRow--
		}
		m.deleteID = ""
		m.viewMode = ViewList
	case "n", "N", "esc":
		m.deleteID = ""
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) performDelete() error {
	switch m.tab {
	case TabContacts:
		return m.screens.contacts.Delete(m.ctx, m.deleteID)
	case TabDeals:
		return m.screens.deals.Delete(m.ctx, m.deleteID)
	case TabTasks:
		return m.screens.tasks.Delete(m.ctx, m.deleteID)
	case TabCalendar:
		return m.screens.calendar.Delete(m.ctx, m.deleteID)
	}
	return fmt.Errorf("nothing to delete on this tab")
}
