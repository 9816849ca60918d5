package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

func (m Model) renderEditView() string {
	var s strings.Builder

	verb := "NEW "
	if m.editingID != "" {
		verb = "EDIT "
		if m.tab == TabCalendar {
			verb = "MOVE "
		}
	}
	s.WriteString(titleStyle.Render(verb + m.entityTypeName()))
	s.WriteString("\n\n")

	m.renderForm(&s)

	if msg := m.screenError(); msg != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(msg))
		s.WriteString("\n")
	}

	help := []string{"Tab: Next field", "Enter: Save", "Esc: Cancel"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) renderForm(s *strings.Builder) {
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}
}

func (m Model) entityTypeName() string {
	switch m.tab {
	case TabContacts:
		return "CONTACT"
	case TabDeals:
		return "DEAL"
	case TabTasks:
		return "TASK"
	case TabCalendar:
		return "EVENT"
	}
	return ""
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cancelEdit()
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		if err := m.saveEntity(); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.status = "Saved"
		m.viewMode = ViewList
		m.refreshAggregates()
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) cancelEdit() {
	switch m.tab {
	case TabContacts:
		m.screens.contacts.CancelEdit()
	case TabDeals:
		m.screens.deals.CancelEdit()
	}
	m.err = ""
	m.viewMode = ViewList
}

// initEditForm opens the form for the current tab. An empty id creates.
func (m *Model) initEditForm(id string) {
	m.editingID = id
	m.err = ""
	m.status = ""

	switch m.tab {
	case TabContacts:
		m.initContactForm(id)
	case TabDeals:
		m.initDealForm(id)
	case TabTasks:
		m.formInputs = []textinput.Model{newInput("Title", 200)}
	case TabCalendar:
		m.initEventForm(id)
	}

	m.viewMode = ViewEdit
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) initContactForm(id string) {
	inputs := []textinput.Model{
		newInput("Name", 100),
		newInput("Email", 100),
		newInput("Phone", 20),
	}

	c := m.screens.contacts
	c.CancelEdit()
	if id != "" && c.Edit(id) {
		form := c.Form()
		inputs[0].SetValue(form.Name)
		inputs[1].SetValue(form.Email)
		inputs[2].SetValue(form.Phone)
	}
	m.formInputs = inputs
}

func (m *Model) initDealForm(id string) {
	inputs := []textinput.Model{
		newInput("Name", 100),
		newInput("Amount", 20),
		newInput("Stage ("+strings.Join(models.Stages, ", ")+")", 30),
	}

	d := m.screens.deals
	d.CancelEdit()
	if id != "" {
		d.Edit(id)
	}
	form := d.Form()
	inputs[0].SetValue(form.Name)
	inputs[1].SetValue(form.Amount)
	inputs[2].SetValue(form.Stage)
	m.formInputs = inputs
}

func (m *Model) initEventForm(id string) {
	if id == "" {
		m.formInputs = []textinput.Model{
			newInput("Title", 200),
			newInput("Start (YYYY-MM-DD HH:MM)", 16),
			newInput("End (optional)", 16),
		}
		return
	}

	inputs := []textinput.Model{
		newInput("Start (YYYY-MM-DD HH:MM)", 16),
		newInput("End (YYYY-MM-DD HH:MM)", 16),
	}
	for _, e := range m.screens.calendar.Events() {
		if e.ID == id {
			inputs[0].SetValue(e.Start.Local().Format(timeLayout))
			inputs[1].SetValue(e.End.Local().Format(timeLayout))
			break
		}
	}
	m.formInputs = inputs
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) formValues() []string {
	values := make([]string, len(m.formInputs))
	for i, input := range m.formInputs {
		values[i] = input.Value()
	}
	return values
}

// saveEntity hands the form to the tab's controller. Validation messages
// come back as the controller's error.
func (m *Model) saveEntity() error {
	values := m.formValues()

	switch m.tab {
	case TabContacts:
		c := m.screens.contacts
		c.SetForm(viewmodel.ContactForm{Name: values[0], Email: values[1], Phone: values[2]})
		return c.Submit(m.ctx)

	case TabDeals:
		d := m.screens.deals
		d.SetForm(viewmodel.DealForm{Name: values[0], Amount: values[1], Stage: values[2]})
		return d.Submit(m.ctx)

	case TabTasks:
		t := m.screens.tasks
		t.SetNewTitle(values[0])
		return t.Add(m.ctx)

	case TabCalendar:
		cal := m.screens.calendar
		if m.editingID == "" {
			start, err := parseLocalTime(values[1])
			if err != nil {
				return err
			}
			end, err := parseOptionalTime(values[2])
			if err != nil {
				return err
			}
			return cal.Add(m.ctx, values[0], start, end)
		}
		start, err := parseLocalTime(values[0])
		if err != nil {
			return err
		}
		end, err := parseOptionalTime(values[1])
		if err != nil {
			return err
		}
		return cal.Drop(m.ctx, m.editingID, start, end)
	}
	return nil
}

// parseLocalTime accepts "YYYY-MM-DD HH:MM" or a bare date in local time.
func parseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %s: use YYYY-MM-DD HH:MM", strconv.Quote(s))
}

func parseOptionalTime(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return parseLocalTime(s)
}
