// ABOUTME: Login and registration forms for the TUI
// ABOUTME: Ctrl+R flips between signing in and creating an account
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	return input
}

func newPasswordInput(placeholder string) textinput.Model {
	input := newInput(placeholder, 128)
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	return input
}

func (m *Model) initLoginForm() {
	m.viewMode = ViewLogin
	m.formInputs = []textinput.Model{
		newInput("Email", 254),
		newPasswordInput("Password"),
	}
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) initRegisterForm() {
	m.viewMode = ViewRegister
	m.formInputs = []textinput.Model{
		newInput("Display name", 100),
		newInput("Email", 254),
		newPasswordInput("Password"),
		newPasswordInput("Confirm password"),
	}
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m Model) renderLoginView() string {
	var s strings.Builder

	if m.viewMode == ViewRegister {
		s.WriteString(titleStyle.Render("SHAFT · CREATE ACCOUNT"))
	} else {
		s.WriteString(titleStyle.Render("SHAFT · SIGN IN"))
	}
	s.WriteString("\n\n")

	m.renderForm(&s)

	if m.err != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.err))
		s.WriteString("\n")
	}

	help := []string{"Tab: Next field", "Enter: Submit", "Ctrl+R: Sign in / Register", "Ctrl+C: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.err = ""
		if m.viewMode == ViewLogin {
			m.initRegisterForm()
		} else {
			m.initLoginForm()
		}
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
		m.submitAuth()
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// submitAuth signs in or registers. On success the controller redirects to
// the dashboard, which arrives as a redirectMsg.
func (m *Model) submitAuth() {
	values := m.formValues()
	if m.viewMode == ViewRegister {
		if err := m.register.Submit(m.ctx, values[0], values[1], values[2], values[3]); err != nil {
			m.err = m.register.Error()
			return
		}
	} else {
		if err := m.login.Submit(m.ctx, values[0], values[1]); err != nil {
			m.err = m.login.Error()
			return
		}
	}
	m.err = ""
}
