package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/infra/auth"
	"github.com/Cardjinho/Instagram-v0/tui/common"
)

// ErrLoginCancelled is returned when the user leaves the sign-in prompt.
var ErrLoginCancelled = errors.New("sign-in cancelled")

type loginModel struct {
	inputs    []textinput.Model
	focus     int
	done      bool
	cancelled bool
	err       string
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Prompt = "Email:    "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	return loginModel{inputs: []textinput.Model{email, pass}}
}

func (m loginModel) Init() tea.Cmd { return textinput.Blink }

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			cmd := m.setFocus((m.focus + 1) % len(m.inputs))
			return m, cmd
		case tea.KeyEnter:
			if m.focus == 0 {
				cmd := m.setFocus(1)
				return m, cmd
			}
			if strings.TrimSpace(m.inputs[0].Value()) == "" || m.inputs[1].Value() == "" {
				m.err = "Email and password are required."
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.err = ""
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *loginModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render(domain.DisplayAppTitle()) + "  Sign in\n\n")
	for _, in := range m.inputs {
		b.WriteString("  " + in.View() + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + common.ErrorStyle.Render("  "+m.err) + "\n")
	}
	b.WriteString("\n" + common.StatusBarStyle.Render("  tab: next field • enter: sign in • esc: cancel"))
	return b.String()
}

// PromptCredentials asks for an email and password on the terminal.
func PromptCredentials(ctx context.Context) (auth.Credentials, error) {
	final, err := tea.NewProgram(newLoginModel(), tea.WithContext(ctx)).Run()
	if err != nil {
		return auth.Credentials{}, err
	}
	m, ok := final.(loginModel)
	if !ok || m.cancelled || !m.done {
		return auth.Credentials{}, ErrLoginCancelled
	}
	return auth.Credentials{
		Email:    strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
	}, nil
}
