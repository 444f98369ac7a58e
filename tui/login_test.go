package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func loginStep(t *testing.T, m loginModel, msg tea.Msg) (loginModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	lm, ok := next.(loginModel)
	if !ok {
		t.Fatalf("expected loginModel, got %T", next)
	}
	return lm, cmd
}

func loginType(t *testing.T, m loginModel, s string) loginModel {
	t.Helper()
	for _, r := range s {
		m, _ = loginStep(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLoginModel_EnterMovesThenSubmits(t *testing.T) {
	m := newLoginModel()
	m = loginType(t, m, "a@b.co")
	m, _ = loginStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.focus != 1 {
		t.Fatalf("enter on email should move to password")
	}

	m, cmd := loginStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.done || cmd != nil || m.err == "" {
		t.Fatalf("empty password must not submit")
	}

	m = loginType(t, m, "hunter2")
	m, cmd = loginStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.done || cmd == nil {
		t.Fatalf("expected submit")
	}
	if m.inputs[0].Value() != "a@b.co" || m.inputs[1].Value() != "hunter2" {
		t.Fatalf("unexpected values %q %q", m.inputs[0].Value(), m.inputs[1].Value())
	}
}

func TestLoginModel_EscCancels(t *testing.T) {
	m, cmd := loginStep(t, newLoginModel(), tea.KeyMsg{Type: tea.KeyEsc})
	if !m.cancelled || cmd == nil {
		t.Fatalf("expected cancel")
	}
}
