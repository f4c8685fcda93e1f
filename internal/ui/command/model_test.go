package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]string{
		"today":    "today",
		" Home ":   "today",
		"new":      "add",
		"outbox":   "contacts",
		"reload":   "refresh",
		"sign out": "logout",
		"exit":     "quit",
	}
	for in, want := range tests {
		got, ok := Parse(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Parse("dance")
	assert.False(t, ok)
}

func TestEmptyEnterCancels(t *testing.T) {
	m := New(60, 10)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(60, 10)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Add")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("add"), cmd())
}
