package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/session"
)

type echoCompleter struct {
	prompts []string
}

func (e *echoCompleter) Chat(ctx context.Context, modelName string, messages []model.Message) model.Completion {
	e.prompts = append(e.prompts, messages[len(messages)-1].Content)
	return model.Completion{Text: "review from " + modelName}
}

func newChat(t *testing.T) (Model, *echoCompleter, *session.Log) {
	t.Helper()
	output.Discard()
	c := &echoCompleter{}
	log := session.NewLog()
	return New(context.Background(), engine.NewReviewer(c, []string{"m1", "m2"}, 0), log), c, log
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestSubmitTypedCode(t *testing.T) {
	m, c, log := newChat(t)
	m = typeText(m, "print(1/0)")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())
	assert.Empty(t, m.input.Value())

	msg := cmd()
	done, ok := msg.(reviewDoneMsg)
	require.True(t, ok)
	assert.Equal(t, model.RoleAssistant, done.turn.Role)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.Busy())

	require.Equal(t, 2, log.Len())
	assert.Equal(t, "print(1/0)", log.Turns()[0].Content)
	require.Len(t, c.prompts, 2)
	assert.Contains(t, c.prompts[0], "print(1/0)")

	view := m.View()
	assert.Contains(t, view, "review from m1")
	assert.Contains(t, view, "review from m2")
}

func TestSubmitFile(t *testing.T) {
	m, c, log := newChat(t)
	path := filepath.Join(t.TempDir(), "Main.java")
	require.NoError(t, os.WriteFile(path, []byte(`if (a == "b") {}`), 0644))

	m = typeText(m, "/file "+path)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)

	turns := log.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, session.SourceFile, turns[0].Source)
	assert.Equal(t, "Main.java", turns[0].FileName)
	assert.Contains(t, c.prompts[0], "```java\n")
	assert.Contains(t, m.View(), "You (file Main.java)")
}

func TestSubmitMissingFile(t *testing.T) {
	m, c, log := newChat(t)

	m = typeText(m, "/file /does/not/exist.py")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.False(t, m.Busy())
	assert.Contains(t, m.status, "failed to read /does/not/exist.py")
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, c.prompts)
}

func TestSubmitIgnoresEmptyAndBusy(t *testing.T) {
	m, _, _ := newChat(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)

	m = typeText(m, "x = 1")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)

	m = typeText(m, "y = 2")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, _, _ := newChat(t)
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestModelStartedStatus(t *testing.T) {
	m, _, _ := newChat(t)
	next, _ := m.Update(modelStartedMsg{index: 1, name: "m2"})
	assert.Contains(t, next.(Model).status, "Asking m2 (2/2)")
}
