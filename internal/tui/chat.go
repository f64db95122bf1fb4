/*
PURPOSE:
  Terminal chat for structured code review. Each submission is reviewed
  by every configured model in turn and the outputs are appended to the
  transcript.

REQUIREMENTS:
  User-specified:
  - Paste code or point at a file, get the review of every model.
  - The transcript keeps every turn of the session.

  Implementation-discovered:
  - The review runs inside a tea.Cmd so the UI keeps redrawing while the
    models answer one after another.
  - A second submission while one is running is ignored.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/chat.go
  - Dependencies: bubbletea, bubbles (textarea, viewport), lipgloss,
    internal/engine.Reviewer, internal/session.Log

KEYS:
  - ctrl+s  submit the input
  - /file PATH  (as the whole input) submit a file
  - pgup/pgdn  scroll the transcript
  - esc, ctrl+c  quit

RELATED FILES:
  - internal/engine/review.go
*/

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/session"
)

const filePrefix = "/file "

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"})
	modelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type reviewDoneMsg struct {
	turn session.Turn
}

type reviewErrMsg struct {
	err error
}

type modelStartedMsg struct {
	index int
	name  string
}

// Model is the bubbletea model of the chat.
type Model struct {
	ctx      context.Context
	reviewer *engine.Reviewer
	log      *session.Log
	readFile func(string) ([]byte, error)

	input    textarea.Model
	viewport viewport.Model
	width    int
	height   int
	busy     bool
	status   string
}

// New creates a chat bound to reviewer. Turns are appended to log.
func New(ctx context.Context, reviewer *engine.Reviewer, log *session.Log) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste code, or /file path/to/code.py, then ctrl+s"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.Focus()

	m := Model{
		ctx:      ctx,
		reviewer: reviewer,
		log:      log,
		readFile: os.ReadFile,
		input:    ta,
		viewport: viewport.New(80, 10),
		status:   fmt.Sprintf("%d models: %s", len(reviewer.Models()), strings.Join(reviewer.Models(), ", ")),
	}
	m.resize(80, 24)
	return m
}

// Run starts the chat on the terminal and blocks until the user quits.
func Run(ctx context.Context, reviewer *engine.Reviewer, log *session.Log) error {
	p := tea.NewProgram(New(ctx, reviewer, log), tea.WithAltScreen(), tea.WithContext(ctx))
	reviewer.OnModel = func(i int, name string) {
		p.Send(modelStartedMsg{index: i, name: name})
	}
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case modelStartedMsg:
		m.status = fmt.Sprintf("Asking %s (%d/%d)...", msg.name, msg.index+1, len(m.reviewer.Models()))
		return m, nil

	case reviewDoneMsg:
		m.busy = false
		m.status = "Done."
		m.refresh()
		return m, nil

	case reviewErrMsg:
		m.busy = false
		m.status = "Error: " + msg.err.Error()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Code review chat"),
		m.viewport.View(),
		m.input.View(),
		statusStyle.Render(m.status+"  (ctrl+s submit, esc quit)"),
	)
}

// Busy reports whether a review is running.
func (m Model) Busy() bool {
	return m.busy
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if m.busy || strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.busy = true
	m.input.Reset()
	m.status = "Reviewing..."

	ctx, reviewer, log, readFile := m.ctx, m.reviewer, m.log, m.readFile
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, filePrefix) && !strings.Contains(trimmed, "\n") {
		path := strings.TrimSpace(strings.TrimPrefix(trimmed, filePrefix))
		return m, func() tea.Msg {
			data, err := readFile(path)
			if err != nil {
				return reviewErrMsg{err: fmt.Errorf("failed to read %s: %w", path, err)}
			}
			return reviewDoneMsg{turn: reviewer.Review(ctx, log, engine.ReviewInput{
				Content:  string(data),
				Source:   session.SourceFile,
				FileName: filepath.Base(path),
			})}
		}
	}

	return m, func() tea.Msg {
		return reviewDoneMsg{turn: reviewer.Review(ctx, log, engine.ReviewInput{
			Content: text,
			Source:  session.SourceTyped,
		})}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.input.SetWidth(width)

	vh := height - m.input.Height() - 3
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.log.Turns(), m.width))
	m.viewport.GotoBottom()
}

func renderTranscript(turns []session.Turn, width int) string {
	if len(turns) == 0 {
		return statusStyle.Render("No reviews yet.")
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, t := range turns {
		if t.Role == model.RoleUser {
			label := "You"
			if t.Source == session.SourceFile {
				label = "You (file " + t.FileName + ")"
			}
			b.WriteString(userStyle.Render(label) + "\n")
			b.WriteString(wrap.Render(t.Content) + "\n\n")
			continue
		}
		for _, o := range t.Outputs {
			if o.Failed {
				b.WriteString(modelStyle.Render(o.Model) + " " + failStyle.Render("failed") + "\n")
				b.WriteString(wrap.Render(failStyle.Render(o.Text)) + "\n\n")
				continue
			}
			b.WriteString(modelStyle.Render(o.Model) + statusStyle.Render(fmt.Sprintf(" %.2fs", o.Seconds)) + "\n")
			b.WriteString(wrap.Render(o.Text) + "\n\n")
		}
	}
	return b.String()
}
