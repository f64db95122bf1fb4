// Package session keeps the append-only chat transcript of an interactive
// front end (web dashboard or terminal chat).
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// Source says where a user turn came from.
type Source string

const (
	SourceTyped Source = "typed"
	SourceFile  Source = "file"
)

// Layout of an assistant turn. Only the vertical layout (one block per model,
// stacked in model order) is produced.
type Layout string

const LayoutVertical Layout = "vertical"

// ModelOutput is one model's answer inside an assistant turn.
type ModelOutput struct {
	Model    string        `json:"model"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration"`
	Seconds  float64       `json:"seconds"`
	Failed   bool          `json:"failed"`
}

// Turn is one entry of the transcript.
type Turn struct {
	ID       string        `json:"id"`
	Role     model.Role    `json:"role"`
	Source   Source        `json:"source,omitempty"`
	FileName string        `json:"file_name,omitempty"`
	Content  string        `json:"content,omitempty"`
	Outputs  []ModelOutput `json:"outputs,omitempty"`
	Layout   Layout        `json:"layout,omitempty"`
	At       time.Time     `json:"at"`
}

// Log is an append-only transcript. It is safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewLog returns an empty transcript.
func NewLog() *Log {
	return &Log{}
}

// Append stores a turn, filling ID and At when they are empty, and returns
// the stored value.
func (l *Log) Append(turn Turn) Turn {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.At.IsZero() {
		turn.At = time.Now()
	}
	if len(turn.Outputs) > 0 {
		outs := make([]ModelOutput, len(turn.Outputs))
		copy(outs, turn.Outputs)
		turn.Outputs = outs
	}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()
	return turn
}

// Turns returns a copy of the transcript in order.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
