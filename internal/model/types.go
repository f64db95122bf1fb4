/*
PURPOSE:
  Defines the core data structures used throughout codefix-bench.
  These models represent fixture test cases, chat messages, completion
  outcomes and the rows of a benchmark result table.

REQUIREMENTS:
  User-specified:
  - One row per (test case, model) pair, even when the call failed.
  - Record model, language, defect type, problem name, duration and output.

  Implementation-discovered:
  - Need JSON tags for the dashboard API and the JSON Lines artifact.
  - Need YAML tags so fixtures can be declared in a data file.

ARCHITECTURE INTEGRATION:
  - Used by: internal/suite, internal/prompt, internal/engine, internal/output,
    internal/dashboard, internal/session
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs). Completion carries the call failure as data.

IMPLEMENTATION RULES:
  - TestCase values are never mutated after load.
  - Use time.Duration for durations; round only when presenting.

USAGE:
  row := model.ResultRow{Model: "llama3.2:1b", ...}

SELF-HEALING INSTRUCTIONS:
  - If a new column is needed, add the field and update the CSV/JSON/XLSX writers.

RELATED FILES:
  - internal/model/table.go
  - internal/output/workbook.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"math"
	"time"
)

// TestCase is one buggy snippet from a fixture suite.
type TestCase struct {
	ID          string `json:"id" yaml:"id"`
	Language    string `json:"lang" yaml:"lang"`
	DefectType  string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Code        string `json:"code" yaml:"code"`
}

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a role-tagged chat turn sent to the completion service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completion is the outcome of one call to the completion service.
// Exactly one of Text or Err is meaningful: a non-nil Err means the call failed.
type Completion struct {
	Text string
	Err  error
}

// Failed reports whether the call failed.
func (c Completion) Failed() bool {
	return c.Err != nil
}

// Failure returns the failure description, or "" for a successful call.
func (c Completion) Failure() string {
	if c.Err == nil {
		return ""
	}
	return c.Err.Error()
}

// ResultRow is one (test case, model) measurement.
type ResultRow struct {
	Model      string        `json:"model"`
	CaseID     string        `json:"case_id"`
	Language   string        `json:"language"`
	DefectType string        `json:"defect_type"`
	Name       string        `json:"name"`
	Duration   time.Duration `json:"duration"`
	Output     string        `json:"output"`
	Failed     bool          `json:"failed"`
}

// Seconds returns the duration in seconds rounded to two decimals.
func (r ResultRow) Seconds() float64 {
	return RoundSeconds(r.Duration)
}

// RoundSeconds converts d to seconds rounded to two decimals.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// State of a benchmark run.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
)

// Progress counts finished pairs out of the full matrix.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Fraction returns Completed/Total in [0,1]. A zero Total yields 0.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// Percent returns the integer percentage of completed pairs, rounded down.
func (p Progress) Percent() int {
	if p.Total <= 0 || p.Completed <= 0 {
		return 0
	}
	if p.Completed >= p.Total {
		return 100
	}
	return p.Completed * 100 / p.Total
}
