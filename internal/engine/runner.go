/*
PURPOSE:
  High-level runner that drives the benchmark matrix.
  Loops through test cases -> models and records one row per pair.

REQUIREMENTS:
  User-specified:
  - Every (test case, model) pair produces exactly one row.
  - A failed call becomes a row with duration 0 and the failure text.
  - Strictly sequential, test case major, model minor.

  Implementation-discovered:
  - Presentation variants (console, dashboard) need per-row progress.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/dashboard
  - Uses: internal/engine.Completer, internal/prompt, internal/output

ERROR HANDLING:
  - Logs failures but continues (resilience). Run itself cannot fail.

IMPLEMENTATION RULES:
  - No goroutines. One call in flight at any time.
  - Runner keeps no state between runs.

USAGE:
  r := engine.NewRunner(e, prompt.StyleTerse, engine.WithObserver(obs))
  table := r.Run(ctx, cases, models)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go
  - internal/model/aggregate.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced.
*/

package engine

import (
	"context"
	"time"

	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/prompt"
)

// Observer receives run events in order: OnStart once, OnRow per pair,
// OnComplete once. Calls happen on the runner's goroutine.
type Observer interface {
	OnStart(total int)
	OnRow(row model.ResultRow, progress model.Progress)
	OnComplete(table *model.ResultTable)
}

type nopObserver struct{}

func (nopObserver) OnStart(int) {}
func (nopObserver) OnRow(model.ResultRow, model.Progress) {}
func (nopObserver) OnComplete(*model.ResultTable) {}

// Runner executes the benchmark matrix.
type Runner struct {
	completer Completer
	style     prompt.Style
	observer  Observer
	cooldown  time.Duration
	now       func() time.Time
	sleep     func(time.Duration)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObserver sets the progress observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithCooldown pauses between consecutive calls.
func WithCooldown(d time.Duration) RunnerOption {
	return func(r *Runner) { r.cooldown = d }
}

// WithClock replaces time.Now and time.Sleep.
func WithClock(now func() time.Time, sleep func(time.Duration)) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRunner creates a runner that sends prompts of the given style.
func NewRunner(c Completer, style prompt.Style, opts ...RunnerOption) *Runner {
	r := &Runner{
		completer: c,
		style:     style,
		observer:  nopObserver{},
		now:       time.Now,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every (test case, model) pair and returns the filled table.
func (r *Runner) Run(ctx context.Context, cases []model.TestCase, models []string) *model.ResultTable {
	total := len(cases) * len(models)
	table := model.NewResultTable(total)
	progress := model.Progress{Total: total}

	output.Logger.Info("Starting benchmark", "cases", len(cases), "models", len(models), "total", total)
	r.observer.OnStart(total)

	for _, tc := range cases {
		output.Logger.Info("Processing case", "case", tc.ID, "lang", tc.Language, "name", tc.Name)
		userPrompt := prompt.ForCase(r.style, tc)

		for _, m := range models {
			if progress.Completed > 0 && r.cooldown > 0 {
				r.sleep(r.cooldown)
			}

			row := r.runPair(ctx, tc, m, userPrompt)
			table.Append(row)
			progress.Completed++

			r.observer.OnRow(row, progress)
		}
	}

	output.Logger.Info("Benchmark complete", "rows", table.Len())
	r.observer.OnComplete(table)
	return table
}

func (r *Runner) runPair(ctx context.Context, tc model.TestCase, modelName, userPrompt string) model.ResultRow {
	row := model.ResultRow{
		Model:      modelName,
		CaseID:     tc.ID,
		Language:   tc.Language,
		DefectType: tc.DefectType,
		Name:       tc.Name,
	}

	start := r.now()
	c := r.completer.Chat(ctx, modelName, prompt.Messages(r.style, userPrompt))
	elapsed := r.now().Sub(start)

	if c.Failed() {
		output.Logger.Error("Completion failed", "model", modelName, "case", tc.ID, "error", c.Err)
		row.Output = c.Failure()
		row.Failed = true
		return row
	}

	row.Duration = elapsed
	row.Output = c.Text
	output.Logger.Info("Completion done", "model", modelName, "case", tc.ID, "duration_s", row.Seconds())
	return row
}
