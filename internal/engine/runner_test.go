package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/prompt"
)

// fakeClock advances only when a fake call "takes" time.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

type call struct {
	model    string
	messages []model.Message
}

// fakeCompleter answers per model: a latency and either text or an error.
type fakeCompleter struct {
	clock   *fakeClock
	latency map[string]time.Duration
	fail    map[string]error
	calls   []call
}

func (f *fakeCompleter) Chat(_ context.Context, m string, msgs []model.Message) model.Completion {
	f.calls = append(f.calls, call{model: m, messages: msgs})
	f.clock.t = f.clock.t.Add(f.latency[m])
	if err, ok := f.fail[m]; ok {
		return model.Completion{Err: err}
	}
	return model.Completion{Text: "fixed code from " + m}
}

type recordingObserver struct {
	events   []string
	progress []model.Progress
	total    int
	final    *model.ResultTable
}

func (o *recordingObserver) OnStart(total int) {
	o.total = total
	o.events = append(o.events, "start")
}

func (o *recordingObserver) OnRow(row model.ResultRow, p model.Progress) {
	o.events = append(o.events, "row:"+row.CaseID+"/"+row.Model)
	o.progress = append(o.progress, p)
}

func (o *recordingObserver) OnComplete(table *model.ResultTable) {
	o.final = table
	o.events = append(o.events, "complete")
}

func newFake() (*fakeClock, *fakeCompleter) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return clock, &fakeCompleter{
		clock:   clock,
		latency: map[string]time.Duration{},
		fail:    map[string]error{},
	}
}

func cases(ids ...string) []model.TestCase {
	out := make([]model.TestCase, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.TestCase{ID: id, Language: "Python", DefectType: "Logic", Name: "case " + id, Code: "code " + id})
	}
	return out
}

func TestRunExampleScenario(t *testing.T) {
	clock, fake := newFake()
	fake.latency["m1"] = time.Second
	fake.latency["m2"] = 3 * time.Second
	fake.fail["m2"] = errors.New("model \"m2\" not found")

	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep))
	table := r.Run(context.Background(), cases("PY_01"), []string{"m1", "m2"})

	require.Equal(t, 2, table.Len())

	first := table.Row(0)
	assert.Equal(t, "m1", first.Model)
	assert.Equal(t, "PY_01", first.CaseID)
	assert.Equal(t, "Python", first.Language)
	assert.Equal(t, time.Second, first.Duration)
	assert.Equal(t, 1.0, first.Seconds())
	assert.Equal(t, "fixed code from m1", first.Output)
	assert.False(t, first.Failed)

	second := table.Row(1)
	assert.Equal(t, "m2", second.Model)
	assert.Equal(t, time.Duration(0), second.Duration)
	assert.Equal(t, "model \"m2\" not found", second.Output)
	assert.True(t, second.Failed)
}

func TestRunProducesFullMatrixInOrder(t *testing.T) {
	clock, fake := newFake()
	models := []string{"a", "b", "c"}
	suite := cases("T1", "T2", "T3", "T4")

	obs := &recordingObserver{}
	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep), WithObserver(obs))
	table := r.Run(context.Background(), suite, models)

	require.Equal(t, len(suite)*len(models), table.Len())
	i := 0
	for _, tc := range suite {
		for _, m := range models {
			row := table.Row(i)
			assert.Equal(t, tc.ID, row.CaseID, "row %d", i)
			assert.Equal(t, m, row.Model, "row %d", i)
			i++
		}
	}

	assert.Equal(t, 12, obs.total)
	require.Len(t, obs.progress, 12)
	for n, p := range obs.progress {
		assert.Equal(t, model.Progress{Completed: n + 1, Total: 12}, p)
	}
	assert.Equal(t, "start", obs.events[0])
	assert.Equal(t, "row:T1/a", obs.events[1])
	assert.Equal(t, "complete", obs.events[len(obs.events)-1])
	assert.Same(t, table, obs.final)
}

func TestRunFailureDoesNotSkipLaterPairs(t *testing.T) {
	clock, fake := newFake()
	fake.fail["bad"] = errors.New("connection refused")

	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep))
	table := r.Run(context.Background(), cases("T1", "T2"), []string{"bad", "good"})

	require.Equal(t, 4, table.Len())
	for _, row := range table.Rows() {
		if row.Model == "bad" {
			assert.True(t, row.Failed)
			assert.Equal(t, "connection refused", row.Output)
			assert.Zero(t, row.Duration)
		} else {
			assert.False(t, row.Failed)
			assert.Equal(t, "fixed code from good", row.Output)
		}
	}
	assert.Len(t, fake.calls, 4)
}

func TestRunEmptyInputs(t *testing.T) {
	tests := []struct {
		name   string
		suite  []model.TestCase
		models []string
	}{
		{"no cases", nil, []string{"m1"}},
		{"no models", cases("T1"), nil},
		{"nothing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock, fake := newFake()
			tracker := NewTracker()
			obs := &recordingObserver{}

			r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep), WithObserver(MultiObserver{obs, tracker}))
			table := r.Run(context.Background(), tt.suite, tt.models)

			assert.Equal(t, 0, table.Len())
			assert.Empty(t, fake.calls)
			assert.Equal(t, []string{"start", "complete"}, obs.events)

			snap := tracker.Snapshot()
			assert.Equal(t, model.StateCompleted, snap.State)
			assert.Equal(t, 0, snap.Progress.Total)
			assert.Equal(t, 0, snap.Progress.Percent())
		})
	}
}

func TestRunSendsStylePrompt(t *testing.T) {
	clock, fake := newFake()
	tc := model.TestCase{ID: "C_01", Language: "C", Code: "strcpy(buf, s);"}

	NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep)).
		Run(context.Background(), []model.TestCase{tc}, []string{"m1"})
	require.Len(t, fake.calls, 1)
	require.Len(t, fake.calls[0].messages, 1)
	assert.Equal(t, prompt.Terse(tc), fake.calls[0].messages[0].Content)

	fake.calls = nil
	NewRunner(fake, prompt.StyleReview, WithClock(clock.Now, clock.Sleep)).
		Run(context.Background(), []model.TestCase{tc}, []string{"m1"})
	require.Len(t, fake.calls[0].messages, 2)
	assert.Equal(t, model.RoleSystem, fake.calls[0].messages[0].Role)
	assert.Contains(t, fake.calls[0].messages[1].Content, prompt.HeaderFix)
}

func TestRunCooldownBetweenCalls(t *testing.T) {
	clock, fake := newFake()
	fake.latency["m1"] = 2 * time.Second

	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep), WithCooldown(500*time.Millisecond))
	table := r.Run(context.Background(), cases("T1", "T2"), []string{"m1"})

	assert.Equal(t, []time.Duration{500 * time.Millisecond}, clock.sleeps)
	for _, row := range table.Rows() {
		assert.Equal(t, 2*time.Second, row.Duration, "cooldown is not part of the measured latency")
	}
}

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker()
	assert.Equal(t, model.StateNotStarted, tracker.Snapshot().State)
	assert.Nil(t, tracker.Table())

	id, err := tracker.Begin()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = tracker.Begin()
	assert.ErrorIs(t, err, ErrRunInProgress)

	clock, fake := newFake()
	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep), WithObserver(tracker))
	table := r.Run(context.Background(), cases("T1"), []string{"m1", "m2"})

	snap := tracker.Snapshot()
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, model.StateCompleted, snap.State)
	assert.Equal(t, model.Progress{Completed: 2, Total: 2}, snap.Progress)
	assert.Equal(t, table.Rows(), snap.Rows)
	assert.Same(t, table, tracker.Table())

	snap.Rows[0].Output = "mutated"
	assert.NotEqual(t, "mutated", tracker.Snapshot().Rows[0].Output)

	next, err := tracker.Begin()
	require.NoError(t, err)
	assert.NotEqual(t, id, next)
}

func ExampleRunner_Run() {
	clock, fake := newFake()
	fake.latency["m1"] = 1500 * time.Millisecond

	r := NewRunner(fake, prompt.StyleTerse, WithClock(clock.Now, clock.Sleep))
	table := r.Run(context.Background(), cases("PY_01"), []string{"m1"})
	for _, row := range table.Rows() {
		fmt.Printf("%s %s %.2fs\n", row.Model, row.CaseID, row.Seconds())
	}
	// Output: m1 PY_01 1.50s
}
