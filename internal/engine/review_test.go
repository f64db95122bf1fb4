package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/prompt"
	"github.com/daryltucker/codefix-bench/internal/session"
)

func TestReviewRecordsBothTurns(t *testing.T) {
	clock, fake := newFake()
	fake.latency["m1"] = 2 * time.Second
	fake.fail["m2"] = errors.New("model \"m2\" not found")

	r := NewReviewer(fake, []string{"m1", "m2", "m3"}, 500*time.Millisecond)
	r.now, r.sleep = clock.Now, clock.Sleep
	var asked []string
	r.OnModel = func(i int, m string) { asked = append(asked, m) }

	log := session.NewLog()
	turn := r.Review(context.Background(), log, ReviewInput{Content: "x = 1/0", Source: session.SourceFile, FileName: "bug.py"})

	require.Equal(t, 2, log.Len())
	user := log.Turns()[0]
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, session.SourceFile, user.Source)
	assert.Equal(t, "bug.py", user.FileName)
	assert.Equal(t, "x = 1/0", user.Content)

	assert.Equal(t, model.RoleAssistant, turn.Role)
	assert.Equal(t, session.LayoutVertical, turn.Layout)
	require.Len(t, turn.Outputs, 3)
	assert.Equal(t, "m1", turn.Outputs[0].Model)
	assert.Equal(t, 2.0, turn.Outputs[0].Seconds)
	assert.True(t, turn.Outputs[1].Failed)
	assert.Equal(t, "model \"m2\" not found", turn.Outputs[1].Text)
	assert.Zero(t, turn.Outputs[1].Duration)
	assert.Equal(t, "fixed code from m3", turn.Outputs[2].Text)

	assert.Equal(t, []string{"m1", "m2", "m3"}, asked)
	assert.Len(t, clock.sleeps, 2)

	require.Len(t, fake.calls, 3)
	msgs := fake.calls[0].messages
	require.Len(t, msgs, 2)
	assert.Equal(t, prompt.ReviewSystemPrompt, msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "```python\nx = 1/0\n```")
}

func TestReviewDefaultsToTypedSource(t *testing.T) {
	clock, fake := newFake()
	r := NewReviewer(fake, []string{"m1"}, 0)
	r.now, r.sleep = clock.Now, clock.Sleep

	log := session.NewLog()
	r.Review(context.Background(), log, ReviewInput{Content: "int main(){}"})
	assert.Equal(t, session.SourceTyped, log.Turns()[0].Source)
	assert.Empty(t, clock.sleeps)
}

func TestFenceLang(t *testing.T) {
	assert.Equal(t, "python", FenceLang(""))
	assert.Equal(t, "python", FenceLang("script.py"))
	assert.Equal(t, "java", FenceLang("Main.JAVA"))
	assert.Equal(t, "c", FenceLang("a.c"))
	assert.Equal(t, "cpp", FenceLang("a.cpp"))
	assert.Equal(t, "python", FenceLang("notes.txt"))
}
