package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codefix-bench/internal/model"
)

func TestAppendFillsIDAndTime(t *testing.T) {
	log := NewLog()
	turn := log.Append(Turn{Role: model.RoleUser, Source: SourceTyped, Content: "print(1)"})

	assert.NotEmpty(t, turn.ID)
	assert.False(t, turn.At.IsZero())
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, turn, log.Turns()[0])
}

func TestTurnsIsACopy(t *testing.T) {
	log := NewLog()
	outs := []ModelOutput{{Model: "m1", Text: "a"}}
	log.Append(Turn{Role: model.RoleAssistant, Outputs: outs, Layout: LayoutVertical})

	outs[0].Text = "changed by caller"
	turns := log.Turns()
	turns[0].Content = "changed by reader"

	again := log.Turns()
	require.Len(t, again, 1)
	assert.Equal(t, "a", again[0].Outputs[0].Text)
	assert.Empty(t, again[0].Content)
}

func TestConcurrentAppend(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(Turn{Role: model.RoleUser})
			_ = log.Turns()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, log.Len())
}
