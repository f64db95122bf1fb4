package engine

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/prompt"
	"github.com/daryltucker/codefix-bench/internal/session"
)

// ReviewInput is one user submission to review.
type ReviewInput struct {
	Content  string
	Source   session.Source
	FileName string
}

// Reviewer runs the structured review prompt against every model in turn.
type Reviewer struct {
	completer Completer
	models    []string
	cooldown  time.Duration
	now       func() time.Time
	sleep     func(time.Duration)

	// OnModel, when set, is called before each model is asked.
	OnModel func(index int, modelName string)
}

// NewReviewer creates a reviewer for the given models, asked in order.
func NewReviewer(c Completer, models []string, cooldown time.Duration) *Reviewer {
	ms := make([]string, len(models))
	copy(ms, models)
	return &Reviewer{
		completer: c,
		models:    ms,
		cooldown:  cooldown,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Models returns the models asked by the reviewer, in order.
func (r *Reviewer) Models() []string {
	out := make([]string, len(r.models))
	copy(out, r.models)
	return out
}

// Review records the user turn in log, asks every model, records the
// assistant turn and returns it. Failed calls become output text.
func (r *Reviewer) Review(ctx context.Context, log *session.Log, in ReviewInput) session.Turn {
	if in.Source == "" {
		in.Source = session.SourceTyped
	}
	log.Append(session.Turn{
		Role:     model.RoleUser,
		Source:   in.Source,
		FileName: in.FileName,
		Content:  in.Content,
	})

	msgs := prompt.Messages(prompt.StyleReview, prompt.Review(in.Content, FenceLang(in.FileName)))
	outputs := make([]session.ModelOutput, 0, len(r.models))

	for i, m := range r.models {
		if i > 0 && r.cooldown > 0 {
			r.sleep(r.cooldown)
		}
		if r.OnModel != nil {
			r.OnModel(i, m)
		}

		start := r.now()
		c := r.completer.Chat(ctx, m, msgs)
		elapsed := r.now().Sub(start)

		out := session.ModelOutput{Model: m}
		if c.Failed() {
			output.Logger.Error("Review failed", "model", m, "error", c.Err)
			out.Text = c.Failure()
			out.Failed = true
		} else {
			out.Text = c.Text
			out.Duration = elapsed
			out.Seconds = model.RoundSeconds(elapsed)
			output.Logger.Info("Review done", "model", m, "duration_s", out.Seconds)
		}
		outputs = append(outputs, out)
	}

	return log.Append(session.Turn{
		Role:    model.RoleAssistant,
		Outputs: outputs,
		Layout:  session.LayoutVertical,
	})
}

// FenceLang guesses the code fence tag from a file name. Unknown or empty
// names fall back to python.
func FenceLang(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".hpp", ".cxx":
		return "cpp"
	case ".go":
		return "go"
	case ".js", ".mjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".rs":
		return "rust"
	}
	return "python"
}
