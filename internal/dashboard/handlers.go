package dashboard

import (
	"bytes"
	"errors"
	"html"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/session"
)

const pageTitle = "Code Fix Benchmark"

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SuiteResponse is returned by GET /api/suite.
type SuiteResponse struct {
	Name  string           `json:"name"`
	Cases []model.TestCase `json:"cases"`
}

// ModelStatus is one configured model and whether the service has it.
type ModelStatus struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
}

// ModelsResponse is returned by GET /api/models.
type ModelsResponse struct {
	Models []ModelStatus `json:"models"`
	Error  string        `json:"error,omitempty"`
}

// RowView is a result row with its duration in seconds.
type RowView struct {
	Model      string  `json:"model"`
	CaseID     string  `json:"case_id"`
	Language   string  `json:"language"`
	DefectType string  `json:"defect_type"`
	Name       string  `json:"name"`
	Seconds    float64 `json:"seconds"`
	Output     string  `json:"output"`
	Failed     bool    `json:"failed"`
}

// BenchmarkResponse is returned by GET and POST /api/benchmark.
type BenchmarkResponse struct {
	ID         string            `json:"id,omitempty"`
	State      model.State       `json:"state"`
	Completed  int               `json:"completed"`
	Total      int               `json:"total"`
	Percent    int               `json:"percent"`
	Rows       []RowView         `json:"rows"`
	Means      []model.ModelMean `json:"means"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// OutputView is a model output with the markdown rendered to HTML.
type OutputView struct {
	session.ModelOutput
	HTML string `json:"html,omitempty"`
}

// TurnView is a transcript turn as served to the page.
type TurnView struct {
	session.Turn
	Outputs []OutputView `json:"outputs,omitempty"`
}

type chatRequest struct {
	Content string `json:"content" form:"content"`
}

// index handles GET /
func (s *Server) index(c *fiber.Ctx) error {
	var buf bytes.Buffer
	err := s.page.Execute(&buf, map[string]interface{}{
		"Title":  pageTitle,
		"Suite":  s.suiteName(),
		"Cases":  s.cases,
		"Models": s.cfg.Models,
		"Style":  s.cfg.PromptStyle(),
	})
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// healthCheck handles GET /api/health
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// getSuite handles GET /api/suite
func (s *Server) getSuite(c *fiber.Ctx) error {
	return c.JSON(SuiteResponse{Name: s.suiteName(), Cases: s.cases})
}

// listModels handles GET /api/models
func (s *Server) listModels(c *fiber.Ctx) error {
	resp := ModelsResponse{Models: make([]ModelStatus, 0, len(s.cfg.Models))}

	installed := map[string]bool{}
	if s.lister == nil {
		resp.Error = "model listing is not available"
	} else if names, err := s.lister.GetModels(c.UserContext()); err != nil {
		output.Logger.Warn("Could not list models", "error", err)
		resp.Error = err.Error()
	} else {
		for _, n := range names {
			installed[n] = true
		}
	}

	for _, m := range s.cfg.Models {
		resp.Models = append(resp.Models, ModelStatus{
			Name:      m,
			Installed: installed[m] || installed[m+":latest"],
		})
	}
	return c.JSON(resp)
}

// startBenchmark handles POST /api/benchmark
func (s *Server) startBenchmark(c *fiber.Ctx) error {
	if !s.review.TryLock() {
		return fiber.NewError(fiber.StatusConflict, "a code review is in progress, try again when it finishes")
	}
	id, err := s.runBenchmark()
	s.review.Unlock()
	if errors.Is(err, engine.ErrRunInProgress) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(BenchmarkResponse{
		ID:    id,
		State: model.StateRunning,
		Rows:  []RowView{},
		Means: []model.ModelMean{},
	})
}

// getBenchmark handles GET /api/benchmark
func (s *Server) getBenchmark(c *fiber.Ctx) error {
	snap := s.tracker.Snapshot()

	resp := BenchmarkResponse{
		ID:        snap.ID,
		State:     snap.State,
		Completed: snap.Progress.Completed,
		Total:     snap.Progress.Total,
		Percent:   snap.Progress.Percent(),
		Rows:      make([]RowView, 0, len(snap.Rows)),
		Means:     meansOf(snap.Rows),
	}
	for _, r := range snap.Rows {
		resp.Rows = append(resp.Rows, RowView{
			Model:      r.Model,
			CaseID:     r.CaseID,
			Language:   r.Language,
			DefectType: r.DefectType,
			Name:       r.Name,
			Seconds:    r.Seconds(),
			Output:     r.Output,
			Failed:     r.Failed,
		})
	}
	if !snap.StartedAt.IsZero() {
		resp.StartedAt = &snap.StartedAt
	}
	if !snap.FinishedAt.IsZero() {
		resp.FinishedAt = &snap.FinishedAt
	}
	return c.JSON(resp)
}

// getSummary handles GET /api/summary
func (s *Server) getSummary(c *fiber.Ctx) error {
	return c.JSON(meansOf(s.tracker.Snapshot().Rows))
}

// exportBenchmark handles GET /api/benchmark/export
func (s *Server) exportBenchmark(c *fiber.Ctx) error {
	table := s.tracker.Table()
	if table == nil || s.tracker.Snapshot().State != model.StateCompleted {
		return fiber.NewError(fiber.StatusConflict, "no completed benchmark run to export")
	}

	name := filepath.Base(s.cfg.OutputFile)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	c.Attachment(name)
	return output.WriteWorkbookTo(c.Response().BodyWriter(), table)
}

// postChat handles POST /api/chat
func (s *Server) postChat(c *fiber.Ctx) error {
	in, err := chatInput(c)
	if err != nil {
		return err
	}

	s.review.Lock()
	defer s.review.Unlock()

	if s.tracker.Snapshot().State == model.StateRunning {
		return fiber.NewError(fiber.StatusConflict, "a benchmark run is in progress, try again when it finishes")
	}

	turn := s.reviewer.Review(c.UserContext(), s.transcript, in)
	return c.JSON(s.turnView(turn))
}

// getChat handles GET /api/chat
func (s *Server) getChat(c *fiber.Ctx) error {
	turns := s.transcript.Turns()
	views := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		views = append(views, s.turnView(t))
	}
	return c.JSON(views)
}

func chatInput(c *fiber.Ctx) (engine.ReviewInput, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return engine.ReviewInput{}, fiber.NewError(fiber.StatusBadRequest, "could not open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return engine.ReviewInput{}, fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
		}
		if strings.TrimSpace(string(data)) == "" {
			return engine.ReviewInput{}, fiber.NewError(fiber.StatusBadRequest, "uploaded file is empty")
		}
		return engine.ReviewInput{
			Content:  string(data),
			Source:   session.SourceFile,
			FileName: fh.Filename,
		}, nil
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return engine.ReviewInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return engine.ReviewInput{}, fiber.NewError(fiber.StatusBadRequest, "content is required")
	}
	return engine.ReviewInput{Content: req.Content, Source: session.SourceTyped}, nil
}

func (s *Server) turnView(t session.Turn) TurnView {
	v := TurnView{Turn: t}
	for _, o := range t.Outputs {
		ov := OutputView{ModelOutput: o}
		if !o.Failed {
			ov.HTML = s.renderMarkdown(o.Text)
		}
		v.Outputs = append(v.Outputs, ov)
	}
	return v
}

func (s *Server) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		output.Logger.Debug("Markdown render failed", "error", err)
		return "<pre>" + html.EscapeString(text) + "</pre>"
	}
	return buf.String()
}

func (s *Server) suiteName() string {
	if s.cfg.SuiteFile != "" {
		return filepath.Base(s.cfg.SuiteFile)
	}
	return s.cfg.Suite
}

func meansOf(rows []model.ResultRow) []model.ModelMean {
	table := model.NewResultTable(len(rows))
	for _, r := range rows {
		table.Append(r)
	}
	means := model.MeanByModel(table)
	if means == nil {
		return []model.ModelMean{}
	}
	return means
}
