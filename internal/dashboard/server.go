/*
PURPOSE:
  Interactive web dashboard over the benchmark loop and the structured
  review. Serves one HTML page plus a small JSON API the page polls.

REQUIREMENTS:
  User-specified:
  - Preview the test suite, start a run, watch rows and progress arrive,
    see the mean latency per model as a chart.
  - Chat-style review of pasted or uploaded code across every model.
  - Spreadsheet download of the last completed run.

  Implementation-discovered:
  - Only one benchmark run at a time; a second start is a 409.
  - Completion calls stay sequential: a review is refused while a
    benchmark is running, and reviews are serialized among themselves.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/serve.go
  - Dependencies: github.com/gofiber/fiber/v2, internal/engine,
    internal/session, internal/output

ERROR HANDLING:
  - Handlers return *fiber.Error; customErrorHandler renders it as JSON.
  - Completion failures are data inside rows and turns, never HTTP errors.

IMPLEMENTATION RULES:
  - Runs execute on a background goroutine tied to the server context.
  - Shutdown cancels the context and waits for the run to finish.

USAGE:
  srv, err := dashboard.NewServer(cfg, eng, eng, cases)
  err = srv.Start(ctx)

SELF-HEALING INSTRUCTIONS:
  - If the page stops updating, check GET /api/benchmark returns JSON.

RELATED FILES:
  - internal/dashboard/handlers.go
  - internal/assets/templates/index.html

MAINTENANCE:
  - Keep the page's fetch calls in sync with setupRoutes.
*/

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/daryltucker/codefix-bench/internal/assets"
	"github.com/daryltucker/codefix-bench/internal/config"
	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/session"
)

// ModelLister reports the models installed on the completion service.
type ModelLister interface {
	GetModels(ctx context.Context) ([]string, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	app        *fiber.App
	cfg        *config.Config
	cases      []model.TestCase
	completer  engine.Completer
	lister     ModelLister
	tracker    *engine.Tracker
	reviewer   *engine.Reviewer
	transcript *session.Log
	markdown   goldmark.Markdown
	page       *template.Template

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
	review sync.Mutex
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewServer creates a dashboard for cases, asking cfg.Models through c.
// lister may be nil, in which case every model is reported as not installed.
func NewServer(cfg *config.Config, c engine.Completer, lister ModelLister, cases []model.TestCase) (*Server, error) {
	page, err := template.ParseFS(assets.Templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		AppName:               "codefix-bench",
		DisableStartupMessage: true,
		BodyLimit:             8 * 1024 * 1024,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:        app,
		cfg:        cfg,
		cases:      cases,
		completer:  c,
		lister:     lister,
		tracker:    engine.NewTracker(),
		reviewer:   engine.NewReviewer(c, cfg.Models, cfg.ReviewCooldown),
		transcript: session.NewLog(),
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		page:       page,
		ctx:        ctx,
		cancel:     cancel,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
	}))
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     output.LogWriter(),
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/", s.index)

	api := s.app.Group("/api")
	api.Get("/health", s.healthCheck)
	api.Get("/suite", s.getSuite)
	api.Get("/models", s.listModels)

	api.Post("/benchmark", s.startBenchmark)
	api.Get("/benchmark", s.getBenchmark)
	api.Get("/benchmark/export", s.exportBenchmark)
	api.Get("/summary", s.getSummary)

	api.Post("/chat", s.postChat)
	api.Get("/chat", s.getChat)
}

// Start listens on cfg.Listen until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.Listen)
	}()

	output.Logger.Info("Dashboard listening", "addr", "http://"+s.cfg.Listen)

	select {
	case <-ctx.Done():
		return s.Shutdown(5 * time.Second)
	case err := <-errCh:
		s.cancel()
		return err
	}
}

// Shutdown stops accepting requests, cancels a running benchmark and waits
// for it to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.cancel()
	err := s.app.ShutdownWithTimeout(timeout)
	s.runs.Wait()
	return err
}

// Wait blocks until the background benchmark, if any, has finished.
func (s *Server) Wait() {
	s.runs.Wait()
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Transcript returns the chat session log.
func (s *Server) Transcript() *session.Log {
	return s.transcript
}

func (s *Server) runBenchmark() (string, error) {
	id, err := s.tracker.Begin()
	if err != nil {
		return "", err
	}

	runner := engine.NewRunner(s.completer, s.cfg.PromptStyle(),
		engine.WithObserver(engine.MultiObserver{s.tracker, rowLogger{run: id}}),
		engine.WithCooldown(s.cfg.Cooldown),
	)

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		output.Logger.Info("Benchmark started", "run", id, "cases", len(s.cases), "models", len(s.cfg.Models))
		table := runner.Run(s.ctx, s.cases, s.cfg.Models)
		output.Logger.Info("Benchmark finished", "run", id, "rows", table.Len())
	}()
	return id, nil
}

// rowLogger writes one debug line per finished pair.
type rowLogger struct {
	run string
}

func (rowLogger) OnStart(int) {}

func (l rowLogger) OnRow(row model.ResultRow, progress model.Progress) {
	output.Logger.Debug("Pair finished",
		"run", l.run,
		"model", row.Model,
		"case", row.CaseID,
		"seconds", row.Seconds(),
		"failed", row.Failed,
		"progress", progress.Percent(),
	)
}

func (rowLogger) OnComplete(*model.ResultTable) {}

// customErrorHandler handles errors returned by handlers.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		output.Logger.Error("Request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   fmt.Sprintf("error_%d", code),
		Message: message,
	})
}
