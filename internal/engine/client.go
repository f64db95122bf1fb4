/*
PURPOSE:
  Core engine for interacting with the Ollama chat API.
  Handles model discovery and one blocking chat call per request.

REQUIREMENTS:
  User-specified:
  - One synchronous call per (test case, model) pair.
  - Ask the service to release the model right after answering (keep_alive).
  - Any failure becomes data for the caller, never a crash.

  Implementation-discovered:
  - Ollama returns 404 with {"error": "..."} for models that are not pulled.
  - The error field can also arrive with a 200 status.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner, Reviewer), internal/cli, internal/dashboard
  - Uses: internal/config, internal/model, internal/output

ERROR HANDLING:
  - Chat never returns a Go error: failures are stored in model.Completion.Err.
  - Network and server errors are classified in the message text.
  - No retries. A failed pair stays failed.

IMPLEMENTATION RULES:
  - Use net/http.
  - No client-side timeout unless request_timeout is configured.

USAGE:
  e := engine.New(cfg)
  models, err := e.GetModels(ctx)
  c := e.Chat(ctx, "llama3.2:1b", msgs)

SELF-HEALING INSTRUCTIONS:
  - If Ollama API changes, update endpoints (/api/tags, /api/chat).

RELATED FILES:
  - internal/config/config.go
  - internal/model/types.go

MAINTENANCE:
  - Update for new Ollama API features.
*/

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daryltucker/codefix-bench/internal/config"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
)

// Completer is the completion service boundary.
type Completer interface {
	Chat(ctx context.Context, modelName string, messages []model.Message) model.Completion
}

// Engine handles Ollama interactions.
type Engine struct {
	Config *config.Config
	Client *http.Client
}

// New creates a new Engine.
func New(cfg *config.Config) *Engine {
	return &Engine{
		Config: cfg,
		Client: &http.Client{
			// Zero means no timeout: we wait as long as the service does.
			Timeout: cfg.RequestTimeout,
		},
	}
}

type chatRequest struct {
	Model     string          `json:"model"`
	Messages  []model.Message `json:"messages"`
	Stream    bool            `json:"stream"`
	KeepAlive string          `json:"keep_alive,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"` // ns
	LoadDuration  int64  `json:"load_duration"`  // ns
	EvalCount     int    `json:"eval_count"`
	Error         string `json:"error"`
}

// Chat sends one non-streaming chat request.
func (e *Engine) Chat(ctx context.Context, modelName string, messages []model.Message) model.Completion {
	text, err := e.chat(ctx, modelName, messages)
	if err != nil {
		output.Logger.Debug("Chat failed", "model", modelName, "error", err)
		return model.Completion{Err: err}
	}
	return model.Completion{Text: text}
}

func (e *Engine) chat(ctx context.Context, modelName string, messages []model.Message) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:     modelName,
		Messages:  messages,
		Stream:    false,
		KeepAlive: e.Config.KeepAlive,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint("/api/chat"), bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.Client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var data chatResponse
	decodeErr := json.Unmarshal(bodyBytes, &data)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && data.Error != "" {
			return "", fmt.Errorf("Ollama Server Error (%s): %s", resp.Status, data.Error)
		}
		return "", fmt.Errorf("Ollama Server Error (%s): %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("Ollama returned invalid JSON: %w (Body: %s)", decodeErr, string(bodyBytes))
	}
	if data.Error != "" {
		return "", fmt.Errorf("Ollama API Error: %s", data.Error)
	}

	output.Logger.Debug("Chat done",
		"model", modelName,
		"client_duration", time.Since(start),
		"load_duration", time.Duration(data.LoadDuration),
		"eval_count", data.EvalCount,
	)
	return data.Message.Content, nil
}

// GetModels returns the names of models installed on the service.
func (e *Engine) GetModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint("/api/tags"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (e *Engine) endpoint(path string) string {
	return strings.TrimRight(e.Config.URL, "/") + path
}

func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("request cancelled: %w", err)
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(err.Error(), "Client.Timeout"):
		return fmt.Errorf("Ollama Timeout (model loading?): %w", err)
	default:
		return fmt.Errorf("Network/Connection Error: %w", err)
	}
}
