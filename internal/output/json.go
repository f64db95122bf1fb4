/*
PURPOSE:
  Writes benchmark rows to a JSON Lines file (NDJSON).
  Optimized for machine parsing (jq and friends).

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is append-friendly: one object per (test case, model) pair.

ARCHITECTURE INTEGRATION:
  - Called by: internal/output.WriteArtifact
  - Consumes: internal/model.ResultRow

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  w.Write(row)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update jsonRow when ResultRow changes.
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/codefix-bench/internal/model"
)

type jsonRow struct {
	Model      string  `json:"model"`
	CaseID     string  `json:"case_id"`
	Language   string  `json:"language"`
	DefectType string  `json:"defect_type"`
	Name       string  `json:"name"`
	DurationS  float64 `json:"duration_s"`
	Output     string  `json:"output"`
	Failed     bool    `json:"failed,omitempty"`
}

// JSONWriter handles writing rows to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single row as a JSON line.
func (jw *JSONWriter) Write(r model.ResultRow) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(jsonRow{
		Model:      r.Model,
		CaseID:     r.CaseID,
		Language:   r.Language,
		DefectType: r.DefectType,
		Name:       r.Name,
		DurationS:  r.Seconds(),
		Output:     r.Output,
		Failed:     r.Failed,
	})
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
