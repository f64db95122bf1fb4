package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// WriteArtifact writes the whole table in the given format ("xlsx", "csv" or
// "jsonl"), creating the parent directory when needed.
func WriteArtifact(format, path string, table *model.ResultTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}

	switch format {
	case "xlsx":
		return WriteWorkbook(path, table)
	case "csv":
		w, err := NewCSVWriter(path)
		if err != nil {
			return fmt.Errorf("failed to init CSV writer at %s: %w", path, err)
		}
		return writeRows(w, table)
	case "jsonl":
		w, err := NewJSONWriter(path)
		if err != nil {
			return fmt.Errorf("failed to init JSON writer at %s: %w", path, err)
		}
		return writeRows(w, table)
	}
	return fmt.Errorf("unknown output format %q", format)
}

type rowWriter interface {
	Write(model.ResultRow) error
	Close() error
}

func writeRows(w rowWriter, table *model.ResultTable) error {
	for _, row := range table.Rows() {
		if err := w.Write(row); err != nil {
			w.Close()
			return fmt.Errorf("failed to write row %s/%s: %w", row.CaseID, row.Model, err)
		}
	}
	return w.Close()
}
