/*
PURPOSE:
  Writes a completed result table to a two-sheet Excel workbook.

REQUIREMENTS:
  User-specified:
  - Sheet 1: one row per (test case, model) with Model, Language, Defect Type,
    Problem Name, Duration (s), Output.
  - Sheet 2: mean duration pivot, Model rows x Language columns.
  - Regenerated wholesale on every run.

  Implementation-discovered:
  - Output text can be long; wrap it and widen the column so it stays readable.

ARCHITECTURE INTEGRATION:
  - Called by: internal/output.WriteArtifact, internal/dashboard (download)
  - Dependencies: github.com/xuri/excelize/v2

ERROR HANDLING:
  - Any excelize error aborts and is returned wrapped. This is the one
    fatal error of a headless run.

IMPLEMENTATION RULES:
  - Read-only over the table: only projections are computed.

USAGE:
  err := output.WriteWorkbook("ket_qua_benchmark.xlsx", table)

SELF-HEALING INSTRUCTIONS:
  - If excelize changes SetSheetName/NewSheet signatures, update here.

RELATED FILES:
  - internal/model/aggregate.go

MAINTENANCE:
  - Keep DetailHeader in sync with the CSV writer.
*/

package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// Sheet names of the workbook.
const (
	DetailSheet  = "Details"
	SummarySheet = "Speed Summary"
)

// WriteWorkbook writes table to path, replacing any existing file.
func WriteWorkbook(path string, table *model.ResultTable) error {
	f, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteWorkbookTo streams the same workbook to w.
func WriteWorkbookTo(w io.Writer, table *model.ResultTable) error {
	f, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(table *model.ResultTable) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", DetailSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name detail sheet: %w", err)
	}
	if err := writeDetail(f, table); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummary(f, model.PivotByLanguage(table)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeDetail(f *excelize.File, table *model.ResultTable) error {
	header := make([]interface{}, len(DetailHeader))
	for i, h := range DetailHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(DetailSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write detail header: %w", err)
	}
	if err := boldRow(f, DetailSheet, len(header)); err != nil {
		return err
	}

	for i, r := range table.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Model, r.Language, r.DefectType, r.Name, r.Seconds(), r.Output}
		if err := f.SetSheetRow(DetailSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write detail row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(DetailSheet, "A", "D", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(DetailSheet, "E", "E", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(DetailSheet, "F", "F", 80); err != nil {
		return err
	}

	if table.Len() == 0 {
		return nil
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(6, table.Len()+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(DetailSheet, "F2", last, wrap)
}

func writeSummary(f *excelize.File, p model.Pivot) error {
	header := []interface{}{"Model"}
	for _, lang := range p.Languages {
		header = append(header, lang)
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := boldRow(f, SummarySheet, len(header)); err != nil {
		return err
	}

	for i, m := range p.Models {
		row := []interface{}{m}
		for _, lang := range p.Languages {
			if d, ok := p.Mean(m, lang); ok {
				row = append(row, model.RoundSeconds(d))
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %s: %w", m, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func boldRow(f *excelize.File, sheet string, cols int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, bold)
}
