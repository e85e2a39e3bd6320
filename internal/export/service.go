// Package export renders processed prospectuses as XLSX workbooks and HTML reports.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

const (
	SheetSummary  = "Sammanfattning"
	SheetBaseData = "Grunddata"
)

// Report is what both exporters render.
type Report struct {
	Key      string
	Model    string
	Source   string
	Data     *entity.PropertyRecord
	Analyses map[string]analysis.Result
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// XLSX returns a workbook with one row per analyzer metric and one per base data field.
func (s *Service) XLSX(r Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetBaseData); err != nil {
		return nil, err
	}

	header, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	rows := 0
	write := func(sheet string, row int, vals ...any) {
		for i, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	write(SheetSummary, 1, "Analys", "Nyckeltal", "Värde")
	_ = f.SetCellStyle(SheetSummary, "A1", "C1", header)
	row := 2
	for _, name := range sortedNames(r.Analyses) {
		res := r.Analyses[name]
		if !res.OK {
			write(SheetSummary, row, name, "error", res.Error)
			row++
			continue
		}
		for _, leaf := range Flatten(res.Output) {
			write(SheetSummary, row, name, leaf.Path, cellValue(leaf.Value))
			row++
		}
	}
	rows += row - 2

	write(SheetBaseData, 1, "Fält", "Värde")
	_ = f.SetCellStyle(SheetBaseData, "A1", "B1", header)
	row = 2
	write(SheetBaseData, row, "key", r.Key)
	write(SheetBaseData, row+1, "model", r.Model)
	write(SheetBaseData, row+2, "source", r.Source)
	row += 3
	if r.Data != nil {
		for _, leaf := range Flatten(r.Data) {
			write(SheetBaseData, row, leaf.Path, cellValue(leaf.Value))
			row++
		}
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 24)
	_ = f.SetColWidth(SheetSummary, "B", "B", 44)
	_ = f.SetColWidth(SheetSummary, "C", "C", 18)
	_ = f.SetColWidth(SheetBaseData, "A", "A", 34)
	_ = f.SetColWidth(SheetBaseData, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"key", r.Key,
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// sortedNames puts summary first, the rest alphabetically.
func sortedNames(m map[string]analysis.Result) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "summary" || names[j] == "summary" {
			return names[i] == "summary"
		}
		return names[i] < names[j]
	})
	return names
}
