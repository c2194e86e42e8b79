// Package xlsx renders verification reports as Excel workbooks.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

const (
	SheetName = "Verification Report"
	tick      = "✔"
	rowHeight = 25
)

var headers = []any{"No", "Checked item", "OK", "NOK", "Note"}

type Exporter struct{}

var _ ports.ReportExporter = Exporter{}

func New() Exporter {
	return Exporter{}
}

func (Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (Exporter) FileExtension() string {
	return ".xlsx"
}

// Export writes one row per checklist item followed by the score line.
func (Exporter) Export(report domain.VerificationReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for col, width := range map[string]float64{"A": 5, "B": 50, "C": 12, "D": 12, "E": 40} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetRowHeight(SheetName, 1, rowHeight); err != nil {
		return nil, fmt.Errorf("set header height: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", styles.header); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, item := range report.Items {
		row := i + 2
		ok, nok := "", tick
		if item.Status == domain.ItemOK {
			ok, nok = tick, ""
		}
		values := []any{i + 1, item.DisplayName, ok, nok, item.Note}
		if err := f.SetSheetRow(SheetName, cell("A", row), &values); err != nil {
			return nil, fmt.Errorf("write item %d: %w", i+1, err)
		}
		if err := f.SetRowHeight(SheetName, row, rowHeight); err != nil {
			return nil, fmt.Errorf("set row height: %w", err)
		}
	}

	if last := len(report.Items) + 1; last > 1 {
		for _, span := range []struct {
			from, to string
			style    int
		}{
			{"A", "A", styles.center},
			{"B", "B", styles.left},
			{"C", "D", styles.center},
			{"E", "E", styles.left},
		} {
			if err := f.SetCellStyle(SheetName, cell(span.from, 2), cell(span.to, last), span.style); err != nil {
				return nil, fmt.Errorf("style items: %w", err)
			}
		}
	}

	scoreRow := len(report.Items) + 3
	score := []any{"", "Score", report.Score, "", string(report.Level)}
	if err := f.SetSheetRow(SheetName, cell("A", scoreRow), &score); err != nil {
		return nil, fmt.Errorf("write score: %w", err)
	}
	if err := f.SetCellStyle(SheetName, cell("B", scoreRow), cell("E", scoreRow), styles.bold); err != nil {
		return nil, fmt.Errorf("style score: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styleSet struct {
	header, center, left, bold int
}

func newStyles(f *excelize.File) (styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	defs := []*excelize.Style{
		{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		},
		{
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    border,
		},
		{
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
			Border:    border,
		},
		{
			Font: &excelize.Font{Bold: true},
		},
	}
	ids := make([]int, len(defs))
	for i, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return styleSet{}, fmt.Errorf("create style: %w", err)
		}
		ids[i] = id
	}
	return styleSet{header: ids[0], center: ids[1], left: ids[2], bold: ids[3]}, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
