package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fibertrack/deployform/internal/models"
)

// entriesSheet is the name of the worksheet holding exported entries
const entriesSheet = "Entries"

type exportColumn struct {
	header string
	width  float64
	value  func(e models.Entry) interface{}
}

var exportColumns = []exportColumn{
	{"ID", 16, func(e models.Entry) interface{} { return e.ID }},
	{"Date", 12, func(e models.Entry) interface{} { return e.Date }},
	{"City", 16, func(e models.Entry) interface{} { return sanitizeExcelCell(e.City) }},
	{"Ring", 8, func(e models.Entry) interface{} { return sanitizeExcelCell(e.Ring) }},
	{"FDT", 8, func(e models.Entry) interface{} { return sanitizeExcelCell(e.Fdt) }},
	{"Activity", 24, func(e models.Entry) interface{} { return sanitizeExcelCell(e.Activity) }},
	{"Work Type", 10, func(e models.Entry) interface{} { return e.WorkType }},
	{"Primary BOQ", 14, func(e models.Entry) interface{} { return sanitizeExcelCell(e.PrimaryBoq) }},
	{"BOQ", 10, func(e models.Entry) interface{} { return e.Boq }},
	{"Completed", 10, func(e models.Entry) interface{} { return e.Completed }},
	{"Remaining", 10, func(e models.Entry) interface{} { return e.Remaining }},
	{"Notes", 32, func(e models.Entry) interface{} { return sanitizeExcelCell(e.Notes) }},
}

// ExportXLSX renders all entries as a workbook with one Entries sheet
func (s *EntryService) ExportXLSX(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return renderEntriesWorkbook(entries)
}

func renderEntriesWorkbook(entries []models.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), entriesSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1E3A8A"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(entriesSheet, cell, col.header)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(entriesSheet, name, name, col.width)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(entriesSheet, "A1", lastHeader, headerStyle)

	f.SetPanes(entriesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for r, e := range entries {
		for c, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(entriesSheet, cell, col.value(e)); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell keeps user text from being read as a formula
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
