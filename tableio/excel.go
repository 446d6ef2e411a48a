package tableio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ridoystarlord/etlforge/table"
)

const defaultSheet = "Sheet1"

// ReadExcel reads the first sheet of an .xlsx workbook. The first row is
// the header; empty cells become nulls.
func ReadExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheets[0])
	}

	t := table.New(rows[0]...)
	for _, record := range rows[1:] {
		t.Rows = append(t.Rows, toRow(record, len(t.Columns)))
	}
	return t, nil
}

// WriteExcel writes the table to a single-sheet workbook. Numbers keep their
// cell type.
func WriteExcel(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheetRow(f, 1, toAny(t.Columns)); err != nil {
		return err
	}
	for r, row := range t.Rows {
		if err := writeSheetRow(f, r+2, []any(row)); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(defaultSheet, cell, &values)
}

func toAny(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = c
	}
	return out
}
