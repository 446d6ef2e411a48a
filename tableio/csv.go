// Package tableio moves tables between memory and CSV or Excel files.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ridoystarlord/etlforge/table"
)

// ReadCSV reads a CSV document whose first record is the header. Empty
// cells become nulls; every other cell is kept as a string. Short records
// are padded with nulls.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV has no header row")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	t := table.New(header...)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		t.Rows = append(t.Rows, toRow(record, len(header)))
	}
	return t, nil
}

func toRow(record []string, width int) table.Row {
	row := make(table.Row, max(width, len(record)))
	for i, cell := range record {
		if cell != "" {
			row[i] = cell
		}
	}
	return row
}

// WriteCSV writes the header followed by every row. Nulls are written as
// empty cells.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatCell(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCell renders a cell value as text.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.DateOnly)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
