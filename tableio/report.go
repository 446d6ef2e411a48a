package tableio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ridoystarlord/etlforge/table"
	"github.com/ridoystarlord/etlforge/validator"
)

// ErrorsColumn is the column WriteInvalidRows appends to each row.
const ErrorsColumn = "validation_errors"

// WriteReport saves every validation error. A .json path gets the full
// result as JSON; anything else gets a CSV with one error per line.
func WriteReport(path string, result *validator.ValidationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return f.Close()
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row", "column", "type", "rule", "message"}); err != nil {
		return err
	}
	for _, e := range result.Errors {
		row := ""
		if e.Row != validator.TableLevel {
			row = strconv.Itoa(e.Row)
		}
		if err := w.Write([]string{row, e.Column, string(e.Kind), e.Rule, e.Message}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// InvalidRows returns the rows that failed validation, prefixed with their
// row index and followed by their joined error messages.
func InvalidRows(t *table.Table, result *validator.ValidationResult) *table.Table {
	columns := append([]string{"row"}, t.Columns...)
	out := table.New(append(columns, ErrorsColumn)...)

	for _, r := range result.InvalidRows {
		if r < 0 || r >= t.Len() {
			continue
		}
		var msgs []string
		for _, e := range result.RowErrors(r) {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Kind, e.Message))
		}

		row := make(table.Row, 0, len(out.Columns))
		row = append(row, int64(r))
		for i := range t.Columns {
			var v any
			if i < len(t.Rows[r]) {
				v = t.Rows[r][i]
			}
			row = append(row, v)
		}
		row = append(row, strings.Join(msgs, "; "))
		out.Rows = append(out.Rows, row)
	}
	return out
}

// WriteInvalidRows saves InvalidRows to a CSV or Excel file. Nothing is
// written when every row passed.
func WriteInvalidRows(path string, t *table.Table, result *validator.ValidationResult) (bool, error) {
	if len(result.InvalidRows) == 0 {
		return false, nil
	}
	if err := WriteFile(path, InvalidRows(t, result)); err != nil {
		return false, err
	}
	return true, nil
}
