package tableio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ridoystarlord/etlforge/table"
)

// ErrDataNotFound is returned when the input data file does not exist.
var ErrDataNotFound = errors.New("data file not found")

// ErrUnsupportedFormat is returned for data files that are neither CSV nor
// Excel.
var ErrUnsupportedFormat = errors.New("unsupported data file format")

// IsExcel reports whether the path names an OOXML (.xlsx) workbook.
func IsExcel(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// ReadFile loads a .csv or .xlsx file.
func ReadFile(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, path)
		}
		return nil, err
	}

	switch {
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	case IsExcel(path):
		return ReadExcel(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// WriteFile saves the table as Excel when the path ends in .xlsx and as
// CSV otherwise. Legacy .xls workbooks cannot be written.
func WriteFile(path string, t *table.Table) error {
	if IsExcel(path) {
		return WriteExcel(path, t)
	}
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return fmt.Errorf("%w: .xls (save as .xlsx)", ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
