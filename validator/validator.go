package validator

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ridoystarlord/etlforge/diff"
	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
)

// TableValidator checks tables against a schema.
type TableValidator struct {
	logger *zap.Logger
}

// Option configures a TableValidator.
type Option func(*TableValidator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *TableValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewTableValidator creates a new table validator
func NewTableValidator(opts ...Option) *TableValidator {
	v := &TableValidator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate is a convenience for NewTableValidator(opts...).Validate(s, t).
func Validate(s *schema.Schema, t *table.Table, opts ...Option) *ValidationResult {
	return NewTableValidator(opts...).Validate(s, t)
}

// Validate checks every row and column of t against s and returns all
// findings. Only missing columns stop it early; every other problem is
// recorded and the scan continues.
func (v *TableValidator) Validate(s *schema.Schema, t *table.Table) *ValidationResult {
	started := time.Now()
	result := &ValidationResult{
		Valid:       true,
		Errors:      []ValidationError{},
		InvalidRows: []int{},
		Summary: Summary{
			TotalRows:      t.Len(),
			ColumnsChecked: s.Len(),
			MissingColumns: []string{},
			ExtraColumns:   []string{},
		},
	}

	// Structural pass
	if fatal := v.validateStructure(s, t, result); fatal {
		v.finish(result)
		v.logger.Debug("validation stopped on missing columns",
			zap.Strings("missing", result.Summary.MissingColumns))
		return result
	}

	// Per-cell pass
	v.validateCells(s, t, result)

	// Uniqueness pass
	v.validateUniqueness(s, t, result)

	v.finish(result)
	v.logger.Debug("validated table",
		zap.Int("rows", t.Len()),
		zap.Int("errors", len(result.Errors)),
		zap.Int("invalid_rows", len(result.InvalidRows)),
		zap.Duration("elapsed", time.Since(started)))
	return result
}

// validateStructure compares the column sets and reports whether a missing
// column makes further checks pointless.
func (v *TableValidator) validateStructure(s *schema.Schema, t *table.Table, result *ValidationResult) bool {
	ops := diff.Columns(s.Names(), t.Columns)
	for _, op := range ops {
		switch op.Type {
		case diff.MissingColumn:
			result.Summary.MissingColumns = append(result.Summary.MissingColumns, op.ColumnName)
			result.Errors = append(result.Errors, ValidationError{
				Row:     TableLevel,
				Column:  op.ColumnName,
				Kind:    MissingColumn,
				Message: fmt.Sprintf("Column '%s' is missing from the data", op.ColumnName),
			})
		case diff.UnexpectedColumn:
			result.Summary.ExtraColumns = append(result.Summary.ExtraColumns, op.ColumnName)
			result.Errors = append(result.Errors, ValidationError{
				Row:     TableLevel,
				Column:  op.ColumnName,
				Kind:    UnexpectedColumn,
				Message: fmt.Sprintf("Column '%s' is not defined in the schema", op.ColumnName),
			})
		case diff.DuplicateColumn:
			result.Errors = append(result.Errors, ValidationError{
				Row:     TableLevel,
				Column:  op.ColumnName,
				Kind:    UnexpectedColumn,
				Message: fmt.Sprintf("Column '%s' appears more than once; position %d is ignored", op.ColumnName, op.Position),
			})
		}
	}
	return len(result.Summary.MissingColumns) > 0
}

func (v *TableValidator) validateCells(s *schema.Schema, t *table.Table, result *ValidationResult) {
	fields := s.Fields()
	positions := make([]int, len(fields))
	for i, f := range fields {
		positions[i] = t.ColumnIndex(f.Name)
	}

	for r, row := range t.Rows {
		for i, f := range fields {
			var cell any
			if p := positions[i]; p < len(row) {
				cell = row[p]
			}
			for _, finding := range CheckCell(f, cell) {
				result.Errors = append(result.Errors, ValidationError{
					Row:     r,
					Column:  f.Name,
					Kind:    finding.Kind,
					Rule:    finding.Rule,
					Message: finding.Message,
				})
			}
		}
	}
}

// validateUniqueness flags every repeat of a non-null value in a unique
// column. The first occurrence is never flagged.
func (v *TableValidator) validateUniqueness(s *schema.Schema, t *table.Table, result *ValidationResult) {
	for _, f := range s.Fields() {
		if !f.Unique {
			continue
		}
		column, _ := t.Column(f.Name)
		first := map[string]int{}
		for r, cell := range column {
			if IsNull(cell) {
				continue
			}
			key := uniqueKey(f, cell)
			if at, dup := first[key]; dup {
				result.Errors = append(result.Errors, ValidationError{
					Row:     r,
					Column:  f.Name,
					Kind:    UniquenessViolation,
					Rule:    "unique",
					Message: fmt.Sprintf("Duplicate value '%s' in unique column '%s' (first seen in row %d)", display(cell), f.Name, at),
				})
				continue
			}
			first[key] = r
		}
	}
}

// uniqueKey compares cells by their typed value when they coerce, so that
// "7", 7 and 7.0 collide in an int column.
func uniqueKey(f schema.FieldSpec, cell any) string {
	value, err := Coerce(f, cell)
	if err != nil {
		return "raw:" + display(cell)
	}
	switch x := value.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return display(value)
}

func (v *TableValidator) finish(result *ValidationResult) {
	rows := map[int]bool{}
	for _, e := range result.Errors {
		if e.Row != TableLevel {
			rows[e.Row] = true
		}
	}
	for r := range rows {
		result.InvalidRows = append(result.InvalidRows, r)
	}
	slices.Sort(result.InvalidRows)

	result.Valid = len(result.Errors) == 0
	result.Summary.InvalidRows = len(result.InvalidRows)
	result.Summary.ValidRows = result.Summary.TotalRows - result.Summary.InvalidRows
	if result.Fatal() {
		result.Summary.ValidRows = 0
	}
}
