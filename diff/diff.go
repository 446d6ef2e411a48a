package diff

import (
	"fmt"
	"strings"
)

type OperationType string

const (
	MissingColumn    OperationType = "MISSING_COLUMN"
	UnexpectedColumn OperationType = "UNEXPECTED_COLUMN"
	DuplicateColumn  OperationType = "DUPLICATE_COLUMN"
)

type Operation struct {
	Type       OperationType
	ColumnName string
	Position   int // column position in the data; -1 for missing columns
}

func (op Operation) String() string {
	switch op.Type {
	case MissingColumn:
		return fmt.Sprintf("- %s (missing from data)", op.ColumnName)
	case UnexpectedColumn:
		return fmt.Sprintf("+ %s (not in schema, position %d)", op.ColumnName, op.Position)
	case DuplicateColumn:
		return fmt.Sprintf("! %s (repeated at position %d)", op.ColumnName, op.Position)
	}
	return fmt.Sprintf("%s %s", op.Type, op.ColumnName)
}

// Columns compares the column names a schema expects with the ones a data
// source provides. Missing columns come first in schema order, followed by
// unexpected and repeated columns in data order.
func Columns(expected, actual []string) []Operation {
	var ops []Operation

	actualCols := map[string]bool{}
	for _, c := range actual {
		actualCols[c] = true
	}
	expectedCols := map[string]bool{}
	for _, c := range expected {
		expectedCols[c] = true
	}

	for _, col := range expected {
		if !actualCols[col] {
			ops = append(ops, Operation{
				Type:       MissingColumn,
				ColumnName: col,
				Position:   -1,
			})
		}
	}

	seen := map[string]bool{}
	for i, col := range actual {
		switch {
		case seen[col]:
			ops = append(ops, Operation{
				Type:       DuplicateColumn,
				ColumnName: col,
				Position:   i,
			})
		case !expectedCols[col]:
			ops = append(ops, Operation{
				Type:       UnexpectedColumn,
				ColumnName: col,
				Position:   i,
			})
		}
		seen[col] = true
	}

	return ops
}

// Filter returns the operations of the given type.
func Filter(ops []Operation, t OperationType) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.Type == t {
			out = append(out, op)
		}
	}
	return out
}

// Names returns the column names of ops.
func Names(ops []Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.ColumnName
	}
	return names
}

// Summary renders the operations one per line.
func Summary(ops []Operation) string {
	lines := make([]string, len(ops))
	for i, op := range ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}
