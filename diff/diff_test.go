package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
		actual   []string
		want     []Operation
	}{
		{
			name:     "identical",
			expected: []string{"id", "name"},
			actual:   []string{"id", "name"},
			want:     nil,
		},
		{
			name:     "order does not matter",
			expected: []string{"id", "name"},
			actual:   []string{"name", "id"},
			want:     nil,
		},
		{
			name:     "missing and unexpected",
			expected: []string{"id", "name", "email"},
			actual:   []string{"id", "nickname"},
			want: []Operation{
				{Type: MissingColumn, ColumnName: "name", Position: -1},
				{Type: MissingColumn, ColumnName: "email", Position: -1},
				{Type: UnexpectedColumn, ColumnName: "nickname", Position: 1},
			},
		},
		{
			name:     "duplicate header",
			expected: []string{"id"},
			actual:   []string{"id", "id"},
			want: []Operation{
				{Type: DuplicateColumn, ColumnName: "id", Position: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Columns(tt.expected, tt.actual))
		})
	}
}

func TestFilterAndNames(t *testing.T) {
	ops := Columns([]string{"a", "b"}, []string{"b", "c", "d"})

	missing := Filter(ops, MissingColumn)
	assert.Equal(t, []string{"a"}, Names(missing))
	assert.Equal(t, []string{"c", "d"}, Names(Filter(ops, UnexpectedColumn)))
	assert.Equal(t, "- a (missing from data)\n+ c (not in schema, position 1)\n+ d (not in schema, position 2)", Summary(ops))
}
