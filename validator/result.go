package validator

// ErrorKind classifies a validation finding.
type ErrorKind string

const (
	MissingColumn           ErrorKind = "missing_column"
	UnexpectedColumn        ErrorKind = "unexpected_column"
	NullConstraintViolation ErrorKind = "null_value"
	TypeMismatch            ErrorKind = "invalid_type"
	ConstraintViolation     ErrorKind = "constraint_violation"
	UniquenessViolation     ErrorKind = "duplicate_value"
)

// Fatal reports whether the kind stops validation.
func (k ErrorKind) Fatal() bool {
	return k == MissingColumn
}

// TableLevel is the row index of errors that are not tied to a row.
const TableLevel = -1

// ValidationError represents a validation error with details
type ValidationError struct {
	Row     int       `json:"row"`
	Column  string    `json:"column,omitempty"`
	Kind    ErrorKind `json:"type"`
	Rule    string    `json:"rule,omitempty"`
	Message string    `json:"message"`
}

// Summary holds the counts the text report prints.
type Summary struct {
	TotalRows      int      `json:"total_rows"`
	ValidRows      int      `json:"valid_rows"`
	InvalidRows    int      `json:"invalid_rows"`
	ColumnsChecked int      `json:"columns_checked"`
	MissingColumns []string `json:"missing_columns"`
	ExtraColumns   []string `json:"extra_columns"`
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Errors      []ValidationError `json:"errors"`
	InvalidRows []int             `json:"invalid_rows"`
	Summary     Summary           `json:"summary"`
}

// ErrorCounts groups the errors by kind, in first-seen order.
func (r *ValidationResult) ErrorCounts() ([]ErrorKind, map[ErrorKind]int) {
	var order []ErrorKind
	counts := map[ErrorKind]int{}
	for _, e := range r.Errors {
		if _, ok := counts[e.Kind]; !ok {
			order = append(order, e.Kind)
		}
		counts[e.Kind]++
	}
	return order, counts
}

// RowErrors returns the errors recorded for one row.
func (r *ValidationResult) RowErrors(row int) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Row == row {
			out = append(out, e)
		}
	}
	return out
}

// Fatal reports whether a fatal structural error stopped validation.
func (r *ValidationResult) Fatal() bool {
	for _, e := range r.Errors {
		if e.Kind.Fatal() {
			return true
		}
	}
	return false
}
