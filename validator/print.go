package validator

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Print writes the human-readable validation summary. At most maxErrors
// individual errors are listed; a negative value lists all of them.
func (r *ValidationResult) Print(w io.Writer, maxErrors int) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "VALIDATION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total rows: %d\n", r.Summary.TotalRows)
	fmt.Fprintf(w, "Valid rows: %d\n", r.Summary.ValidRows)
	fmt.Fprintf(w, "Invalid rows: %d\n", r.Summary.InvalidRows)
	fmt.Fprintf(w, "Columns checked: %d\n", r.Summary.ColumnsChecked)
	if len(r.Summary.MissingColumns) > 0 {
		fmt.Fprintf(w, "Missing columns: %s\n", strings.Join(r.Summary.MissingColumns, ", "))
	}
	if len(r.Summary.ExtraColumns) > 0 {
		fmt.Fprintf(w, "Extra columns: %s\n", strings.Join(r.Summary.ExtraColumns, ", "))
	}

	fmt.Fprintln(w)
	if r.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Validation: PASSED")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Validation: FAILED")
		fmt.Fprintf(w, "Total errors: %d\n", len(r.Errors))

		order, counts := r.ErrorCounts()
		fmt.Fprintln(w, "\nError breakdown:")
		for _, kind := range order {
			fmt.Fprintf(w, "  %s: %d\n", kind, counts[kind])
		}

		if maxErrors != 0 {
			fmt.Fprintf(w, "\n🔴 Errors:\n")
			for i, e := range r.Errors {
				if maxErrors > 0 && i >= maxErrors {
					fmt.Fprintf(w, "  ... and %d more\n", len(r.Errors)-maxErrors)
					break
				}
				fmt.Fprintf(w, "  %d. ", i+1)
				if e.Row != TableLevel {
					fmt.Fprintf(w, "[row %d]", e.Row)
				} else {
					fmt.Fprint(w, "[table]")
				}
				if e.Column != "" {
					fmt.Fprintf(w, ".%s", e.Column)
				}
				fmt.Fprintf(w, " %s: %s\n", e.Kind, e.Message)
			}
		}
	}
	fmt.Fprintln(w, rule)
}
