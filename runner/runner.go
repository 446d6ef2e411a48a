// Package runner times generation and validation over growing row counts.
package runner

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ridoystarlord/etlforge/generator"
	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
	"github.com/ridoystarlord/etlforge/tableio"
	"github.com/ridoystarlord/etlforge/validator"
)

// DefaultRowCounts are the sizes used when none are given.
var DefaultRowCounts = []int{1_000, 5_000, 10_000, 25_000, 50_000, 100_000}

// Measurement is the outcome of one benchmark size. Durations are negative
// when the step failed or did not run.
type Measurement struct {
	Rows             int
	GenerateDuration time.Duration
	ValidateDuration time.Duration
	Valid            bool
	Err              error
}

// Options configures a benchmark run.
type Options struct {
	Generator []generator.Option
	Logger    *zap.Logger
	// Progress, when set, is called after each size completes.
	Progress func(Measurement)
}

// Run generates and validates each row count in turn. A failure at one size
// is recorded in its Measurement and the run moves on. Cancelling ctx stops
// the run between sizes and returns what was measured so far.
func Run(ctx context.Context, s *schema.Schema, rowCounts []int, opts Options) ([]Measurement, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rowCounts) == 0 {
		rowCounts = DefaultRowCounts
	}

	gen := generator.New(opts.Generator...)
	val := validator.NewTableValidator(validator.WithLogger(logger))

	results := make([]Measurement, 0, len(rowCounts))
	for _, rows := range rowCounts {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		m := Measurement{Rows: rows, GenerateDuration: -1, ValidateDuration: -1}

		start := time.Now()
		t, err := gen.Generate(s, rows)
		if err != nil {
			m.Err = fmt.Errorf("generation: %w", err)
			logger.Warn("benchmark generation failed", zap.Int("rows", rows), zap.Error(err))
		} else {
			m.GenerateDuration = time.Since(start)

			start = time.Now()
			result := val.Validate(s, t)
			m.ValidateDuration = time.Since(start)
			m.Valid = result.Valid
		}

		logger.Info("benchmark size done",
			zap.Int("rows", rows),
			zap.Duration("generate", m.GenerateDuration),
			zap.Duration("validate", m.ValidateDuration),
			zap.Bool("valid", m.Valid))
		if opts.Progress != nil {
			opts.Progress(m)
		}
		results = append(results, m)
	}
	return results, nil
}

// Table lays the measurements out as a table with durations in seconds.
// Failed steps read -1.
func Table(results []Measurement) *table.Table {
	t := table.New("rows", "generation_seconds", "validation_seconds", "valid", "error")
	for _, m := range results {
		errText := ""
		if m.Err != nil {
			errText = m.Err.Error()
		}
		t.Rows = append(t.Rows, table.Row{
			int64(m.Rows),
			seconds(m.GenerateDuration),
			seconds(m.ValidateDuration),
			strconv.FormatBool(m.Valid),
			errText,
		})
	}
	return t
}

func seconds(d time.Duration) float64 {
	if d < 0 {
		return -1
	}
	return d.Seconds()
}

// WriteCSV writes the measurements as CSV.
func WriteCSV(w io.Writer, results []Measurement) error {
	return tableio.WriteCSV(w, Table(results))
}

// SystemInfo describes the machine the benchmark ran on.
func SystemInfo() [][2]string {
	return [][2]string{
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"CPUs", strconv.Itoa(runtime.NumCPU())},
		{"Go Version", runtime.Version()},
	}
}
