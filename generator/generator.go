package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
)

// Generator synthesizes tables that conform to a schema. A Generator owns
// its random source and is not safe for concurrent use; create one per
// goroutine when sharding work.
type Generator struct {
	rng         *rand.Rand
	provider    Provider
	retryBudget int
	logger      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes generation reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand uses r as the random source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithProvider sets the realistic-value provider used by faker_template
// fields. A nil provider makes those fields fall back to random strings.
func WithProvider(p Provider) Option {
	return func(g *Generator) {
		g.provider = p
		if p == nil {
			g.provider = noProvider{}
		}
	}
}

// WithRetryBudget fixes the number of draws a unique field may spend on
// each value before generation fails. Zero or less derives the budget from
// the remaining value space.
func WithRetryBudget(n int) Option {
	return func(g *Generator) {
		if n < 0 {
			n = 0
		}
		g.retryBudget = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

type noProvider struct{}

func (noProvider) Value(string) (string, bool) { return "", false }

// New creates a Generator. Without WithSeed or WithRand it is seeded
// randomly.
func New(opts ...Option) *Generator {
	g := &Generator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.provider == nil {
		g.provider = NewFakerProvider(g.rng.Uint64())
	}
	return g
}

// Generate is a convenience for New(opts...).Generate(s, rows).
func Generate(s *schema.Schema, rows int, opts ...Option) (*table.Table, error) {
	return New(opts...).Generate(s, rows)
}

// Generate produces rows rows for s. Columns follow schema order. Per-field
// uniqueness state spans the whole table. On error no table is returned.
func (g *Generator) Generate(s *schema.Schema, rows int) (*table.Table, error) {
	if s == nil {
		return nil, errors.New("generate: schema is nil")
	}
	if rows < 0 {
		return nil, &GenerationError{
			Row:    -1,
			Reason: fmt.Sprintf("row count must not be negative, got %d", rows),
			Err:    ErrInvalidRowCount,
		}
	}
	if err := Feasible(s, rows); err != nil {
		return nil, err
	}

	started := time.Now()
	fields := s.Fields()
	gens := make([]*fieldGen, len(fields))
	for i, f := range fields {
		fg, err := newFieldGen(f, g.rng, g.provider, g.retryBudget)
		if err != nil {
			return nil, &GenerationError{Field: f.Name, Row: -1, Reason: err.Error(), Err: ErrValueSpaceExhausted}
		}
		gens[i] = fg
	}

	t := table.New(s.Names()...)
	t.Rows = make([]table.Row, 0, rows)
	for r := 0; r < rows; r++ {
		row := make(table.Row, len(gens))
		for i, fg := range gens {
			v, err := fg.next()
			if err != nil {
				g.logger.Debug("generation failed",
					zap.String("field", fields[i].Name),
					zap.Int("row", r),
					zap.Error(err))
				return nil, &GenerationError{Field: fields[i].Name, Row: r, Reason: err.Error(), Err: ErrValueSpaceExhausted}
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}

	g.logger.Debug("generated table",
		zap.Int("rows", rows),
		zap.Int("fields", len(fields)),
		zap.Duration("elapsed", time.Since(started)))
	return t, nil
}

// Feasible reports whether every unique, non-nullable field has at least
// rows distinct values. Nullable unique fields are checked lazily during
// generation, because null cells do not consume the value space.
func Feasible(s *schema.Schema, rows int) error {
	for _, f := range s.Fields() {
		if !f.Unique || f.EffectiveNullRate() > 0 {
			continue
		}
		space, bounded := ValueSpace(f)
		if bounded && space < int64(rows) {
			return &GenerationError{
				Field:  f.Name,
				Row:    -1,
				Reason: fmt.Sprintf("cannot generate %d unique values, only %d distinct values are possible", rows, space),
				Err:    ErrValueSpaceExhausted,
			}
		}
	}
	return nil
}
