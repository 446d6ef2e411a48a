package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ridoystarlord/etlforge/schema"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Round rounds v to precision decimal places, halves away from zero.
func Round(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Round(v*scale) / scale
}

// fieldGen produces values for one field across a whole table.
type fieldGen struct {
	spec     schema.FieldSpec
	rng      *rand.Rand
	provider Provider
	unique   *uniqueSet

	// precomputed per type
	start  time.Time
	days   int64
	layout string
	lo, hi float64 // float grid, scaled
	scale  float64
}

func newFieldGen(f schema.FieldSpec, rng *rand.Rand, provider Provider, budget int) (*fieldGen, error) {
	g := &fieldGen{spec: f, rng: rng, provider: provider}
	switch f.Type {
	case schema.Date:
		start, end, err := f.DateSpan()
		if err != nil {
			return nil, err
		}
		layout, err := schema.Layout(f.DateFormat())
		if err != nil {
			return nil, err
		}
		g.start = start
		g.days = int64(end.Sub(start) / (24 * time.Hour))
		g.layout = layout
	case schema.Float:
		lo, hi, ok := floatGrid(f)
		if !ok {
			r := f.Bounds()
			return nil, fmt.Errorf("no value with %d decimal places lies in [%v, %v]", f.Decimals(), r.Min, r.Max)
		}
		g.lo, g.hi = lo, hi
		g.scale = math.Pow10(f.Decimals())
	}
	if f.Unique {
		g.unique = newUniqueSet(f, budget)
	}
	return g, nil
}

// next returns the value for the next row: nil for null, otherwise an
// int64, float64 or string.
func (g *fieldGen) next() (any, error) {
	if g.rng.Float64() < g.spec.EffectiveNullRate() {
		return nil, nil
	}
	if g.unique == nil {
		return g.draw(), nil
	}
	if g.unique.exhausted() {
		return nil, fmt.Errorf("%w: all %d distinct values already used", ErrValueSpaceExhausted, g.unique.space)
	}
	attempts := g.unique.attempts()
	for i := 0; i < attempts; i++ {
		v := g.draw()
		if !g.unique.contains(v) {
			g.unique.add(v)
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: no new distinct value after %d attempts (%d used)", ErrValueSpaceExhausted, attempts, len(g.unique.seen))
}

// draw produces one value with the type's strategy, ignoring uniqueness.
func (g *fieldGen) draw() any {
	switch g.spec.Type {
	case schema.Int:
		return g.drawInt()
	case schema.Float:
		return g.drawFloat()
	case schema.String:
		return g.drawString()
	case schema.Date:
		return g.drawDate()
	case schema.Category:
		return g.spec.Values[g.rng.IntN(len(g.spec.Values))]
	}
	panic(fmt.Sprintf("generator: unhandled field type %q", g.spec.Type))
}

func (g *fieldGen) drawInt() int64 {
	r := g.spec.Bounds()
	lo, hi := int64(r.Min), int64(r.Max)
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int64(g.rng.Uint64())
	}
	return lo + int64(g.rng.Uint64N(span+1))
}

func (g *fieldGen) drawFloat() float64 {
	r := g.spec.Bounds()
	v := r.Min + g.rng.Float64()*(r.Max-r.Min)
	k := math.Round(v * g.scale)
	k = math.Max(g.lo, math.Min(g.hi, k))
	return k / g.scale
}

func (g *fieldGen) drawString() string {
	if g.spec.FakerTemplate != "" && g.provider != nil {
		if v, ok := g.provider.Value(g.spec.FakerTemplate); ok {
			return v
		}
	}
	l := g.spec.LengthBounds()
	n := l.Min + g.rng.IntN(l.Max-l.Min+1)
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[g.rng.IntN(len(alphabet))])
	}
	return b.String()
}

func (g *fieldGen) drawDate() string {
	offset := g.rng.Int64N(g.days + 1)
	return g.start.AddDate(0, 0, int(offset)).Format(g.layout)
}
