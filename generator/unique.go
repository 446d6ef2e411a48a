package generator

import (
	"math"
	"time"

	"github.com/ridoystarlord/etlforge/schema"
)

const (
	// minRetries is the per-value retry budget for unbounded value spaces.
	minRetries = 100

	// retryFactor scales the budget with the inverse share of the value
	// space still free, so a draw with r of K values left gets
	// retryFactor*K/r attempts. The chance of a false exhaustion is then
	// about e^-retryFactor.
	retryFactor = 32

	// spaceLimit caps value space sizes; anything larger is treated as
	// unbounded.
	spaceLimit = 1 << 53
)

// ValueSpace returns the number of distinct values a field can take
// during generation, and false when that number is unbounded for practical
// purposes (large string spaces, realistic-value templates).
func ValueSpace(f schema.FieldSpec) (int64, bool) {
	switch f.Type {
	case schema.Int:
		r := f.Bounds()
		n := r.Max - r.Min + 1
		if n >= spaceLimit {
			return 0, false
		}
		return int64(n), true
	case schema.Float:
		lo, hi, ok := floatGrid(f)
		if !ok {
			return 0, true
		}
		n := hi - lo + 1
		if n >= spaceLimit {
			return 0, false
		}
		return int64(n), true
	case schema.Date:
		start, end, err := f.DateSpan()
		if err != nil {
			return 0, true
		}
		return int64(end.Sub(start)/(24*time.Hour)) + 1, true
	case schema.Category:
		return int64(len(f.Values)), true
	case schema.String:
		if f.FakerTemplate != "" {
			return 0, false
		}
		l := f.LengthBounds()
		total := 0.0
		for n := l.Min; n <= l.Max; n++ {
			total += math.Pow(float64(len(alphabet)), float64(n))
			if total >= spaceLimit {
				return 0, false
			}
		}
		return int64(total), true
	}
	return 0, false
}

// floatGrid returns the smallest and largest scaled integers k such that
// k/10^precision lies inside the field's range.
func floatGrid(f schema.FieldSpec) (float64, float64, bool) {
	r := f.Bounds()
	scale := math.Pow10(f.Decimals())
	lo := math.Ceil(r.Min*scale - 1e-9)
	hi := math.Floor(r.Max*scale + 1e-9)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// uniqueSet tracks the non-null values a unique field has emitted.
type uniqueSet struct {
	seen    map[any]struct{}
	space   int64
	bounded bool
	budget  int // fixed per-value budget; 0 derives it from the space
}

func newUniqueSet(f schema.FieldSpec, budget int) *uniqueSet {
	space, bounded := ValueSpace(f)
	return &uniqueSet{
		seen:    make(map[any]struct{}),
		space:   space,
		bounded: bounded,
		budget:  budget,
	}
}

// exhausted reports whether every value of a bounded space was used.
func (u *uniqueSet) exhausted() bool {
	return u.bounded && int64(len(u.seen)) >= u.space
}

// attempts is the number of draws allowed for the next value.
func (u *uniqueSet) attempts() int {
	if u.budget > 0 {
		return u.budget
	}
	if !u.bounded {
		return minRetries
	}
	remaining := u.space - int64(len(u.seen))
	if remaining <= 0 {
		return 0
	}
	n := float64(retryFactor) * float64(u.space) / float64(remaining)
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if int(n) < minRetries {
		return minRetries
	}
	return int(math.Ceil(n))
}

func (u *uniqueSet) contains(v any) bool {
	_, ok := u.seen[v]
	return ok
}

func (u *uniqueSet) add(v any) {
	u.seen[v] = struct{}{}
}
