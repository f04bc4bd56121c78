package program

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
)

type domainKind int

const (
	listDomain domainKind = iota
	intRangeDomain
	uniformDomain
)

// Domain is the candidate set of one random-draw site. Integer ranges are
// kept symbolic so large ranges cost nothing until enumerated; uniform
// domains are continuous and must be gridded before enumeration.
type Domain struct {
	kind   domainKind
	values []any
	lo, hi int
	flo    float64
	fhi    float64
}

// ListDomain returns a domain over explicit values.
func ListDomain(values ...any) Domain {
	return Domain{kind: listDomain, values: values}
}

// IntRange returns the inclusive integer domain [lo, hi]. The range must
// be non-empty and hold fewer than math.MaxInt values.
func IntRange(lo, hi int) (Domain, error) {
	if lo > hi {
		return Domain{}, fmt.Errorf("empty range [%d, %d]", lo, hi)
	}
	// hi-lo wraps negative when the true span exceeds math.MaxInt.
	if span := hi - lo; span < 0 || span == math.MaxInt {
		return Domain{}, fmt.Errorf("range [%d, %d] is too large", lo, hi)
	}
	return Domain{kind: intRangeDomain, lo: lo, hi: hi}, nil
}

// Uniform returns the continuous domain [lo, hi].
func Uniform(lo, hi float64) Domain {
	return Domain{kind: uniformDomain, flo: lo, fhi: hi}
}

// Size returns the number of discrete candidates, or 0 for a continuous
// domain.
func (d Domain) Size() int {
	switch d.kind {
	case listDomain:
		return len(d.values)
	case intRangeDomain:
		return d.hi - d.lo + 1
	}
	return 0
}

// Continuous reports whether the domain is a real interval.
func (d Domain) Continuous() bool {
	return d.kind == uniformDomain
}

// Numeric reports whether every candidate is a number.
func (d Domain) Numeric() bool {
	if d.kind != listDomain {
		return true
	}
	for _, v := range d.values {
		if _, ok := ToFloat(v); !ok {
			return false
		}
	}
	return len(d.values) > 0
}

// At returns the i-th candidate of a discrete domain.
func (d Domain) At(i int) any {
	switch d.kind {
	case listDomain:
		return d.values[i]
	case intRangeDomain:
		return d.lo + i
	}
	panic("program: At on continuous domain")
}

// Draw picks one candidate with rng.
func (d Domain) Draw(rng *rand.Rand) any {
	switch d.kind {
	case listDomain:
		return d.values[rng.IntN(len(d.values))]
	case intRangeDomain:
		return d.lo + rng.IntN(d.hi-d.lo+1)
	}
	return d.flo + rng.Float64()*(d.fhi-d.flo)
}

// Bounds returns the minimum, maximum and median candidates of a numeric
// domain. ok is false for non-numeric domains.
func (d Domain) Bounds() (lo, hi, median any, ok bool) {
	switch d.kind {
	case intRangeDomain:
		return d.lo, d.hi, d.lo + (d.hi-d.lo)/2, true
	case uniformDomain:
		return d.flo, d.fhi, (d.flo + d.fhi) / 2, true
	}
	if !d.Numeric() {
		return nil, nil, nil, false
	}
	sorted := slices.Clone(d.values)
	slices.SortStableFunc(sorted, func(a, b any) int {
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	})
	return sorted[0], sorted[len(sorted)-1], sorted[len(sorted)/2], true
}

// Grid returns a discrete version of a continuous domain with steps evenly
// spaced points, both ends included. Discrete domains are returned as is.
func (d Domain) Grid(steps int) Domain {
	if d.kind != uniformDomain {
		return d
	}
	if steps < 2 {
		steps = 2
	}
	vals := make([]any, steps)
	width := d.fhi - d.flo
	for i := range steps {
		vals[i] = d.flo + width*float64(i)/float64(steps-1)
	}
	return ListDomain(vals...)
}

func (d Domain) String() string {
	switch d.kind {
	case intRangeDomain:
		return fmt.Sprintf("randint(%d, %d)", d.lo, d.hi)
	case uniformDomain:
		return fmt.Sprintf("uniform(%g, %g)", d.flo, d.fhi)
	}
	return fmt.Sprintf("choice(%d values)", len(d.values))
}

// toSlice flattens any Go slice or array into []any.
func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ToFloat converts any Go number to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := ToFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
