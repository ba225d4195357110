package sortby

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Getter resolves a dotted property path on a value
type Getter interface {
	Get(path string) any
}

// Criterion orders two values; multiple criteria compose left to right,
// the first being the primary key and later ones breaking ties
type Criterion[T any] struct {
	name string
	cmp  func(a, b T) int
	desc bool
}

// By builds a criterion from a comparator returning <0, 0 or >0
func By[T any](name string, fn func(a, b T) int) Criterion[T] {
	return Criterion[T]{name: name, cmp: fn}
}

// Field orders by the value at a dotted property path
func Field[T Getter](path string) Criterion[T] {
	return Criterion[T]{
		name: path,
		cmp: func(a, b T) int {
			return Values(a.Get(path), b.Get(path))
		},
	}
}

// Desc returns the criterion with its order reversed
func (c Criterion[T]) Desc() Criterion[T] {
	c.desc = !c.desc
	return c
}

// String returns the criterion name with a "-" prefix when descending
func (c Criterion[T]) String() string {
	if c.desc {
		return "-" + c.name
	}
	return c.name
}

func (c Criterion[T]) compare(a, b T) int {
	if c.cmp == nil {
		return 0
	}
	n := c.cmp(a, b)
	if c.desc {
		return -n
	}
	return n
}

// Stable returns a sorted copy of items; the input slice is not modified
func Stable[T any](items []T, criteria ...Criterion[T]) []T {
	order := Indices(items, criteria...)
	out := make([]T, len(order))
	for i, j := range order {
		out[i] = items[j]
	}
	return out
}

// Indices returns the stable sorted permutation of items as source indices
func Indices[T any](items []T, criteria ...Criterion[T]) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	if len(criteria) == 0 {
		return order
	}
	slices.SortStableFunc(order, func(a, b int) int {
		for _, c := range criteria {
			if n := c.compare(items[a], items[b]); n != 0 {
				return n
			}
		}
		return 0
	})
	return order
}

// Values compares two arbitrary property values. Nil sorts first, numbers
// compare numerically, times chronologically, and everything else by its
// string form.
func Values(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}

	switch va := a.(type) {
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
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
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
