// Package idgen centralizes id allocation. Products draw random ids from a
// bounded range with collision retry; carts use count-plus-one. The two
// policies are deliberately different and must stay that way.
package idgen

import (
	"errors"
	"math/rand"
)

// ErrSpaceExhausted is returned when no free product id remains in range.
var ErrSpaceExhausted = errors.New("product id space exhausted")

// redrawLimit caps random draws before falling back to a linear scan.
const redrawLimit = 16

// Allocator implements both id policies behind one seam.
type Allocator struct {
	max  int
	intn func(n int) int
}

// New returns an Allocator drawing product ids from [1, max].
func New(max int) *Allocator {
	return &Allocator{max: max, intn: rand.Intn}
}

// NewWithRand returns an Allocator using intn in place of the package random
// source, so tests can script the draws.
func NewWithRand(max int, intn func(n int) int) *Allocator {
	return &Allocator{max: max, intn: intn}
}

// ProductID draws a random id not present in taken. Colliding draws are
// retried; once the redraw limit is hit the range is scanned so a free id is
// found whenever one exists.
func (a *Allocator) ProductID(taken map[int]bool) (int, error) {
	if len(taken) >= a.max {
		return 0, ErrSpaceExhausted
	}
	for i := 0; i < redrawLimit; i++ {
		id := a.intn(a.max) + 1
		if !taken[id] {
			return id, nil
		}
	}
	for id := 1; id <= a.max; id++ {
		if !taken[id] {
			return id, nil
		}
	}
	return 0, ErrSpaceExhausted
}

// CartID assigns the next sequential cart id.
func (a *Allocator) CartID(count int) int { return count + 1 }
