// Package banner picks advertising banners for a placement slot.
// Selection is random and weighted by priority: a banner's weight is
// Base^priority, so every priority step multiplies its odds by Base.
package banner

import (
	"math"
	"math/rand/v2"
	"slices"

	"portal-content/internal/domain/entity"
)

// DefaultWeightBase is the odds multiplier per priority step.
const DefaultWeightBase = 1.1

// RandSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Selector draws banners from a candidate pool.
// The zero value uses DefaultWeightBase and the math/rand/v2 global source.
type Selector struct {
	Base float64
	Rand RandSource
}

// NewSelector creates a selector. A non-positive base or nil source takes the default.
func NewSelector(base float64, src RandSource) *Selector {
	return &Selector{Base: base, Rand: src}
}

func (s *Selector) base() float64 {
	if s == nil || s.Base <= 0 {
		return DefaultWeightBase
	}
	return s.Base
}

func (s *Selector) source() RandSource {
	if s == nil || s.Rand == nil {
		return globalSource{}
	}
	return s.Rand
}

// Weight returns the selection weight of a priority. Draws compare weights
// relative to the pool's heaviest banner, so only priority differences matter.
func (s *Selector) Weight(priority int) float64 {
	return math.Pow(s.base(), float64(priority))
}

// relativeWeights returns pool weights scaled so the heaviest banner weighs 1.
// Scaling keeps large priorities from overflowing to +Inf.
func (s *Selector) relativeWeights(pool []entity.Banner) []float64 {
	base := s.base()
	ref := pool[0].Priority
	for _, b := range pool[1:] {
		if (base >= 1 && b.Priority > ref) || (base < 1 && b.Priority < ref) {
			ref = b.Priority
		}
	}
	weights := make([]float64, len(pool))
	for i, b := range pool {
		weights[i] = math.Pow(base, float64(b.Priority-ref))
	}
	return weights
}

// pickIndex returns the index chosen from pool, which must be non-empty.
func (s *Selector) pickIndex(pool []entity.Banner) int {
	if len(pool) == 1 {
		return 0
	}

	weights := s.relativeWeights(pool)
	var total float64
	for _, w := range weights {
		total += w
	}

	r := s.source().Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	// Accumulated rounding can leave r slightly positive.
	return len(pool) - 1
}

// Pick draws one banner. It reports false for an empty pool.
// A single-banner pool is returned without consuming randomness.
func (s *Selector) Pick(pool []entity.Banner) (entity.Banner, bool) {
	if len(pool) == 0 {
		return entity.Banner{}, false
	}
	return pool[s.pickIndex(pool)], true
}

// PickN draws up to n distinct banners without replacement, each draw weighted
// over the banners still remaining. A pool of n or fewer banners is returned
// in full (in drawn order).
func (s *Selector) PickN(pool []entity.Banner, n int) []entity.Banner {
	if n <= 0 || len(pool) == 0 {
		return []entity.Banner{}
	}

	remaining := slices.Clone(pool)
	picked := make([]entity.Banner, 0, min(n, len(pool)))
	for len(picked) < n && len(remaining) > 0 {
		i := s.pickIndex(remaining)
		picked = append(picked, remaining[i])
		remaining = slices.Delete(remaining, i, i+1)
	}
	return picked
}
