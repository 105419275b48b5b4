package ladder

import (
	"matchcore/internal/common"
	"matchcore/internal/level"
)

// arrayLadder is the sorted-contiguous-array shape (spec §4.C5): the best
// price is always at the back of the slice, and capacity is reserved up
// front to maxDepth to avoid reallocation, matching the C++ source's
// VectorBasedL3OrderBook. bids are kept ascending (best/highest at the
// back); asks are kept descending (best/lowest at the back).
type arrayLadder struct {
	levels   []*Level
	bidSide  bool
	searcher Searcher
	maxDepth int
}

// DefaultMaxDepth is the reserved capacity for the sorted-array ladder
// (spec §6 "max_depth", default 65536).
const DefaultMaxDepth = 65536

func newArrayLadder(bidSide bool, searcher Searcher, maxDepth int) *arrayLadder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if searcher == nil {
		searcher = BinarySearcher{}
	}
	return &arrayLadder{
		levels:   make([]*Level, 0, maxDepth),
		bidSide:  bidSide,
		searcher: searcher,
		maxDepth: maxDepth,
	}
}

// before reports whether price x sorts strictly before price y in this
// ladder's internal (not best-first) array order.
func (a *arrayLadder) before(x, y common.Price) bool {
	if a.bidSide {
		return x.LessThan(y) // ascending: best (highest) at the back
	}
	return x.GreaterThan(y) // descending: best (lowest) at the back
}

func (a *arrayLadder) find(price common.Price) int {
	return a.searcher.Find(a.levels, price, a.before)
}

func (a *arrayLadder) Find(price common.Price) (*Level, bool) {
	idx := a.find(price)
	if idx < len(a.levels) && a.levels[idx].Price.Equal(price) {
		return a.levels[idx], true
	}
	return nil, false
}

func (a *arrayLadder) GetOrCreate(price common.Price, shape level.Shape) *Level {
	idx := a.find(price)
	if idx < len(a.levels) && a.levels[idx].Price.Equal(price) {
		return a.levels[idx]
	}

	if len(a.levels) >= a.maxDepth {
		// Boundary behavior (spec §8): reallocation beyond the reserved
		// max depth is implementation-defined. This implementation grows
		// past the reservation rather than reject the order — a resting
		// order losing a place in the book because of an internal
		// capacity limit would violate the "no silent drop" spirit of the
		// rest of the engine. The reservation is purely a performance hint.
		_ = a.maxDepth
	}

	lvl := &Level{Price: price, Queue: level.New(shape)}
	a.levels = append(a.levels, nil)
	copy(a.levels[idx+1:], a.levels[idx:])
	a.levels[idx] = lvl
	return lvl
}

func (a *arrayLadder) Erase(price common.Price) {
	idx := a.find(price)
	if idx >= len(a.levels) || !a.levels[idx].Price.Equal(price) {
		return
	}
	copy(a.levels[idx:], a.levels[idx+1:])
	a.levels = a.levels[:len(a.levels)-1]
}

func (a *arrayLadder) Empty() bool {
	return len(a.levels) == 0
}

func (a *arrayLadder) Len() int {
	return len(a.levels)
}

func (a *arrayLadder) Best() (*Level, bool) {
	n := len(a.levels)
	if n == 0 {
		return nil, false
	}
	return a.levels[n-1], true
}

func (a *arrayLadder) Worst() (*Level, bool) {
	if len(a.levels) == 0 {
		return nil, false
	}
	return a.levels[0], true
}

// ForEach visits levels best-first (from the back of the array forward)
// within the inclusive bounds [pMin, pMax].
func (a *arrayLadder) ForEach(pMin, pMax common.Price, cb func(*Level) bool) {
	for i := len(a.levels) - 1; i >= 0; i-- {
		lvl := a.levels[i]
		if lvl.Price.LessThan(pMin) || lvl.Price.GreaterThan(pMax) {
			continue
		}
		if !cb(lvl) {
			return
		}
	}
}
