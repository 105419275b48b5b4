// Package ladder implements the price-ladder abstraction (spec §4.C5): a
// uniform {Find, GetOrCreate, Erase, Best/Worst, ForEach} contract over two
// concrete shapes — a tree-ordered map and a sorted contiguous array with a
// pluggable searcher — grounded on the original C++ source's
// MapBasedL3OrderBook/VectorBasedL3OrderBook (original_source/src/book/book_l3.hpp)
// and the teacher's own tidwall/btree-backed price levels
// (saiputravu-Exchange/internal/engine/orderbook.go).
package ladder

import (
	"matchcore/internal/common"
	"matchcore/internal/level"
)

// Level is one price level. An L3 book populates Queue, its FIFO of
// resting orders; an L2 book instead populates Quantity/Volume, the
// aggregate view over that same queue (spec §4.C6 L2LevelInfo). Both book
// kinds share this one record and the same pluggable ladder shape, since
// the storage-strategy choice (tree vs sorted array) is orthogonal to
// which payload a level carries.
type Level struct {
	Price    common.Price
	Queue    level.Container
	Quantity common.Quantity
	Volume   common.Volume
}

// Ladder is one side (bid or ask) of price levels, ordered so that the
// best price for that side is always reached first.
type Ladder interface {
	// Find returns the level at price, if present.
	Find(price common.Price) (*Level, bool)
	// GetOrCreate returns the level at price, creating an empty one (with
	// a queue of the given shape) if absent.
	GetOrCreate(price common.Price, shape level.Shape) *Level
	// Erase removes the level at price. No-op if absent.
	Erase(price common.Price)
	// Empty reports whether the ladder holds no levels.
	Empty() bool
	// Best returns the best (highest bid / lowest ask) level.
	Best() (*Level, bool)
	// Worst returns the worst (lowest bid / highest ask) level, used to
	// synthesize a Market order's routing price (spec §4.C8).
	Worst() (*Level, bool)
	// ForEach visits levels in best-first order within the inclusive
	// price bounds [pMin, pMax], stopping early if cb returns false.
	ForEach(pMin, pMax common.Price, cb func(*Level) bool)
	// Len reports the number of distinct price levels (depth).
	Len() int
}

// Shape enumerates the configurable ladder shapes (spec §6 "ladder_shape").
type Shape int

const (
	Tree Shape = iota
	SortedArray
)

// New constructs an empty Ladder for one side of the book. bidSide
// controls the comparator direction (bids best-first = descending price,
// asks best-first = ascending price). maxDepth reserves capacity for the
// SortedArray shape (spec §4.C5 default 65536); it is ignored by Tree.
func New(shape Shape, bidSide bool, searcher Searcher, maxDepth int) Ladder {
	switch shape {
	case SortedArray:
		return newArrayLadder(bidSide, searcher, maxDepth)
	default:
		return newTreeLadder(bidSide)
	}
}
