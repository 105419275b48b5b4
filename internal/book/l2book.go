// Package book implements the L2 aggregated depth book (spec §4.C6) and
// the L3 per-order book (spec §4.C7), both built over the shared price
// ladder (internal/ladder) and level queue (internal/level) abstractions.
package book

import (
	"matchcore/internal/common"
	"matchcore/internal/ladder"
	"matchcore/internal/level"

	"github.com/shopspring/decimal"
)

// L2Book is the aggregated (price → quantity, volume) depth view for both
// sides of one instrument. It never holds Order references; it is a pure
// projection, kept in lock-step by its Add/Cancel callers (normally the
// L3 book and the matching engine).
type L2Book struct {
	bids ladder.Ladder
	asks ladder.Ladder
}

// NewL2Book constructs an empty L2 book using the given ladder shape.
func NewL2Book(shape ladder.Shape, searcher ladder.Searcher, maxDepth int) *L2Book {
	return &L2Book{
		bids: ladder.New(shape, true, searcher, maxDepth),
		asks: ladder.New(shape, false, searcher, maxDepth),
	}
}

func (b *L2Book) sideLadder(side common.Side) ladder.Ladder {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

// Add locates or creates the level at price and accumulates qty into it
// (spec §4.C6 "qty_ += q; vol_ += p·q"). Non-positive price or qty is a
// silent no-op (spec §7 validation).
func (b *L2Book) Add(side common.Side, price common.Price, qty common.Quantity) {
	if !price.IsPositive() || qty <= 0 {
		return
	}
	lvl := b.sideLadder(side).GetOrCreate(price, level.LinkedList)
	lvl.Quantity += qty
	lvl.Volume = lvl.Volume.Add(decimalQty(price, qty))
}

// Cancel removes qty from the level at price, erasing the level if the
// resulting quantity is non-positive. No-op if the level is absent or the
// inputs are invalid.
func (b *L2Book) Cancel(side common.Side, price common.Price, qty common.Quantity) {
	if !price.IsPositive() || qty <= 0 {
		return
	}
	lad := b.sideLadder(side)
	lvl, ok := lad.Find(price)
	if !ok {
		return
	}
	lvl.Quantity -= qty
	lvl.Volume = lvl.Volume.Sub(decimalQty(price, qty))
	if lvl.Quantity <= 0 {
		lad.Erase(price)
	}
}

// IsEmpty reports whether the given side holds no levels.
func (b *L2Book) IsEmpty(side common.Side) bool {
	return b.sideLadder(side).Empty()
}

// BestLevel returns the best (highest bid / lowest ask) level's price,
// quantity and volume.
func (b *L2Book) BestLevel(side common.Side) (price common.Price, qty common.Quantity, vol common.Volume, ok bool) {
	lvl, ok := b.sideLadder(side).Best()
	if !ok {
		return common.Zero, 0, common.Zero, false
	}
	return lvl.Price, lvl.Quantity, lvl.Volume, true
}

// ForEach iterates side's levels in best-first order within the inclusive
// price bounds [pMin, pMax], stopping early if cb returns false.
func (b *L2Book) ForEach(side common.Side, pMin, pMax common.Price, cb func(price common.Price, qty common.Quantity, vol common.Volume) bool) {
	b.sideLadder(side).ForEach(pMin, pMax, func(lvl *ladder.Level) bool {
		return cb(lvl.Price, lvl.Quantity, lvl.Volume)
	})
}

func decimalQty(price common.Price, qty common.Quantity) common.Volume {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
