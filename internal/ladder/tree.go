package ladder

import (
	"matchcore/internal/common"
	"matchcore/internal/level"

	"github.com/tidwall/btree"
)

// treeLadder is the tree-ordered-map shape: a tidwall/btree.BTreeG keyed by
// price with a side-specific comparator (bids descending, asks ascending),
// giving O(1)-amortized Best() via Min() and O(log n) Find/Erase. An
// auxiliary hash index isn't needed here the way the C++ source uses one
// for std::map (spec §4.C6 "an auxiliary price → iterator hash index
// accelerates O(1) level mutation") because BTreeG's Get/Set/Delete are
// already direct key operations, not iterator-walks.
type treeLadder struct {
	tr *btree.BTreeG[*Level]
}

func newTreeLadder(bidSide bool) *treeLadder {
	var less func(a, b *Level) bool
	if bidSide {
		// Descending: best = highest price = tree minimum.
		less = func(a, b *Level) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		// Ascending: best = lowest price = tree minimum.
		less = func(a, b *Level) bool { return a.Price.LessThan(b.Price) }
	}
	return &treeLadder{tr: btree.NewBTreeG(less)}
}

func (t *treeLadder) Find(price common.Price) (*Level, bool) {
	return t.tr.Get(&Level{Price: price})
}

func (t *treeLadder) GetOrCreate(price common.Price, shape level.Shape) *Level {
	if lvl, ok := t.Find(price); ok {
		return lvl
	}
	lvl := &Level{Price: price, Queue: level.New(shape)}
	t.tr.Set(lvl)
	return lvl
}

func (t *treeLadder) Erase(price common.Price) {
	t.tr.Delete(&Level{Price: price})
}

func (t *treeLadder) Empty() bool {
	return t.tr.Len() == 0
}

func (t *treeLadder) Len() int {
	return t.tr.Len()
}

func (t *treeLadder) Best() (*Level, bool) {
	return t.tr.Min()
}

func (t *treeLadder) Worst() (*Level, bool) {
	return t.tr.Max()
}

func (t *treeLadder) ForEach(pMin, pMax common.Price, cb func(*Level) bool) {
	t.tr.Scan(func(lvl *Level) bool {
		if lvl.Price.LessThan(pMin) || lvl.Price.GreaterThan(pMax) {
			return true
		}
		return cb(lvl)
	})
}
