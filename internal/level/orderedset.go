package level

import (
	"matchcore/internal/common"

	"github.com/tidwall/btree"
)

// orderedSetContainer keys orders by creation time in a tidwall/btree
// BTreeG — the same tree type the teacher already depends on for its price
// ladder (internal/engine/orderbook.go). Spec §4.C4 describes this variant
// as "tree insert... wish-to-verify ordering independent of insertion"; a
// B-tree keyed by arrival time reproduces that (std::set<Order,
// OrderCompare>-equivalent) ordering without relying on append order at
// all. Unlike listContainer/dequeContainer, a handle here is a
// key-carrying value (not an address): Erase relocates the entry by
// comparator search, the natural Go analogue of an std::set iterator — an
// std::set iterator is also found by key, not by slot address.
type orderedSetContainer struct {
	tr *btree.BTreeG[*common.Order]
}

func orderByCreationTime(a, b *common.Order) bool {
	return a.CreationTime.Before(b.CreationTime)
}

func newOrderedSetContainer() *orderedSetContainer {
	return &orderedSetContainer{tr: btree.NewBTreeG(orderByCreationTime)}
}

func (c *orderedSetContainer) Insert(o *common.Order) Handle {
	c.tr.Set(o)
	return o
}

func (c *orderedSetContainer) Erase(h Handle) {
	c.tr.Delete(h.(*common.Order))
}

func (c *orderedSetContainer) Empty() bool {
	return c.tr.Len() == 0
}

func (c *orderedSetContainer) Len() int {
	return c.tr.Len()
}

func (c *orderedSetContainer) First() *common.Order {
	o, ok := c.tr.Min()
	if !ok {
		return nil
	}
	return o
}
