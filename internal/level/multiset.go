package level

import (
	"matchcore/internal/common"

	"github.com/tidwall/btree"
)

// msItem pairs an order with a monotonic insertion sequence so that two
// orders arriving with an identical creation time (possible at
// high-resolution-but-not-infinite clock granularity) still sort
// deterministically in arrival order — the multiset's defining difference
// from orderedSetContainer (spec §4.C4: "Allows identical timestamps").
type msItem struct {
	order *common.Order
	seq   uint64
}

// multiSetContainer is the multiset-keyed-by-creation-time variant, backed
// by the same tidwall/btree the ordered-set and price-ladder variants use.
type multiSetContainer struct {
	tr     *btree.BTreeG[msItem]
	nextSeq uint64
	bySeq  map[uint64]msItem
}

func msLess(a, b msItem) bool {
	if !a.order.CreationTime.Equal(b.order.CreationTime) {
		return a.order.CreationTime.Before(b.order.CreationTime)
	}
	return a.seq < b.seq
}

func newMultiSetContainer() *multiSetContainer {
	return &multiSetContainer{
		tr:    btree.NewBTreeG(msLess),
		bySeq: make(map[uint64]msItem),
	}
}

// multiSetHandle is the opaque handle returned to callers; it carries just
// enough to relocate the entry in the tree on Erase.
type multiSetHandle struct {
	seq uint64
}

func (c *multiSetContainer) Insert(o *common.Order) Handle {
	seq := c.nextSeq
	c.nextSeq++
	item := msItem{order: o, seq: seq}
	c.tr.Set(item)
	c.bySeq[seq] = item
	return multiSetHandle{seq: seq}
}

func (c *multiSetContainer) Erase(h Handle) {
	mh := h.(multiSetHandle)
	item, ok := c.bySeq[mh.seq]
	if !ok {
		return
	}
	c.tr.Delete(item)
	delete(c.bySeq, mh.seq)
}

func (c *multiSetContainer) Empty() bool {
	return c.tr.Len() == 0
}

func (c *multiSetContainer) Len() int {
	return c.tr.Len()
}

func (c *multiSetContainer) First() *common.Order {
	item, ok := c.tr.Min()
	if !ok {
		return nil
	}
	return item.order
}
