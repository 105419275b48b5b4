package book

import (
	"matchcore/internal/common"
	"matchcore/internal/ladder"
	"matchcore/internal/level"
	"matchcore/internal/pool"
)

// l3index is the per-order bookkeeping needed to cancel or remove an order
// in O(1) without walking a ladder (spec §4.C7 "order_id → (ladder-iterator,
// queue-handle) index"). Storing the Order pointer alongside the handle
// means CancelOrder/RemoveFilled never need a Container.Get-by-handle
// method — level.Container deliberately has none, keeping that interface
// to the three operations spec §9 calls for.
type l3index struct {
	side   common.Side
	price  common.Price
	handle level.Handle
	order  *common.Order
}

// L3Book is the per-order book: two price ladders of FIFO level queues,
// plus an id index for O(1) lookup, optionally mirroring every mutation
// into an embedded L2Book (spec §4.C7). Resting orders live in a pooled
// allocator (spec §4.C3) rather than as loose heap allocations, so their
// addresses stay stable for the lifetime of the handles the level queues
// hand out.
type L3Book struct {
	bids   ladder.Ladder
	asks   ladder.Ladder
	l2     *L2Book
	index  map[common.OrderId]l3index
	shape  level.Shape
	orders *pool.Allocator[common.Order]
}

// NewL3Book constructs an empty L3 book. l2 may be nil if no aggregated
// view is needed; shape selects the per-level queue container kind (spec
// §6 "level_queue_shape") used for every level this book creates; slabSize
// sizes the order allocator's slabs (spec §4.C3, <= 0 uses the default).
func NewL3Book(ladderShape ladder.Shape, searcher ladder.Searcher, maxDepth int, queueShape level.Shape, l2 *L2Book, slabSize int) *L3Book {
	return &L3Book{
		bids:   ladder.New(ladderShape, true, searcher, maxDepth),
		asks:   ladder.New(ladderShape, false, searcher, maxDepth),
		l2:     l2,
		index:  make(map[common.OrderId]l3index),
		shape:  queueShape,
		orders: pool.NewAllocator[common.Order](slabSize),
	}
}

func (b *L3Book) sideLadder(side common.Side) ladder.Ladder {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

// OrderExists reports whether id currently references a resting order.
func (b *L3Book) OrderExists(id common.OrderId) bool {
	_, ok := b.index[id]
	return ok
}

// OrderCount returns the number of distinct resting orders (spec §8
// universal invariant 3).
func (b *L3Book) OrderCount() int {
	return len(b.index)
}

// AddOrder copies o into a pooled slot, places the copy into its side's
// book at o.Price (creating the level if absent), and records the
// id→handle mapping. Returns the pooled copy; callers should use it (not
// the original o) for anything that outlives this call, since it is the
// pooled copy's address that stays stable. Callers are responsible for
// o.Valid() and duplicate-id checks (spec §4.C8 step 1) before calling;
// AddOrder itself does not re-validate, since the matching engine is the
// only caller and already performs both checks.
func (b *L3Book) AddOrder(o *common.Order) *common.Order {
	stored := b.orders.Allocate()
	*stored = *o

	lad := b.sideLadder(stored.Side)
	lvl := lad.GetOrCreate(stored.Price, b.shape)
	h := lvl.Queue.Insert(stored)
	b.index[stored.OrderId] = l3index{side: stored.Side, price: stored.Price, handle: h, order: stored}
	if b.l2 != nil {
		b.l2.Add(stored.Side, stored.Price, stored.RemainingQuantity)
	}
	return stored
}

// Deallocate returns o's pooled slot once the caller (the matching engine)
// is certain no further code will read it — after CancelOrder/RemoveFilled
// has unlinked it and any observers have already fired, since deallocation
// zeroes the slot's contents.
func (b *L3Book) Deallocate(o *common.Order) {
	b.orders.Deallocate(o)
}

// CancelOrder removes the order referenced by id from its queue, erasing
// the level if it becomes empty, mirrors the cancellation into L2, and
// returns the removed Order. Reports false if id is unknown (idempotent
// no-op, spec §8 round-trip law "cancel of an unknown id is idempotent").
func (b *L3Book) CancelOrder(id common.OrderId) (*common.Order, bool) {
	entry, ok := b.index[id]
	if !ok {
		return nil, false
	}
	lad := b.sideLadder(entry.side)
	lvl, ok := lad.Find(entry.price)
	if ok {
		lvl.Queue.Erase(entry.handle)
		if lvl.Queue.Empty() {
			lad.Erase(entry.price)
		}
	}
	delete(b.index, id)
	if b.l2 != nil {
		b.l2.Cancel(entry.side, entry.price, entry.order.RemainingQuantity)
	}
	return entry.order, true
}

// RemoveFilled unlinks a fully-filled order from its level's queue without
// erasing the (possibly now-empty) level itself — the matching loop calls
// this mid-crossing and removes empty levels afterward in one pass (spec
// §4.C7 "level_remove... does not erase the level"; §4.C8 MatchOrders).
// It does not touch L2: the matching loop mirrors each fill's quantity
// into L2 directly as it happens, so there is nothing further to mirror
// once an order's remaining quantity reaches zero.
func (b *L3Book) RemoveFilled(o *common.Order) {
	entry, ok := b.index[o.OrderId]
	if !ok {
		return
	}
	if lvl, ok := b.sideLadder(entry.side).Find(entry.price); ok {
		lvl.Queue.Erase(entry.handle)
	}
	delete(b.index, o.OrderId)
}

// RemoveEmptyBidLevel erases the bid level at price if its queue is empty.
func (b *L3Book) RemoveEmptyBidLevel(price common.Price) {
	removeIfEmpty(b.bids, price)
}

// RemoveEmptyAskLevel erases the ask level at price if its queue is empty.
func (b *L3Book) RemoveEmptyAskLevel(price common.Price) {
	removeIfEmpty(b.asks, price)
}

func removeIfEmpty(lad ladder.Ladder, price common.Price) {
	if lvl, ok := lad.Find(price); ok && lvl.Queue.Empty() {
		lad.Erase(price)
	}
}

// BestBid returns the earliest-arrival order at the highest bid price.
func (b *L3Book) BestBid() *common.Order {
	return bestOrder(b.bids)
}

// BestAsk returns the earliest-arrival order at the lowest ask price.
func (b *L3Book) BestAsk() *common.Order {
	return bestOrder(b.asks)
}

func bestOrder(lad ladder.Ladder) *common.Order {
	lvl, ok := lad.Best()
	if !ok {
		return nil
	}
	return lvl.Queue.First()
}

// BestBidLevel returns the best bid's price and queue.
func (b *L3Book) BestBidLevel() (common.Price, level.Container, bool) {
	return bestLevel(b.bids)
}

// BestAskLevel returns the best ask's price and queue.
func (b *L3Book) BestAskLevel() (common.Price, level.Container, bool) {
	return bestLevel(b.asks)
}

func bestLevel(lad ladder.Ladder) (common.Price, level.Container, bool) {
	lvl, ok := lad.Best()
	if !ok {
		return common.Zero, nil, false
	}
	return lvl.Price, lvl.Queue, true
}

// WorstBidLevel returns the bid side's deepest (lowest) resting price,
// used to synthesize a Market sell order's routing price (spec §4.C8 step
// 2).
func (b *L3Book) WorstBidLevel() (common.Price, bool) {
	return worstPrice(b.bids)
}

// WorstAskLevel returns the ask side's deepest (highest) resting price,
// used to synthesize a Market buy order's routing price.
func (b *L3Book) WorstAskLevel() (common.Price, bool) {
	return worstPrice(b.asks)
}

func worstPrice(lad ladder.Ladder) (common.Price, bool) {
	lvl, ok := lad.Worst()
	if !ok {
		return common.Zero, false
	}
	return lvl.Price, true
}

// IsBidEmpty reports whether the bid side holds no levels.
func (b *L3Book) IsBidEmpty() bool { return b.bids.Empty() }

// IsAskEmpty reports whether the ask side holds no levels.
func (b *L3Book) IsAskEmpty() bool { return b.asks.Empty() }

// ForEachBidLevel visits bid levels best-first within [pMin, pMax].
func (b *L3Book) ForEachBidLevel(pMin, pMax common.Price, cb func(price common.Price, q level.Container) bool) {
	b.bids.ForEach(pMin, pMax, func(lvl *ladder.Level) bool { return cb(lvl.Price, lvl.Queue) })
}

// ForEachAskLevel visits ask levels best-first within [pMin, pMax]. The
// original source has a version of this routine that iterates the bid
// ladder's begin/end instead of the ask ladder's — almost certainly a
// copy-paste mistake (see the open questions this repository resolves);
// this implementation iterates the ask side, as the name promises.
func (b *L3Book) ForEachAskLevel(pMin, pMax common.Price, cb func(price common.Price, q level.Container) bool) {
	b.asks.ForEach(pMin, pMax, func(lvl *ladder.Level) bool { return cb(lvl.Price, lvl.Queue) })
}
