// Package engine implements the matching engine (spec §4.C8): the crossing
// algorithm, time-in-force enforcement, trade emission and L2
// synchronization built on top of internal/book's L2/L3 books.
package engine

import (
	"time"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/ladder"
	"matchcore/internal/level"
)

// Params configures the storage strategy for a new Engine's L2/L3 books
// (spec §6 configuration surface).
type Params struct {
	LadderShape ladder.Shape
	Searcher    ladder.Searcher
	MaxDepth    int
	QueueShape  level.Shape
	// SlabSize sizes the resting-order allocator's slabs (spec §4.C3);
	// <= 0 uses pool.DefaultSlabSize.
	SlabSize int
}

// Engine is a single-instrument matching engine. Per spec §5, an Engine is
// not safe for concurrent use by multiple goroutines without external
// serialization — it is meant to run on one matcher goroutine, the same
// scheduling model as the source's single-threaded matcher thread.
type Engine struct {
	l2        *book.L2Book
	l3        *book.L3Book
	observers Observers
}

// New constructs an Engine with empty bid/ask sides using the given
// storage parameters and observer callbacks.
func New(params Params, observers Observers) *Engine {
	l2 := book.NewL2Book(params.LadderShape, params.Searcher, params.MaxDepth)
	l3 := book.NewL3Book(params.LadderShape, params.Searcher, params.MaxDepth, params.QueueShape, l2, params.SlabSize)
	return &Engine{l2: l2, l3: l3, observers: observers}
}

// AddOrder submits o to the engine and runs matching to completion,
// returning every trade produced by this call (possibly none). See spec
// §4.C8 for the full entry sequence; §7 for the rejection taxonomy, all of
// which surface here as a nil/empty trade slice rather than an error.
func (e *Engine) AddOrder(o *common.Order) []common.Trade {
	if o == nil || o.RemainingQuantity <= 0 {
		return nil
	}
	if e.l3.OrderExists(o.OrderId) {
		return nil // duplicate id
	}

	if o.Type == common.Market {
		opposite := o.Side.Opposite()
		var worst common.Price
		var ok bool
		if opposite == common.Buy {
			worst, ok = e.l3.WorstBidLevel()
		} else {
			worst, ok = e.l3.WorstAskLevel()
		}
		if !ok {
			return nil // market unroutable: opposite side empty
		}
		o.Price = worst
		o.Type = common.GoodTillCancel
	} else if !o.Price.IsPositive() {
		return nil // invalid price on a non-market order
	}

	switch o.Type {
	case common.FillAndKill:
		if !e.canMatch(o.Side, o.Price) {
			return nil
		}
	case common.FillOrKill:
		if !e.canFullyFill(o.Side, o.Price, o.RemainingQuantity) {
			return nil
		}
	}

	stored := e.l3.AddOrder(o)
	e.observers.added(stored)

	trades := e.matchOrders()

	// A FillAndKill order that rested briefly during matching (because it
	// arrived on the side that became best-of-book before its own pass
	// through matchOrders) must not remain resting afterward.
	e.cancelFillAndKillRemnant(common.Buy)
	e.cancelFillAndKillRemnant(common.Sell)

	return trades
}

// CancelOrder removes id from the book if present and fires
// OnOrderCancelled with updateL2 = true. A no-op (not an error) if id is
// unknown, per spec §8's cancel idempotence law.
func (e *Engine) CancelOrder(id common.OrderId) {
	o, ok := e.l3.CancelOrder(id)
	if !ok {
		return
	}
	e.observers.cancelled(o, true)
	e.l3.Deallocate(o)
}

// ModifyOrder replaces the order at id with one at the given side, price
// and quantity, re-adding it and restarting matching. This is a
// cancel-replace: the order always loses its FIFO time priority, matching
// the original source's modify semantics (spec §9 design notes) rather
// than the less common in-place-reduction some exchanges allow.
//
// remaining quantity is clamped to min(old remaining, new quantity) before
// re-add, following book_l3.hpp rather than the simpler order_modify.h
// variant that just assigns the new quantity outright.
func (e *Engine) ModifyOrder(id common.OrderId, side common.Side, price common.Price, qty common.Quantity) []common.Trade {
	old, ok := e.l3.CancelOrder(id)
	if !ok {
		return nil
	}
	e.observers.cancelled(old, true)

	newQty := qty
	if old.RemainingQuantity < newQty {
		newQty = old.RemainingQuantity
	}

	replacement := &common.Order{
		OrderId:           id,
		Side:              side,
		Type:              old.Type,
		Price:             price,
		InitialQuantity:   qty,
		RemainingQuantity: newQty,
		CreationTime:      time.Now(),
		Ticker:            old.Ticker,
		Owner:             old.Owner,
	}
	e.l3.Deallocate(old)
	return e.AddOrder(replacement)
}

// matchOrders is the crossing loop (spec §4.C8 MatchOrders). It runs until
// the two sides no longer cross, emitting one Trade per fill.
func (e *Engine) matchOrders() []common.Trade {
	var trades []common.Trade

	for {
		bidPrice, bidQueue, bidOk := e.l3.BestBidLevel()
		askPrice, askQueue, askOk := e.l3.BestAskLevel()
		if !bidOk || !askOk {
			break
		}
		if bidPrice.LessThan(askPrice) {
			break // no cross
		}

		for !bidQueue.Empty() && !askQueue.Empty() {
			bid := bidQueue.First()
			ask := askQueue.First()

			qty := bid.RemainingQuantity
			if ask.RemainingQuantity < qty {
				qty = ask.RemainingQuantity
			}
			bid.Fill(qty)
			ask.Fill(qty)

			e.observers.matched(bid, ask, qty)
			trades = append(trades, common.Trade{
				BidTrade: common.TradeInfo{OrderId: bid.OrderId, Price: bidPrice, Quantity: qty},
				AskTrade: common.TradeInfo{OrderId: ask.OrderId, Price: askPrice, Quantity: qty},
			})

			e.l2.Cancel(common.Buy, bidPrice, qty)
			e.l2.Cancel(common.Sell, askPrice, qty)

			// The original source fires its cancelled-callback for the bid
			// leg on both branches here, a copy-paste typo (it should fire
			// for whichever leg actually emptied). This emits the correct
			// side's event.
			if bid.Filled() {
				e.l3.RemoveFilled(bid)
				e.observers.cancelled(bid, false)
				e.l3.Deallocate(bid)
			}
			if ask.Filled() {
				e.l3.RemoveFilled(ask)
				e.observers.cancelled(ask, false)
				e.l3.Deallocate(ask)
			}
		}

		if bidQueue.Empty() {
			e.l3.RemoveEmptyBidLevel(bidPrice)
		}
		if askQueue.Empty() {
			e.l3.RemoveEmptyAskLevel(askPrice)
		}
	}

	return trades
}

func (e *Engine) cancelFillAndKillRemnant(side common.Side) {
	var o *common.Order
	if side == common.Buy {
		o = e.l3.BestBid()
	} else {
		o = e.l3.BestAsk()
	}
	if o != nil && o.Type == common.FillAndKill {
		e.CancelOrder(o.OrderId)
	}
}

// canMatch reports whether an incoming FillAndKill order at (side, price)
// can cross at least one unit immediately (spec §4.C8 step 3).
func (e *Engine) canMatch(side common.Side, price common.Price) bool {
	if side == common.Buy {
		bestAsk, _, _, ok := e.l2.BestLevel(common.Sell)
		return ok && bestAsk.LessThanOrEqual(price)
	}
	bestBid, _, _, ok := e.l2.BestLevel(common.Buy)
	return ok && bestBid.GreaterThanOrEqual(price)
}

// canFullyFill reports whether an incoming FillOrKill order at (side,
// price) for qty can be matched in full immediately, by walking L2 depth
// from the best opposite level through the limit price (spec §4.C8 step
// 4). qty must be the order's remaining quantity, not its initial
// quantity — several source variants use initialQuantity, which is wrong
// whenever an order has already been partially constructed elsewhere;
// remainingQuantity is the quantity this check and the resulting fill
// actually need to account for.
func (e *Engine) canFullyFill(side common.Side, price common.Price, qty common.Quantity) bool {
	var available common.Quantity
	visit := func(_ common.Price, q common.Quantity, _ common.Volume) bool {
		available += q
		return available < qty
	}
	if side == common.Buy {
		e.l2.ForEach(common.Sell, common.Zero, price, visit)
	} else {
		e.l2.ForEach(common.Buy, price, common.MaxPrice, visit)
	}
	return available >= qty
}

// IsBidEmpty reports whether the bid side holds no resting orders.
func (e *Engine) IsBidEmpty() bool { return e.l3.IsBidEmpty() }

// IsAskEmpty reports whether the ask side holds no resting orders.
func (e *Engine) IsAskEmpty() bool { return e.l3.IsAskEmpty() }

// OrderCount returns the number of distinct resting orders.
func (e *Engine) OrderCount() int { return e.l3.OrderCount() }

// OrderExists reports whether id currently references a resting order.
func (e *Engine) OrderExists(id common.OrderId) bool { return e.l3.OrderExists(id) }

// ForEachBidLevel iterates L2 bid levels best-first within [pMin, pMax].
func (e *Engine) ForEachBidLevel(pMin, pMax common.Price, cb func(price common.Price, qty common.Quantity, vol common.Volume) bool) {
	e.l2.ForEach(common.Buy, pMin, pMax, cb)
}

// ForEachAskLevel iterates L2 ask levels best-first within [pMin, pMax].
func (e *Engine) ForEachAskLevel(pMin, pMax common.Price, cb func(price common.Price, qty common.Quantity, vol common.Volume) bool) {
	e.l2.ForEach(common.Sell, pMin, pMax, cb)
}
