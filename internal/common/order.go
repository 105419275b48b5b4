package common

import (
	"fmt"
	"time"
)

// Order is the immutable-identity, mutable-fill-state record for a single
// resting or transient order. OrderId, Side and CreationTime never change
// after construction; RemainingQuantity is mutated in place by the matching
// loop as fills occur.
//
// A Market order stored in the book has already been converted to
// GoodTillCancel at a synthetic worst price — see engine.AddOrder. Type
// reflects that post-conversion state, not what the caller originally sent.
type Order struct {
	OrderId           OrderId
	Side              Side
	Type              OrderType
	Price             Price
	InitialQuantity   Quantity
	RemainingQuantity Quantity
	CreationTime      time.Time

	// Ticker and Owner are small, highly-repetitive strings. Callers are
	// expected to intern them via flyweight.Pool before constructing an
	// Order that will be placed in the book.
	Ticker string
	Owner  string
}

// NewOrder constructs a resting limit-style order. CreationTime is the
// FIFO tie-breaker within a price level.
func NewOrder(id OrderId, side Side, typ OrderType, price Price, qty Quantity, ticker, owner string) *Order {
	return &Order{
		OrderId:           id,
		Side:              side,
		Type:              typ,
		Price:             price,
		InitialQuantity:   qty,
		RemainingQuantity: qty,
		CreationTime:      time.Now(),
		Ticker:            ticker,
		Owner:             owner,
	}
}

// Valid reports whether the order satisfies the book's entry invariants:
// a positive remaining quantity and a positive price. engine.AddOrder does
// not call Valid: it applies the same quantity check inline, checks the
// price of non-Market orders, and gives a Market order the price of a
// resting level during conversion.
func (o *Order) Valid() bool {
	return o != nil && o.RemainingQuantity > 0 && o.Price.IsPositive()
}

// Filled reports whether the order has no remaining quantity and must be
// removed from the book.
func (o *Order) Filled() bool {
	return o.RemainingQuantity <= 0
}

// Fill reduces the remaining quantity by qty. qty must not exceed
// RemainingQuantity; callers (the matching loop) are responsible for that
// invariant since Fill performs no clamping.
func (o *Order) Fill(qty Quantity) {
	o.RemainingQuantity -= qty
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"OrderId: %s, Side: %s, Type: %s, Price: %s, Initial: %d, Remaining: %d, Ticker: %s, Owner: %s",
		o.OrderId, o.Side, o.Type, o.Price.String(), o.InitialQuantity, o.RemainingQuantity, o.Ticker, o.Owner,
	)
}
