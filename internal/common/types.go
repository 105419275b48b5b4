// Package common holds the primitive types shared by the book, ladder,
// level and engine packages: price/quantity/volume, order identity, side
// and order-type enums, and the Order record itself.
package common

import (
	"github.com/shopspring/decimal"
)

// Price is a decimal-valued scalar. Live orders require Price > 0.
type Price = decimal.Decimal

// Volume is Price times Quantity, kept as a running sum per L2 level.
type Volume = decimal.Decimal

// Quantity is a signed order size. Must be > 0 at add time and is
// monotonically non-increasing for a given order after creation.
type Quantity int64

// OrderId is an opaque, unique-for-the-book-lifetime identifier.
type OrderId string

// Side is which book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType is the time-in-force / routing policy requested at submission.
type OrderType int

const (
	// GoodTillCancel rests until filled or explicitly cancelled.
	GoodTillCancel OrderType = iota
	// Market crosses the book at any reachable price until filled or the
	// opposite side is exhausted. Converted to a synthetic GoodTillCancel
	// at the worst opposite price before insertion; see engine.AddOrder.
	Market
	// FillAndKill (IOC) matches what is immediately available, then any
	// remnant is cancelled rather than left resting.
	FillAndKill
	// FillOrKill matches entirely immediately or is rejected outright,
	// with no partial fill left resting or reported.
	FillOrKill
)

func (t OrderType) String() string {
	switch t {
	case GoodTillCancel:
		return "GoodTillCancel"
	case Market:
		return "Market"
	case FillAndKill:
		return "FillAndKill"
	case FillOrKill:
		return "FillOrKill"
	default:
		return "Unknown"
	}
}

// AssetType selects which single-instrument book a wire-level order is
// routed to. The matching core (book/ladder/level/engine) itself only ever
// operates on one instrument at a time — see spec.md §1 Non-goals
// ("multi-instrument sharding"). AssetType exists purely so the network
// front-end (internal/net) can address one of several independently-run
// engine instances; it never appears inside the core packages.
type AssetType int

const (
	Equities AssetType = iota
)

// InvalidPrice is the sentinel price carried by a Market order prior to
// routing, before the engine rewrites it to the opposite side's worst
// price (§4.C8 Market conversion).
var InvalidPrice = decimal.NewFromInt(-1)

// MaxPrice is an unreachable upper bound used as the open end of a
// price-range scan (e.g. FillOrKill's depth walk on the bid side, which
// has no natural upper limit the way the ask side's walk is bounded by
// the order's own limit price).
var MaxPrice = decimal.NewFromInt(1 << 62)

// Zero is the shared zero-value decimal, used throughout for comparisons.
var Zero = decimal.Zero
