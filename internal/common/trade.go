package common

import "fmt"

// TradeInfo is one leg of a Trade: the order that participated, the price
// at which that leg printed, and the quantity filled on that leg.
//
// Trade price policy (spec §4.C8): each leg prints at its own resting
// price. The taker's leg prints at its limit (or synthetic worst price for
// a converted Market order); the maker's leg prints at the level it was
// resting at. This differs from "both legs print at the maker's price",
// the more common exchange convention — preserved here because it is the
// original source's actual behavior, not a bug.
type TradeInfo struct {
	OrderId  OrderId
	Price    Price
	Quantity Quantity
}

// Trade is an immutable record of one match between a resting bid and a
// resting ask.
type Trade struct {
	BidTrade TradeInfo
	AskTrade TradeInfo
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{bid: %s@%s qty=%d, ask: %s@%s qty=%d}",
		t.BidTrade.OrderId, t.BidTrade.Price.String(), t.BidTrade.Quantity,
		t.AskTrade.OrderId, t.AskTrade.Price.String(), t.AskTrade.Quantity,
	)
}
