package engine

import "matchcore/internal/common"

// Observers holds the three optional callback hooks the matching engine
// invokes at precise points (spec §4.C10). All three are synchronous: a
// registered callback must not re-enter the engine and must not retain the
// Order pointers it is handed beyond the call.
type Observers struct {
	// OnOrderAdded fires after an order is successfully inserted into the
	// book (after Market conversion and TIF pre-checks, before matching).
	OnOrderAdded func(o *common.Order)

	// OnOrderCancelled fires after an order is unlinked from L3.
	// updateL2 is true for an explicit cancel (including the cancel half of
	// a modify), whose quantity the L3 book has already removed from L2 by
	// the time the hook fires, and false for an order removed because a
	// fill reduced its quantity to zero, whose L2 quantity the matching loop
	// removed fill by fill. The hook itself never needs to touch L2.
	OnOrderCancelled func(o *common.Order, updateL2 bool)

	// OnOrderMatched fires once per fill, before either leg is unlinked
	// from its queue. bid and ask are the resting/taking orders on each
	// side; qty is the quantity exchanged in this fill (not necessarily
	// either order's full remaining quantity).
	OnOrderMatched func(bid, ask *common.Order, qty common.Quantity)
}

func (o Observers) added(ord *common.Order) {
	if o.OnOrderAdded != nil {
		o.OnOrderAdded(ord)
	}
}

func (o Observers) cancelled(ord *common.Order, updateL2 bool) {
	if o.OnOrderCancelled != nil {
		o.OnOrderCancelled(ord, updateL2)
	}
}

func (o Observers) matched(bid, ask *common.Order, qty common.Quantity) {
	if o.OnOrderMatched != nil {
		o.OnOrderMatched(bid, ask, qty)
	}
}
