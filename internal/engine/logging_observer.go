package engine

import (
	"matchcore/internal/common"

	"github.com/rs/zerolog/log"
)

// LoggingObservers returns an Observers value that logs each hook via
// zerolog at Debug level, the teacher's own logging idiom
// (internal/net/server.go's "Str(...).Msg(...)" chains). Callers that also
// want to react to matches (trade reporting, metrics) should compose this
// with their own callbacks rather than replace it outright.
func LoggingObservers() Observers {
	return Observers{
		OnOrderAdded: func(o *common.Order) {
			log.Debug().
				Str("orderId", string(o.OrderId)).
				Str("side", o.Side.String()).
				Str("type", o.Type.String()).
				Str("price", o.Price.String()).
				Int64("qty", int64(o.RemainingQuantity)).
				Msg("order added")
		},
		OnOrderCancelled: func(o *common.Order, updateL2 bool) {
			log.Debug().
				Str("orderId", string(o.OrderId)).
				Bool("updateL2", updateL2).
				Msg("order removed")
		},
		OnOrderMatched: func(bid, ask *common.Order, qty common.Quantity) {
			log.Debug().
				Str("bidId", string(bid.OrderId)).
				Str("askId", string(ask.OrderId)).
				Int64("qty", int64(qty)).
				Msg("orders matched")
		},
	}
}

// ComposeObservers calls every hook present across os, in order, for each
// event. Useful for attaching LoggingObservers() alongside a transport
// observer like a server's trade reporter without either replacing the
// other.
func ComposeObservers(os ...Observers) Observers {
	return Observers{
		OnOrderAdded: func(o *common.Order) {
			for _, ob := range os {
				ob.added(o)
			}
		},
		OnOrderCancelled: func(o *common.Order, updateL2 bool) {
			for _, ob := range os {
				ob.cancelled(o, updateL2)
			}
		},
		OnOrderMatched: func(bid, ask *common.Order, qty common.Quantity) {
			for _, ob := range os {
				ob.matched(bid, ask, qty)
			}
		},
	}
}
