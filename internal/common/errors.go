package common

import "errors"

// These name the rejection kinds of spec §7. The public engine API never
// returns an error for a rejected order — a rejection is reported as an
// empty trade list plus the side-channel predicates OrderExists/OrderCount
// — and no package in this module returns or logs these values.
var (
	ErrDuplicateOrderId  = errors.New("matchcore: order id already exists")
	ErrUnknownOrderId    = errors.New("matchcore: unknown order id")
	ErrInvalidOrder      = errors.New("matchcore: invalid price or quantity")
	ErrMarketUnroutable  = errors.New("matchcore: market order has no opposite side to route against")
	ErrCannotMatch       = errors.New("matchcore: fill-and-kill order cannot match immediately")
	ErrCannotFullyFill   = errors.New("matchcore: fill-or-kill order cannot be fully filled immediately")
)
