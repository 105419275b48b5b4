package engine

import (
	"testing"

	"matchcore/internal/common"
	"matchcore/internal/ladder"
	"matchcore/internal/level"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func newEngine() *Engine {
	return New(Params{
		LadderShape: ladder.Tree,
		QueueShape:  level.LinkedList,
	}, Observers{})
}

func limitOrder(id common.OrderId, side common.Side, px float64, qty int64) *common.Order {
	return common.NewOrder(id, side, common.GoodTillCancel, price(px), common.Quantity(qty), "AAPL", "trader")
}

func TestEngine_RestingOrderWithNoCross(t *testing.T) {
	e := newEngine()
	trades := e.AddOrder(limitOrder("a", common.Buy, 99, 10))
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.OrderCount())
	assert.False(t, e.IsBidEmpty())
}

func TestEngine_CrossingOrdersProduceATrade(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 10))
	trades := e.AddOrder(limitOrder("b", common.Buy, 100, 10))

	if assert.Len(t, trades, 1) {
		assert.Equal(t, common.OrderId("b"), trades[0].BidTrade.OrderId)
		assert.Equal(t, common.OrderId("a"), trades[0].AskTrade.OrderId)
		assert.Equal(t, common.Quantity(10), trades[0].BidTrade.Quantity)
	}
	assert.Equal(t, 0, e.OrderCount())
}

// TestEngine_TradePricePolicy asserts each leg prints at its own resting
// price rather than both legs sharing the maker's price.
func TestEngine_TradePricePolicy(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("maker", common.Sell, 99, 10))
	trades := e.AddOrder(limitOrder("taker", common.Buy, 101, 10))

	if assert.Len(t, trades, 1) {
		assert.True(t, trades[0].BidTrade.Price.Equal(price(101)), "bid leg prints at its own limit")
		assert.True(t, trades[0].AskTrade.Price.Equal(price(99)), "ask leg prints at its own resting price")
	}
}

func TestEngine_PartialFillLeavesRemainderResting(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 5))
	trades := e.AddOrder(limitOrder("b", common.Buy, 100, 10))

	if assert.Len(t, trades, 1) {
		assert.Equal(t, common.Quantity(5), trades[0].BidTrade.Quantity)
	}
	assert.Equal(t, 1, e.OrderCount())
	assert.False(t, e.IsBidEmpty())
	assert.True(t, e.IsAskEmpty())
}

func TestEngine_PriceTimePriority(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("first", common.Sell, 100, 5))
	e.AddOrder(limitOrder("second", common.Sell, 100, 5))
	trades := e.AddOrder(limitOrder("taker", common.Buy, 100, 5))

	if assert.Len(t, trades, 1) {
		assert.Equal(t, common.OrderId("first"), trades[0].AskTrade.OrderId, "earlier resting order fills first")
	}
	assert.True(t, e.OrderExists("second"))
}

func TestEngine_MarketOrderConvertsToSyntheticWorstPrice(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 5))
	e.AddOrder(limitOrder("b", common.Sell, 105, 5))

	market := common.NewOrder("mkt", common.Buy, common.Market, common.InvalidPrice, 10, "AAPL", "trader")
	trades := e.AddOrder(market)

	assert.Len(t, trades, 2, "a market buy should sweep through every reachable ask level")
	assert.True(t, e.IsAskEmpty())
}

func TestEngine_MarketOrderUnroutableWhenOppositeSideEmpty(t *testing.T) {
	e := newEngine()
	market := common.NewOrder("mkt", common.Buy, common.Market, common.InvalidPrice, 10, "AAPL", "trader")
	trades := e.AddOrder(market)
	assert.Empty(t, trades)
	assert.Equal(t, 0, e.OrderCount())
}

func TestEngine_FillAndKillCancelsRemnant(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 5))

	fak := common.NewOrder("fak", common.Buy, common.FillAndKill, price(100), 10, "AAPL", "trader")
	trades := e.AddOrder(fak)

	assert.Len(t, trades, 1)
	assert.False(t, e.OrderExists("fak"), "unfilled remainder of a FillAndKill order must not rest")
}

func TestEngine_FillAndKillRejectedWhenNoImmediateMatch(t *testing.T) {
	e := newEngine()
	fak := common.NewOrder("fak", common.Buy, common.FillAndKill, price(100), 10, "AAPL", "trader")
	trades := e.AddOrder(fak)

	assert.Empty(t, trades)
	assert.Equal(t, 0, e.OrderCount())
}

func TestEngine_FillOrKillRejectedWhenDepthInsufficient(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 5))

	fok := common.NewOrder("fok", common.Buy, common.FillOrKill, price(100), 10, "AAPL", "trader")
	trades := e.AddOrder(fok)

	assert.Empty(t, trades, "insufficient depth must reject the whole order, not partially fill it")
	assert.Equal(t, 0, e.OrderCount())
	assert.Equal(t, common.Quantity(5), mustAskQty(t, e, 100))
}

func TestEngine_FillOrKillFillsCompletelyWhenDepthSufficient(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Sell, 100, 5))
	e.AddOrder(limitOrder("b", common.Sell, 101, 10))

	fok := common.NewOrder("fok", common.Buy, common.FillOrKill, price(101), 10, "AAPL", "trader")
	trades := e.AddOrder(fok)

	var total common.Quantity
	for _, tr := range trades {
		total += tr.BidTrade.Quantity
	}
	assert.Equal(t, common.Quantity(10), total)
	assert.False(t, e.OrderExists("fok"))
}

func TestEngine_CancelOrderIsIdempotent(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Buy, 100, 10))
	e.CancelOrder("a")
	assert.NotPanics(t, func() { e.CancelOrder("a") })
	assert.Equal(t, 0, e.OrderCount())
}

func TestEngine_DuplicateOrderIdIsRejected(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Buy, 100, 10))
	trades := e.AddOrder(limitOrder("a", common.Buy, 100, 5))
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.OrderCount())
}

func TestEngine_ModifyLosesTimePriority(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("first", common.Buy, 100, 10))
	e.AddOrder(limitOrder("second", common.Buy, 100, 10))

	e.ModifyOrder("first", common.Buy, price(100), 10)

	e.AddOrder(limitOrder("taker", common.Sell, 100, 10))
	assert.True(t, e.OrderExists("first"), "modified order re-enters at the back of the queue")
	assert.False(t, e.OrderExists("second"))
}

func TestEngine_ModifyClampsRemainingQuantity(t *testing.T) {
	e := newEngine()
	e.AddOrder(limitOrder("a", common.Buy, 100, 5))

	e.ModifyOrder("a", common.Buy, price(100), 50)

	var gotQty common.Quantity
	e.ForEachBidLevel(common.Zero, common.MaxPrice, func(_ common.Price, qty common.Quantity, _ common.Volume) bool {
		gotQty = qty
		return true
	})
	assert.Equal(t, common.Quantity(5), gotQty, "remaining quantity clamps to min(old remaining, new quantity)")
}

func TestEngine_ObserversFireForCorrectLeg(t *testing.T) {
	var cancelledIds []common.OrderId
	e := New(Params{LadderShape: ladder.Tree, QueueShape: level.LinkedList}, Observers{
		OnOrderCancelled: func(o *common.Order, _ bool) {
			cancelledIds = append(cancelledIds, o.OrderId)
		},
	})

	e.AddOrder(limitOrder("maker", common.Sell, 100, 10))
	e.AddOrder(limitOrder("taker", common.Buy, 100, 10))

	assert.ElementsMatch(t, []common.OrderId{"maker", "taker"}, cancelledIds,
		"the filled-leg callback must fire for whichever side actually emptied, not always the bid")
}

func TestComposeObservers_CallsEveryComposedHook(t *testing.T) {
	var addedCalls, matchedCalls, cancelledCalls int
	a := Observers{OnOrderAdded: func(*common.Order) { addedCalls++ }}
	b := Observers{
		OnOrderMatched:   func(*common.Order, *common.Order, common.Quantity) { matchedCalls++ },
		OnOrderCancelled: func(*common.Order, bool) { cancelledCalls++ },
	}
	combined := ComposeObservers(a, b, LoggingObservers())

	e := New(Params{LadderShape: ladder.Tree, QueueShape: level.LinkedList}, combined)
	e.AddOrder(limitOrder("maker", common.Sell, 100, 10))
	e.AddOrder(limitOrder("taker", common.Buy, 100, 10))

	assert.Equal(t, 2, addedCalls, "OnOrderAdded fires once per AddOrder call, before matching runs")
	assert.Equal(t, 1, matchedCalls)
	assert.Equal(t, 2, cancelledCalls, "both fully-filled legs fire OnOrderCancelled")
}

func mustAskQty(t *testing.T, e *Engine, px float64) common.Quantity {
	t.Helper()
	var qty common.Quantity
	e.ForEachAskLevel(common.Zero, common.MaxPrice, func(p common.Price, q common.Quantity, _ common.Volume) bool {
		if p.Equal(price(px)) {
			qty = q
		}
		return true
	})
	return qty
}
