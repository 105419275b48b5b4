package book

import (
	"testing"
	"time"

	"matchcore/internal/common"
	"matchcore/internal/ladder"
	"matchcore/internal/level"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func newOrder(id common.OrderId, side common.Side, px float64, qty common.Quantity) *common.Order {
	return &common.Order{
		OrderId:           id,
		Side:              side,
		Type:              common.GoodTillCancel,
		Price:             price(px),
		InitialQuantity:   qty,
		RemainingQuantity: qty,
		CreationTime:      time.Now(),
	}
}

func TestL2Book_AddAccumulatesQuantityAndVolume(t *testing.T) {
	l2 := NewL2Book(ladder.Tree, nil, 0)

	l2.Add(common.Buy, price(100), 10)
	l2.Add(common.Buy, price(100), 5)

	px, qty, vol, ok := l2.BestLevel(common.Buy)
	assert.True(t, ok)
	assert.True(t, px.Equal(price(100)))
	assert.Equal(t, common.Quantity(15), qty)
	assert.True(t, vol.Equal(price(1500)))
}

func TestL2Book_CancelErasesEmptyLevel(t *testing.T) {
	l2 := NewL2Book(ladder.Tree, nil, 0)
	l2.Add(common.Sell, price(100), 10)
	l2.Cancel(common.Sell, price(100), 10)

	assert.True(t, l2.IsEmpty(common.Sell))
}

func TestL2Book_NonPositiveInputsAreNoOps(t *testing.T) {
	l2 := NewL2Book(ladder.Tree, nil, 0)
	l2.Add(common.Buy, price(-1), 10)
	l2.Add(common.Buy, price(100), 0)
	assert.True(t, l2.IsEmpty(common.Buy))
}

func TestL3Book_AddOrderMirrorsIntoL2(t *testing.T) {
	l2 := NewL2Book(ladder.Tree, nil, 0)
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, l2, 0)

	o := newOrder("a", common.Buy, 100, 10)
	stored := l3.AddOrder(o)

	assert.True(t, l3.OrderExists("a"))
	assert.Equal(t, 1, l3.OrderCount())

	_, qty, _, ok := l2.BestLevel(common.Buy)
	assert.True(t, ok)
	assert.Equal(t, common.Quantity(10), qty)

	bid := l3.BestBid()
	assert.Equal(t, stored, bid)
}

func TestL3Book_CancelOrderIsIdempotent(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 0)
	o := newOrder("a", common.Buy, 100, 10)
	l3.AddOrder(o)

	_, ok := l3.CancelOrder("a")
	assert.True(t, ok)

	_, ok = l3.CancelOrder("a")
	assert.False(t, ok, "cancelling an unknown id must be a no-op, not an error")
}

func TestL3Book_CancelErasesEmptyLevel(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 0)
	o := newOrder("a", common.Buy, 100, 10)
	l3.AddOrder(o)
	l3.CancelOrder("a")

	assert.True(t, l3.IsBidEmpty())
}

func TestL3Book_RemoveFilledKeepsLevelUntilCallerErasesIt(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 0)
	o := newOrder("a", common.Buy, 100, 10)
	stored := l3.AddOrder(o)
	stored.Fill(10)

	l3.RemoveFilled(stored)
	assert.False(t, l3.OrderExists("a"))

	// The level itself still exists (empty) until the caller explicitly
	// erases it, matching the matching loop's two-phase removal.
	_, ok := l3.BestBidLevel()
	assert.True(t, ok)

	l3.RemoveEmptyBidLevel(price(100))
	_, ok = l3.BestBidLevel()
	assert.False(t, ok)
}

func TestL3Book_WorstLevelsForMarketConversion(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 0)
	l3.AddOrder(newOrder("a", common.Buy, 100, 10))
	l3.AddOrder(newOrder("b", common.Buy, 95, 10))

	worst, ok := l3.WorstBidLevel()
	assert.True(t, ok)
	assert.True(t, worst.Equal(price(95)))
}

func TestL3Book_ForEachAskLevelVisitsAskSide(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 0)
	l3.AddOrder(newOrder("a", common.Sell, 101, 10))
	l3.AddOrder(newOrder("b", common.Buy, 99, 10))

	var seen []common.Price
	l3.ForEachAskLevel(common.Zero, common.MaxPrice, func(px common.Price, q level.Container) bool {
		seen = append(seen, px)
		return true
	})

	assert.Len(t, seen, 1)
	assert.True(t, seen[0].Equal(price(101)))
}

func TestL3Book_AllocatorReusesSlotsAfterDeallocate(t *testing.T) {
	l3 := NewL3Book(ladder.Tree, nil, 0, level.LinkedList, nil, 2)
	stored := l3.AddOrder(newOrder("a", common.Buy, 100, 10))
	l3.CancelOrder("a")
	l3.Deallocate(stored)

	again := l3.AddOrder(newOrder("b", common.Buy, 100, 10))
	assert.Same(t, stored, again)
}
