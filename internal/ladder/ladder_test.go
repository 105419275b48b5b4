package ladder

import (
	"testing"

	"matchcore/internal/level"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func p(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func allLadders(bidSide bool) map[string]Ladder {
	return map[string]Ladder{
		"tree":             New(Tree, bidSide, nil, 0),
		"array/binary":     New(SortedArray, bidSide, BinarySearcher{}, 0),
		"array/branchless": New(SortedArray, bidSide, BranchlessBinarySearcher{}, 0),
		"array/linear":     New(SortedArray, bidSide, LinearSearcher{}, 0),
	}
}

func TestLadder_BestIsHighestForBids(t *testing.T) {
	for name, lad := range allLadders(true) {
		lad.GetOrCreate(p(100), level.LinkedList)
		lad.GetOrCreate(p(101), level.LinkedList)
		lad.GetOrCreate(p(99), level.LinkedList)

		best, ok := lad.Best()
		assert.True(t, ok, name)
		assert.True(t, best.Price.Equal(p(101)), name)

		worst, ok := lad.Worst()
		assert.True(t, ok, name)
		assert.True(t, worst.Price.Equal(p(99)), name)
	}
}

func TestLadder_BestIsLowestForAsks(t *testing.T) {
	for name, lad := range allLadders(false) {
		lad.GetOrCreate(p(100), level.LinkedList)
		lad.GetOrCreate(p(101), level.LinkedList)
		lad.GetOrCreate(p(99), level.LinkedList)

		best, ok := lad.Best()
		assert.True(t, ok, name)
		assert.True(t, best.Price.Equal(p(99)), name)

		worst, ok := lad.Worst()
		assert.True(t, ok, name)
		assert.True(t, worst.Price.Equal(p(101)), name)
	}
}

func TestLadder_GetOrCreateIdempotent(t *testing.T) {
	for name, lad := range allLadders(true) {
		l1 := lad.GetOrCreate(p(100), level.LinkedList)
		l2 := lad.GetOrCreate(p(100), level.LinkedList)
		assert.Same(t, l1, l2, name)
		assert.Equal(t, 1, lad.Len(), name)
	}
}

func TestLadder_EraseRemovesLevel(t *testing.T) {
	for name, lad := range allLadders(true) {
		lad.GetOrCreate(p(100), level.LinkedList)
		lad.GetOrCreate(p(101), level.LinkedList)
		lad.Erase(p(100))

		assert.Equal(t, 1, lad.Len(), name)
		_, ok := lad.Find(p(100))
		assert.False(t, ok, name)
	}
}

func TestLadder_ForEachBestFirstWithinBounds(t *testing.T) {
	for name, lad := range allLadders(true) {
		lad.GetOrCreate(p(98), level.LinkedList)
		lad.GetOrCreate(p(99), level.LinkedList)
		lad.GetOrCreate(p(100), level.LinkedList)
		lad.GetOrCreate(p(101), level.LinkedList)

		var seen []decimal.Decimal
		lad.ForEach(p(99), p(100), func(lvl *Level) bool {
			seen = append(seen, lvl.Price)
			return true
		})

		assert.Len(t, seen, 2, name)
		assert.True(t, seen[0].Equal(p(100)), name) // best-first: highest bid first
		assert.True(t, seen[1].Equal(p(99)), name)
	}
}

func TestLadder_ForEachStopsEarly(t *testing.T) {
	for name, lad := range allLadders(true) {
		lad.GetOrCreate(p(98), level.LinkedList)
		lad.GetOrCreate(p(99), level.LinkedList)
		lad.GetOrCreate(p(100), level.LinkedList)

		var count int
		lad.ForEach(p(0), p(1000), func(lvl *Level) bool {
			count++
			return false
		})
		assert.Equal(t, 1, count, name)
	}
}

func TestLadder_EmptyReportsNoLevels(t *testing.T) {
	for name, lad := range allLadders(true) {
		assert.True(t, lad.Empty(), name)
		lad.GetOrCreate(p(100), level.LinkedList)
		assert.False(t, lad.Empty(), name)
	}
}
