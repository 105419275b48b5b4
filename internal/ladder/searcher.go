package ladder

import "matchcore/internal/common"

// Searcher locates the position a price belongs at within a side's sorted
// array of levels, grounded on the original C++ source's LevelSearcher
// policies (original_source/src/book/level_searcher.hpp). before(a, b)
// reports whether level price a sorts strictly before level price b under
// the side's ordering (ascending for a bid array, descending for an ask
// array — see arrayLadder). Find returns the first index whose price does
// not sort before target; an exact price match is detected by the caller
// comparing levels[idx].Price == target.
type Searcher interface {
	Find(levels []*Level, target common.Price, before func(a, b common.Price) bool) int
}

// BinarySearcher is the classic lower_bound binary search.
type BinarySearcher struct{}

func (BinarySearcher) Find(levels []*Level, target common.Price, before func(a, b common.Price) bool) int {
	lo, hi := 0, len(levels)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if before(levels[mid].Price, target) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// BranchlessBinarySearcher is the halving-loop search with no
// data-dependent branch in its inner step, translated directly from the
// source's BranchlessBinaryLevelSearcher.
type BranchlessBinarySearcher struct{}

func (BranchlessBinarySearcher) Find(levels []*Level, target common.Price, before func(a, b common.Price) bool) int {
	first := 0
	length := len(levels)
	for length > 0 {
		half := length / 2
		if before(levels[first+half].Price, target) {
			first += length - half
		}
		length = half
	}
	return first
}

// LinearSearcher walks from the back (the best-price end) toward the
// front, appropriate when expected matches cluster near top-of-book.
type LinearSearcher struct{}

func (LinearSearcher) Find(levels []*Level, target common.Price, before func(a, b common.Price) bool) int {
	idx := len(levels)
	for idx > 0 {
		idx--
		if before(levels[idx].Price, target) {
			idx++
			break
		}
	}
	return idx
}
