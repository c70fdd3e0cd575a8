package lob

import "github.com/tidwall/btree"

// bookSide is one side (bids or asks) of the book: a price-ordered map
// from Price to *priceLevel, plus a cached pointer to the best level so
// reading top-of-book is O(1) in the common case (§4.3).
//
// The ordered map is github.com/tidwall/btree's generic B-tree — the
// balanced, cached-extrema container §9 calls out as an acceptable choice
// ("a balanced BST with cached extrema, B-tree, or a skip list"). Bids and
// asks share the same generic tree type with opposite comparators: bids
// compare descending so the tree's natural minimum is the highest (best)
// bid, asks compare ascending so the tree's natural minimum is the lowest
// (best) ask.
type bookSide struct {
	side   Side
	levels *btree.BTreeG[*priceLevel]

	cachedBest *priceLevel
	cacheValid bool
}

func newBookSide(side Side) *bookSide {
	var less func(a, b *priceLevel) bool
	if side == Buy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	} else {
		less = func(a, b *priceLevel) bool { return a.price < b.price }
	}
	return &bookSide{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

// better reports whether price p is at least as good as this side's true
// current best, from this side's perspective. It forces a recompute via
// best() when the cache is invalid, so it never mistakes "cache was
// invalidated by removing the best level" for "no other levels remain" —
// those are different states: the former can still have a better,
// un-scanned level sitting in the tree.
func (bs *bookSide) better(p Price) bool {
	lv, ok := bs.best()
	if !ok {
		return true
	}
	if bs.side == Buy {
		return p >= lv.price
	}
	return p <= lv.price
}

// best returns the best level on this side (ok is false when the side is
// empty) in O(1) when the
// cache is warm, O(log N) on the first call after it was invalidated.
func (bs *bookSide) best() (*priceLevel, bool) {
	if bs.cacheValid {
		if bs.cachedBest == nil {
			return nil, false
		}
		return bs.cachedBest, true
	}
	lv, ok := bs.levels.Min()
	bs.cacheValid = true
	if !ok {
		bs.cachedBest = nil
		return nil, false
	}
	bs.cachedBest = lv
	return lv, true
}

func (bs *bookSide) get(price Price) (*priceLevel, bool) {
	probe := &priceLevel{price: price}
	return bs.levels.Get(probe)
}

// getOrCreate returns the existing level at price, or creates and inserts
// a new one. O(log N).
func (bs *bookSide) getOrCreate(price Price) *priceLevel {
	if lv, ok := bs.get(price); ok {
		return lv
	}
	lv := newPriceLevel(bs.side, price)
	bs.levels.Set(lv)
	if bs.better(price) {
		bs.cachedBest = lv
		bs.cacheValid = true
	}
	return lv
}

// removeIfEmpty drops the level at price from the tree once its count has
// fallen to zero, and invalidates the best-cache if it was the best level
// (the next best() call recomputes it in O(log N)) — §4.3.
func (bs *bookSide) removeIfEmpty(lv *priceLevel) {
	if !lv.empty() {
		return
	}
	bs.levels.Delete(lv)
	if bs.cachedBest == lv {
		bs.cachedBest = nil
		bs.cacheValid = false
	}
}

// crossable reports whether a level at levelPrice on this (opposite) side
// crosses against an incoming order at limitPrice from incomingSide's
// perspective (§4.3's crossing predicate).
func crossable(levelPrice, limitPrice Price, incomingSide Side) bool {
	if incomingSide == Buy {
		// incoming Buy crosses asks priced at or below its limit.
		return levelPrice <= limitPrice
	}
	// incoming Sell crosses bids priced at or above its limit.
	return levelPrice >= limitPrice
}

// crossableIter returns a pull-style iterator over this side's levels,
// starting at best and walking toward worse prices, stopping at the first
// level that no longer crosses limitPrice. It is lazy, finite, and
// non-restartable (§4.3): each call observes the side's *current* best,
// so it stays correct even though the matcher removes fully-drained
// levels from under it between calls.
func (bs *bookSide) crossableIter(limitPrice Price, incomingSide Side) func() (*priceLevel, bool) {
	done := false
	return func() (*priceLevel, bool) {
		if done {
			return nil, false
		}
		lv, ok := bs.best()
		if !ok || !crossable(lv.price, limitPrice, incomingSide) {
			done = true
			return nil, false
		}
		return lv, true
	}
}

// items returns all levels in best-first order — used by Snapshot (§2.3),
// never on the hot path.
func (bs *bookSide) items() []*priceLevel {
	out := make([]*priceLevel, 0, bs.levels.Len())
	bs.levels.Scan(func(lv *priceLevel) bool {
		out = append(out, lv)
		return true
	})
	return out
}
