package lob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook(capacity uint32) *Book {
	return New("TEST", capacity)
}

func TestPlaceLimit_RestsWhenNothingCrosses(t *testing.T) {
	book := newTestBook(8)

	pr, err := book.PlaceLimit(1, Buy, 99, 10)
	require.NoError(t, err)
	assert.Equal(t, PlaceReport{Resting: 10}, pr)

	price, aggQty, count, ok := book.BestBid()
	assert.True(t, ok)
	assert.Equal(t, Price(99), price)
	assert.Equal(t, Quantity(10), aggQty)
	assert.Equal(t, uint32(1), count)

	_, _, _, ok = book.BestAsk()
	assert.False(t, ok)
}

func TestPlaceLimit_FullMatchAtMakerPrice(t *testing.T) {
	book := newTestBook(8)

	_, err := book.PlaceLimit(1, Sell, 100, 10)
	require.NoError(t, err)

	pr, err := book.PlaceLimit(2, Buy, 101, 10)
	require.NoError(t, err)

	assert.Equal(t, Quantity(10), pr.Filled)
	assert.Equal(t, Quantity(0), pr.Resting)
	require.Len(t, pr.Trades, 1)
	tr := pr.Trades[0]
	assert.Equal(t, OrderID(1), tr.MakerOrderID)
	assert.Equal(t, OrderID(2), tr.TakerOrderID)
	assert.Equal(t, Price(100), tr.Price, "trade prints at the maker's price, not the taker's limit")
	assert.Equal(t, Quantity(10), tr.Quantity)
	assert.Equal(t, Sell, tr.MakerSide)

	_, _, _, ok := book.BestAsk()
	assert.False(t, ok, "fully drained maker level must be removed from the tree")
}

func TestPlaceLimit_PartialFillLeavesResidual(t *testing.T) {
	book := newTestBook(8)

	_, err := book.PlaceLimit(1, Sell, 100, 4)
	require.NoError(t, err)

	pr, err := book.PlaceLimit(2, Buy, 100, 10)
	require.NoError(t, err)

	assert.Equal(t, Quantity(4), pr.Filled)
	assert.Equal(t, Quantity(6), pr.Resting)
	require.Len(t, pr.Trades, 1)

	price, aggQty, _, ok := book.BestBid()
	assert.True(t, ok)
	assert.Equal(t, Price(100), price)
	assert.Equal(t, Quantity(6), aggQty)
}

func TestPlaceLimit_FIFOWithinLevel(t *testing.T) {
	book := newTestBook(8)

	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Sell, 100, 5)))

	pr, err := book.PlaceLimit(3, Buy, 100, 7)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 2)
	assert.Equal(t, OrderID(1), pr.Trades[0].MakerOrderID, "the resting order placed first must fill first")
	assert.Equal(t, Quantity(5), pr.Trades[0].Quantity)
	assert.Equal(t, OrderID(2), pr.Trades[1].MakerOrderID)
	assert.Equal(t, Quantity(2), pr.Trades[1].Quantity)

	aggQty, count := book.DepthAt(Sell, 100)
	assert.Equal(t, Quantity(3), aggQty)
	assert.Equal(t, uint32(1), count)
}

func TestPlaceLimit_SweepsMultipleLevels(t *testing.T) {
	book := newTestBook(8)

	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Sell, 101, 5)))

	pr, err := book.PlaceLimit(3, Buy, 101, 8)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 2)
	assert.Equal(t, Price(100), pr.Trades[0].Price)
	assert.Equal(t, Quantity(5), pr.Trades[0].Quantity)
	assert.Equal(t, Price(101), pr.Trades[1].Price)
	assert.Equal(t, Quantity(3), pr.Trades[1].Quantity)

	price, aggQty, _, ok := book.BestAsk()
	assert.True(t, ok)
	assert.Equal(t, Price(101), price)
	assert.Equal(t, Quantity(2), aggQty)
}

func TestPlaceLimit_StopsAtNonCrossingLevel(t *testing.T) {
	book := newTestBook(8)

	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 105, 5)))

	pr, err := book.PlaceLimit(2, Buy, 100, 5)
	require.NoError(t, err)
	assert.Empty(t, pr.Trades, "a 100-limit buy must not cross a 105 ask")
	assert.Equal(t, Quantity(5), pr.Resting)
}

func TestPlaceLimit_RejectsZeroQuantity(t *testing.T) {
	book := newTestBook(8)
	_, err := book.PlaceLimit(1, Buy, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 0, book.Stats().RestingOrders)
}

func TestPlaceLimit_RejectsDuplicateOrderID(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 5)))

	_, err := book.PlaceLimit(1, Buy, 99, 5)
	assert.ErrorIs(t, err, ErrDuplicateOrderID)
	assert.Equal(t, 1, book.Stats().RestingOrders, "the rejected order must not have mutated the book")
}

func TestPlaceLimit_CapacityExhaustedWhenNothingCrosses(t *testing.T) {
	book := newTestBook(2)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 1)))
	require.NoError(t, noErr(book.PlaceLimit(2, Buy, 99, 1)))

	_, err := book.PlaceLimit(3, Buy, 98, 1)
	assert.ErrorIs(t, err, ErrCapacityExhausted)

	stats := book.Stats()
	assert.Equal(t, 2, stats.RestingOrders, "book must be unchanged by the rejected order")
}

func TestPlaceLimit_FreedMakerSlotMakesRoomForResidual(t *testing.T) {
	book := newTestBook(1)
	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 4)))

	// Arena is now fully occupied by order 1. Order 2 fully drains order 1,
	// freeing its slot, then needs a slot of its own for its residual.
	pr, err := book.PlaceLimit(2, Buy, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, Quantity(4), pr.Filled)
	assert.Equal(t, Quantity(6), pr.Resting)
}

func TestPlaceLimit_FullyMatchedOrderSucceedsEvenAtCapacity(t *testing.T) {
	book := newTestBook(1)
	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 10)))

	pr, err := book.PlaceLimit(2, Buy, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, Quantity(10), pr.Filled)
	assert.Equal(t, Quantity(0), pr.Resting)
}

func TestCancel_RemovesRestingOrder(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 10)))

	cr, err := book.Cancel(1)
	require.NoError(t, err)
	assert.Equal(t, Quantity(10), cr.CancelledQty)

	_, _, _, ok := book.BestBid()
	assert.False(t, ok)
	assert.Equal(t, 0, book.Stats().RestingOrders)
}

func TestPlaceLimit_RecomputesBestAfterDrainingBestLeavesWorseLevelBehind(t *testing.T) {
	book := newTestBook(8)

	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Buy, 99, 5)))

	// Fully drains and removes the 100 level, invalidating the bid cache
	// while the 99 level still rests.
	pr, err := book.PlaceLimit(3, Sell, 100, 5)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 1)

	// Rests a new, worse bid. getOrCreate must not mistake the invalidated
	// cache for "no other bid levels exist" and wrongly crown this one best.
	require.NoError(t, noErr(book.PlaceLimit(4, Buy, 50, 5)))

	price, aggQty, _, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, Price(99), price, "the 99 level must still be recognized as the best bid")
	assert.Equal(t, Quantity(5), aggQty)

	// A sell crossing at 99 must match against the still-resting order 2,
	// not rest on top of it as a crossed book.
	pr, err = book.PlaceLimit(5, Sell, 99, 5)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 1, "order 5 must cross order 2 at 99, not rest as a crossed ask")
	assert.Equal(t, OrderID(2), pr.Trades[0].MakerOrderID)
	assert.Equal(t, Quantity(0), pr.Resting)

	_, _, _, ok = book.BestAsk()
	assert.False(t, ok, "no ask should be resting after order 5 fully crosses")
}

func TestCancel_UnknownOrderID(t *testing.T) {
	book := newTestBook(8)
	_, err := book.Cancel(99)
	assert.ErrorIs(t, err, ErrUnknownOrderID)
}

func TestCancel_LeavesSiblingLevelOrdersIntact(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Buy, 100, 7)))

	_, err := book.Cancel(1)
	require.NoError(t, err)

	aggQty, count := book.DepthAt(Buy, 100)
	assert.Equal(t, Quantity(7), aggQty)
	assert.Equal(t, uint32(1), count)
}

func TestModify_InPlaceDecreaseKeepsTimePriority(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 10)))
	require.NoError(t, noErr(book.PlaceLimit(2, Sell, 100, 5)))

	mr, err := book.Modify(1, 100, 3)
	require.NoError(t, err)
	assert.False(t, mr.Requote)

	// Order 1 kept its place at the head of the FIFO despite shrinking.
	pr, err := book.PlaceLimit(3, Buy, 100, 3)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 1)
	assert.Equal(t, OrderID(1), pr.Trades[0].MakerOrderID)
}

func TestModify_PriceChangeRequotesAndLosesPriority(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 5)))

	mr, err := book.Modify(1, 101, 5)
	require.NoError(t, err)
	assert.True(t, mr.Requote)
	assert.Equal(t, Quantity(5), mr.CancelledQty)

	_, _, _, ok := book.BestAsk()
	require.True(t, ok)
	price, _, _, _ := book.BestAsk()
	assert.Equal(t, Price(101), price)
}

func TestModify_QuantityIncreaseRequotes(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Sell, 100, 5)))

	mr, err := book.Modify(1, 100, 10)
	require.NoError(t, err)
	assert.True(t, mr.Requote, "a quantity increase must lose time priority even at the same price")

	// Order 2 now sits ahead of the requoted order 1 at the same price.
	pr, err := book.PlaceLimit(3, Buy, 100, 5)
	require.NoError(t, err)
	require.Len(t, pr.Trades, 1)
	assert.Equal(t, OrderID(2), pr.Trades[0].MakerOrderID)
}

func TestModify_ZeroQuantityActsAsCancel(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 10)))

	mr, err := book.Modify(1, 100, 0)
	require.NoError(t, err)
	assert.False(t, mr.Requote)
	assert.Equal(t, Quantity(10), mr.CancelledQty)

	_, err = book.Cancel(1)
	assert.ErrorIs(t, err, ErrUnknownOrderID)
}

func TestModify_UnknownOrderID(t *testing.T) {
	book := newTestBook(8)
	_, err := book.Modify(99, 100, 1)
	assert.ErrorIs(t, err, ErrUnknownOrderID)
}

func TestSnapshot_BestPriceFirstOnBothSides(t *testing.T) {
	book := newTestBook(8)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 99, 10)))
	require.NoError(t, noErr(book.PlaceLimit(2, Buy, 100, 10)))
	require.NoError(t, noErr(book.PlaceLimit(3, Sell, 105, 10)))
	require.NoError(t, noErr(book.PlaceLimit(4, Sell, 103, 10)))

	snap := book.Snapshot()
	assert.Equal(t, "TEST", snap.Instrument)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, Price(100), snap.Bids[0].Price)
	assert.Equal(t, Price(99), snap.Bids[1].Price)

	require.Len(t, snap.Asks, 2)
	assert.Equal(t, Price(103), snap.Asks[0].Price)
	assert.Equal(t, Price(105), snap.Asks[1].Price)
}

func TestStats_ArenaOccupancyInvariant(t *testing.T) {
	book := newTestBook(4)
	require.NoError(t, noErr(book.PlaceLimit(1, Buy, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Buy, 99, 5)))
	_, err := book.Cancel(1)
	require.NoError(t, err)

	stats := book.Stats()
	assert.LessOrEqual(t, stats.RestingOrders+stats.FreeListSize, stats.ArenaCapacity)
	assert.Equal(t, 1, stats.RestingOrders)
	assert.Equal(t, 1, stats.FreeListSize)
}

func TestWithTradeSink_ReceivesEveryTradeInEmissionOrder(t *testing.T) {
	var seen []Trade
	book := New("TEST", 8, WithTradeSink(func(tr Trade) {
		seen = append(seen, tr)
	}))

	require.NoError(t, noErr(book.PlaceLimit(1, Sell, 100, 5)))
	require.NoError(t, noErr(book.PlaceLimit(2, Sell, 100, 5)))

	_, err := book.PlaceLimit(3, Buy, 100, 10)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(1), seen[0].Seq)
	assert.Equal(t, uint64(2), seen[1].Seq)
}

// noErr discards the report so call sites above can wrap setup placements in
// require.NoError without a throwaway blank identifier at every call.
func noErr(_ PlaceReport, err error) error { return err }
