package lob

import "github.com/rs/zerolog/log"

// Option configures a Book at construction. The functional-options shape
// lets a caller attach a trade sink without widening New's required
// argument list — the teacher's constructors (net.New, server.New) all
// take their required config as plain positional args, so New keeps that
// shape and only the genuinely optional trade sink moves into Option.
type Option func(*Book)

// WithTradeSink attaches a callback invoked once per trade, in emission
// order, during PlaceLimit — in addition to (not instead of) the trades
// returned by value in PlaceReport (§4.6, §9).
func WithTradeSink(sink func(Trade)) Option {
	return func(b *Book) { b.tradeSink = sink }
}

// Book is the facade owning one arena, one order index, and both sides of
// the book for a single instrument (§3, §4.6). A Book is single-writer:
// nothing here is safe to call concurrently.
type Book struct {
	instrument string
	arena      *arena
	index      *orderIndex
	bids       *bookSide
	asks       *bookSide
	tradeSeq   uint64
	tradeSink  func(Trade)
}

// New constructs a Book for one instrument with a fixed arena capacity
// that never grows (§6's Configuration: arena_capacity affects only
// memory usage, never semantics).
func New(instrumentTag string, arenaCapacity uint32, opts ...Option) *Book {
	b := &Book{
		instrument: instrumentTag,
		arena:      newArena(arenaCapacity),
		index:      newOrderIndex(arenaCapacity),
		bids:       newBookSide(Buy),
		asks:       newBookSide(Sell),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Book) Instrument() string { return b.instrument }

func (b *Book) sideOf(s Side) *bookSide {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// PlaceLimit implements §4.5's algorithm: walk the opposite side's
// crossable levels in best-first, FIFO-within-price order, emitting
// trades at the maker's price, then rest any residual on this side.
func (b *Book) PlaceLimit(orderID OrderID, side Side, price Price, quantity Quantity) (PlaceReport, error) {
	if quantity == 0 {
		log.Debug().Uint64("order_id", uint64(orderID)).Msg("lob: rejecting zero-quantity order")
		return PlaceReport{}, ErrInvalidQuantity
	}
	if _, exists := b.index.lookup(orderID); exists {
		log.Debug().Uint64("order_id", uint64(orderID)).Msg("lob: rejecting duplicate order id")
		return PlaceReport{}, ErrDuplicateOrderID
	}

	opposite := b.sideOf(side.Flip())
	remaining := quantity
	var trades []Trade

	next := opposite.crossableIter(price, side)
	for remaining > 0 {
		lv, ok := next()
		if !ok {
			break
		}
		for remaining > 0 && !lv.empty() {
			h := lv.peekHead()
			maker := b.arena.get(h)
			traded := remaining
			if maker.qtyRemaining < traded {
				traded = maker.qtyRemaining
			}

			b.tradeSeq++
			tr := Trade{
				MakerOrderID: maker.orderID,
				TakerOrderID: orderID,
				Price:        maker.price,
				Quantity:     traded,
				MakerSide:    opposite.side,
				Seq:          b.tradeSeq,
			}
			trades = append(trades, tr)
			if b.tradeSink != nil {
				b.tradeSink(tr)
			}

			remaining -= traded
			freed, didFree := lv.decrementHeadQty(b.arena, traded)
			if didFree {
				b.index.remove(maker.orderID)
				b.arena.free(freed)
			}
		}
		opposite.removeIfEmpty(lv)
	}

	report := PlaceReport{Filled: quantity - remaining, Trades: trades}
	if remaining == 0 {
		return report, nil
	}

	h, ok := b.arena.alloc()
	if !ok {
		log.Warn().
			Uint64("order_id", uint64(orderID)).
			Str("instrument", b.instrument).
			Msg("lob: arena capacity exhausted")
		return PlaceReport{}, ErrCapacityExhausted
	}
	o := b.arena.get(h)
	o.orderID = orderID
	o.side = side
	o.price = price
	o.qtyRemaining = remaining

	if err := b.index.insert(orderID, h); err != nil {
		// Unreachable given the duplicate check above, but keep the
		// slot from leaking if it ever happens.
		b.arena.free(h)
		return PlaceReport{}, err
	}

	lv := b.sideOf(side).getOrCreate(price)
	lv.appendTail(b.arena, h)

	report.Resting = remaining
	return report, nil
}

// Cancel implements §4.5's Cancel: unlink, drop the emptied level if
// applicable, remove from the index, free the slot.
func (b *Book) Cancel(orderID OrderID) (CancelReport, error) {
	h, ok := b.index.lookup(orderID)
	if !ok {
		return CancelReport{}, ErrUnknownOrderID
	}
	o := b.arena.get(h)
	qty := o.qtyRemaining
	lv := o.level
	side := o.side

	lv.unlink(b.arena, h)
	b.sideOf(side).removeIfEmpty(lv)
	b.index.remove(orderID)
	b.arena.free(h)

	return CancelReport{CancelledQty: qty}, nil
}

// Modify implements §4.5's Modify. A price change or a quantity increase
// loses time priority (cancel + place_limit under the same order id); a
// pure quantity decrease at the same price is applied in place, keeping
// the order's position in its level's FIFO.
func (b *Book) Modify(orderID OrderID, newPrice Price, newQuantity Quantity) (ModifyReport, error) {
	h, ok := b.index.lookup(orderID)
	if !ok {
		return ModifyReport{}, ErrUnknownOrderID
	}
	o := b.arena.get(h)

	if newQuantity == 0 {
		cr, err := b.Cancel(orderID)
		if err != nil {
			return ModifyReport{}, err
		}
		return ModifyReport{CancelledQty: cr.CancelledQty}, nil
	}

	if newPrice != o.price || newQuantity > o.qtyRemaining {
		side := o.side
		cr, err := b.Cancel(orderID)
		if err != nil {
			return ModifyReport{}, err
		}
		pr, err := b.PlaceLimit(orderID, side, newPrice, newQuantity)
		if err != nil {
			return ModifyReport{Requote: true, CancelledQty: cr.CancelledQty}, err
		}
		return ModifyReport{Requote: true, CancelledQty: cr.CancelledQty, PlaceReport: pr}, nil
	}

	// Same price, quantity unchanged or decreased: retain time priority.
	lv := o.level
	delta := o.qtyRemaining - newQuantity
	o.qtyRemaining = newQuantity
	lv.aggQty -= delta
	return ModifyReport{}, nil
}

// BestBid / BestAsk return the top-of-book price, aggregate resting
// quantity, and order count on their side, in O(1) when the cache is
// warm (§4.3, §6).
func (b *Book) BestBid() (price Price, aggQty Quantity, orderCount uint32, ok bool) {
	lv, found := b.bids.best()
	if !found {
		return 0, 0, 0, false
	}
	return lv.price, lv.aggQty, lv.count, true
}

func (b *Book) BestAsk() (price Price, aggQty Quantity, orderCount uint32, ok bool) {
	lv, found := b.asks.best()
	if !found {
		return 0, 0, 0, false
	}
	return lv.price, lv.aggQty, lv.count, true
}

// DepthAt returns the aggregate resting quantity and order count at a
// specific (side, price), or (0, 0) if nothing rests there (§6).
func (b *Book) DepthAt(side Side, price Price) (aggQty Quantity, orderCount uint32) {
	lv, ok := b.sideOf(side).get(price)
	if !ok {
		return 0, 0
	}
	return lv.aggQty, lv.count
}

// Snapshot returns a point-in-time, non-aliasing view of both sides,
// best-price first (§2.3's supplemented operation).
func (b *Book) Snapshot() BookSnapshot {
	toViews := func(levels []*priceLevel) []PriceLevelView {
		views := make([]PriceLevelView, len(levels))
		for i, lv := range levels {
			views[i] = PriceLevelView{Price: lv.price, AggQty: lv.aggQty, OrderCount: lv.count}
		}
		return views
	}
	return BookSnapshot{
		Instrument: b.instrument,
		Bids:       toViews(b.bids.items()),
		Asks:       toViews(b.asks.items()),
	}
}

// Stats reports arena occupancy, directly serving the testable invariant
// "#(resting orders) + #(free-list entries) ≤ arena_capacity" (§8, §2.3).
func (b *Book) Stats() BookStats {
	return BookStats{
		ArenaCapacity: b.arena.capacity(),
		NextUnused:    int(b.arena.nextUnused),
		FreeListSize:  b.arena.freeListSize(),
		RestingOrders: b.index.len(),
	}
}
