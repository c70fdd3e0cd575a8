package lob

// Trade records one maker/taker execution. Makers are always the resting
// (already-booked) side; trades print at the maker's price, never the
// taker's limit (§4.5, glossary). Seq is a supplemented field (§2.3): a
// monotonically increasing sequence number, scoped to the owning Book,
// assigned in emission order.
type Trade struct {
	MakerOrderID OrderID
	TakerOrderID OrderID
	Price        Price
	Quantity     Quantity
	MakerSide    Side
	Seq          uint64
}

// PlaceReport is returned by PlaceLimit (§6).
type PlaceReport struct {
	Filled  Quantity
	Resting Quantity
	Trades  []Trade
}

// CancelReport is returned by Cancel (§6).
type CancelReport struct {
	CancelledQty Quantity
}

// ModifyReport is returned by Modify (§6). Requote is true when the
// modification lost time priority (cancel+replace semantics — §4.5);
// it is false for an in-place quantity decrease. CancelledQty is the
// quantity that was pulled off the book by the implicit cancel, and is
// populated whenever the original resting order was removed outright
// (new_quantity == 0, or a requote).
type ModifyReport struct {
	Requote      bool
	CancelledQty Quantity
	PlaceReport  PlaceReport // populated only when Requote is true
}

// PriceLevelView is a point-in-time, read-only view of one price level,
// returned by Snapshot (§2.3). It never aliases internal state.
type PriceLevelView struct {
	Price      Price
	AggQty     Quantity
	OrderCount uint32
}

// BookSnapshot is a point-in-time view of both sides, best-price first.
type BookSnapshot struct {
	Instrument string
	Bids       []PriceLevelView
	Asks       []PriceLevelView
}

// BookStats reports arena/occupancy bookkeeping directly serving the
// testable invariant "#(resting orders) + #(free-list entries) ≤
// arena_capacity" (§8, §2.3).
type BookStats struct {
	ArenaCapacity int
	NextUnused    int
	FreeListSize  int
	RestingOrders int
}
