package lob

import "fmt"

// debugAsserts gates the fatal-condition checks: double free or
// out-of-range free, and unlinking a node from a level it is not linked
// under (which includes an already-unlinked node). Index/arena agreement
// is not checked. These are programmer errors, not runtime conditions — a
// release build skips them entirely so the hot path pays nothing for them.
var debugAsserts = false

// order is the fixed-width, POD-like arena record described in §3. It
// doubles as the intrusive doubly-linked-list node for its price level's
// FIFO queue: prev/next are handles into the same arena, never pointers,
// so there is no pointer cycle for the runtime to worry about.
type order struct {
	orderID      OrderID
	side         Side
	price        Price
	qtyRemaining Quantity
	prev, next   Handle
	level        *priceLevel // owning level, for O(1) unlink
	inUse        bool
}

func (o *order) reset() {
	*o = order{prev: nullHandle, next: nullHandle}
}

// arena is a contiguous, fixed-size backing store of order slots. It never
// reallocates: nextUnused is monotone and bounded by len(slots). Allocation
// prefers the free-list stack (recently freed, likely still hot in cache)
// and falls back to bumping nextUnused — see §4.1.
type arena struct {
	slots      []order
	nextUnused int32
	freeList   []Handle // stack; freeList[len-1] is next to be popped
}

func newArena(capacity uint32) *arena {
	return &arena{
		slots:    make([]order, capacity),
		freeList: make([]Handle, 0, capacity),
	}
}

func (a *arena) capacity() int {
	return len(a.slots)
}

// hasRoom reports whether alloc would succeed without actually allocating.
// PlaceLimit does not call it; it checks alloc's result directly.
func (a *arena) hasRoom() bool {
	return len(a.freeList) > 0 || int(a.nextUnused) < len(a.slots)
}

func (a *arena) alloc() (Handle, bool) {
	if n := len(a.freeList); n > 0 {
		h := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.slots[h].reset()
		a.slots[h].inUse = true
		return h, true
	}
	if int(a.nextUnused) >= len(a.slots) {
		return nullHandle, false
	}
	h := Handle(a.nextUnused)
	a.nextUnused++
	a.slots[h].reset()
	a.slots[h].inUse = true
	return h, true
}

func (a *arena) free(h Handle) {
	if debugAsserts {
		if h < 0 || int(h) >= len(a.slots) {
			panic(fmt.Sprintf("lob: free of out-of-range handle %d", h))
		}
		if !a.slots[h].inUse {
			panic(fmt.Sprintf("lob: double free of handle %d", h))
		}
	}
	a.slots[h].inUse = false
	a.freeList = append(a.freeList, h)
}

func (a *arena) get(h Handle) *order {
	return &a.slots[h]
}

// freeListSize serves the supplemented Stats() operation (§2.3) and the
// testable invariant "#(resting orders) + #(free-list entries) ≤
// arena_capacity" (§8). inUseCount counts slots handed out and not yet
// freed; Stats reports resting orders from the order index instead.
func (a *arena) freeListSize() int {
	return len(a.freeList)
}

func (a *arena) inUseCount() int {
	return int(a.nextUnused) - len(a.freeList)
}
