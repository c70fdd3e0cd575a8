package lob

import "fmt"

// priceLevel is a FIFO queue of resting orders at one (side, price)
// coordinate (§3, §4.2). head/tail are arena handles into the order
// arena's intrusive list; aggQty/count are maintained incrementally so
// both are O(1) to read.
type priceLevel struct {
	price  Price
	side   Side
	head   Handle
	tail   Handle
	aggQty Quantity
	count  uint32
}

func newPriceLevel(side Side, price Price) *priceLevel {
	return &priceLevel{side: side, price: price, head: nullHandle, tail: nullHandle}
}

func (lv *priceLevel) empty() bool {
	return lv.count == 0
}

// appendTail links h onto the end of the FIFO. O(1).
func (lv *priceLevel) appendTail(a *arena, h Handle) {
	o := a.get(h)
	o.prev = lv.tail
	o.next = nullHandle
	o.level = lv

	if lv.tail == nullHandle {
		lv.head = h
	} else {
		a.get(lv.tail).next = h
	}
	lv.tail = h

	lv.count++
	lv.aggQty += o.qtyRemaining
}

// peekHead returns the oldest resting order, or nullHandle if empty. O(1).
func (lv *priceLevel) peekHead() Handle {
	return lv.head
}

// unlink removes h from the FIFO, patching its neighbors. O(1).
func (lv *priceLevel) unlink(a *arena, h Handle) {
	o := a.get(h)
	if debugAsserts && o.level != lv {
		panic(fmt.Sprintf("lob: unlink of order %d from a level it does not belong to", o.orderID))
	}

	if o.prev != nullHandle {
		a.get(o.prev).next = o.next
	} else {
		lv.head = o.next
	}
	if o.next != nullHandle {
		a.get(o.next).prev = o.prev
	} else {
		lv.tail = o.prev
	}

	lv.count--
	lv.aggQty -= o.qtyRemaining

	o.prev = nullHandle
	o.next = nullHandle
	o.level = nil
}

// decrementHeadQty subtracts amount from the head order's remaining
// quantity. If the head is left at zero, it is unlinked and its handle is
// returned so the caller can free it and remove it from the index (§4.2).
func (lv *priceLevel) decrementHeadQty(a *arena, amount Quantity) (freed Handle, didFree bool) {
	h := lv.head
	o := a.get(h)
	o.qtyRemaining -= amount
	lv.aggQty -= amount
	if o.qtyRemaining == 0 {
		lv.unlink(a, h)
		return h, true
	}
	return nullHandle, false
}
