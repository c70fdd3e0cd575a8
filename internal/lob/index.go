package lob

// orderIndex maps an external OrderID to its arena handle, giving O(1)
// expected cancel/modify (§4.4). It must agree with the arena at all
// times: for every key k, arena.get(index[k]).orderID == k (invariant 1).
type orderIndex struct {
	byID map[OrderID]Handle
}

func newOrderIndex(capacityHint uint32) *orderIndex {
	return &orderIndex{byID: make(map[OrderID]Handle, capacityHint)}
}

func (ix *orderIndex) insert(id OrderID, h Handle) error {
	if _, exists := ix.byID[id]; exists {
		return ErrDuplicateOrderID
	}
	ix.byID[id] = h
	return nil
}

func (ix *orderIndex) lookup(id OrderID) (Handle, bool) {
	h, ok := ix.byID[id]
	return h, ok
}

func (ix *orderIndex) remove(id OrderID) {
	delete(ix.byID, id)
}

func (ix *orderIndex) len() int {
	return len(ix.byID)
}
