package lob

import "errors"

// Error taxonomy for the core. All are returned synchronously before (or
// in place of) any state mutation — see §7 of SPEC_FULL.md.
var (
	// ErrInvalidQuantity is returned when PlaceLimit is called with a zero
	// quantity. Modify does not return it: a zero new quantity cancels.
	ErrInvalidQuantity = errors.New("lob: invalid quantity")

	// ErrDuplicateOrderID is returned when PlaceLimit is called with an
	// order id already present in the index.
	ErrDuplicateOrderID = errors.New("lob: duplicate order id")

	// ErrUnknownOrderID is returned by Cancel/Modify for an id that isn't
	// currently resting.
	ErrUnknownOrderID = errors.New("lob: unknown order id")

	// ErrCapacityExhausted is returned when the arena has no free slot
	// and the incoming order has a non-zero residual that would need to
	// rest. An order that fully matches never returns this error, even
	// at capacity.
	ErrCapacityExhausted = errors.New("lob: capacity exhausted")
)
