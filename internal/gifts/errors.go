package gifts

import "errors"

// Guest-facing messages are load-bearing: the guest UI branches on them.
var (
	ErrGiftNotFound         = errors.New("Gift item not found")
	ErrNameRequired         = errors.New("Gift name is required")
	ErrInvalidQuantity      = errors.New("Quantity must be at least 1")
	ErrInvalidStatusFilter  = errors.New("Invalid status filter")
	ErrAlreadyReserved      = errors.New("You have already reserved this item")
	ErrInsufficientQuantity = errors.New("Insufficient available quantity")
	ErrNotReserved          = errors.New("You have not reserved this item")
	ErrReservationConflict  = errors.New("Reservation conflict, please try again")
)
