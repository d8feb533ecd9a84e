package gifts

import (
	"math"

	"gatherly-backend/internal/models"

	"github.com/google/uuid"
)

// Gift item availability statuses, derived from the reservation list on every
// read and never persisted.
const (
	StatusAvailable = "available"
	StatusPartially = "partially"
	StatusReserved  = "reserved"
)

// QuantityReserved sums the quantities of all reservations on the item.
// Always recomputed from the stored list, never trusted from client input.
func QuantityReserved(item *models.GiftItem) int {
	total := 0
	for _, r := range item.Reservations {
		total += r.Quantity
	}
	return total
}

// Status classifies the item. Reservations exceeding the total quantity
// (pre-existing bad data) still report "reserved", saturating.
func Status(item *models.GiftItem) string {
	reserved := QuantityReserved(item)
	switch {
	case reserved == 0:
		return StatusAvailable
	case reserved < item.Quantity:
		return StatusPartially
	default:
		return StatusReserved
	}
}

// ReservationPercentage is the reserved share in percent, rounded, capped at
// 100 even when reservations exceed the total quantity.
func ReservationPercentage(item *models.GiftItem) int {
	if item.Quantity <= 0 {
		return 0
	}
	pct := int(math.Round(float64(QuantityReserved(item)) / float64(item.Quantity) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// IsReservedByGuest reports whether the guest holds a reservation on the item.
func IsReservedByGuest(item *models.GiftItem, guestID uuid.UUID) bool {
	_, ok := ReservationFor(item, guestID)
	return ok
}

// ReservationFor returns the guest's reservation on the item, if any. A guest
// holds at most one reservation per item.
func ReservationFor(item *models.GiftItem, guestID uuid.UUID) (models.Reservation, bool) {
	for _, r := range item.Reservations {
		if r.GuestID == guestID {
			return r, true
		}
	}
	return models.Reservation{}, false
}
