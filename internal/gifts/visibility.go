package gifts

import (
	"strings"

	"gatherly-backend/internal/models"
)

// anonymousGuest is shown when the reserving guest's record is unavailable
// (e.g. the guest was removed after reserving).
const anonymousGuest = "a guest"

// PublicReservation is all a non-organizer viewer may see of a reservation:
// no guest id, no message, no timestamp.
type PublicReservation struct {
	Quantity  int    `json:"quantity"`
	GuestName string `json:"guest_name"`
}

// RedactForPublic reduces a reservation to the public shape. guestName is the
// reserving guest's full name; only its first name token is exposed.
func RedactForPublic(r models.Reservation, guestName string) PublicReservation {
	return PublicReservation{
		Quantity:  r.Quantity,
		GuestName: FirstName(guestName),
	}
}

// FirstName returns the first whitespace-delimited token of a full name, or
// the anonymous placeholder when the name is empty.
func FirstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return anonymousGuest
	}
	return fields[0]
}
