package gifts

import (
	"time"

	"gatherly-backend/internal/models"

	"github.com/google/uuid"
)

// ItemView is the serialized gift item: stored fields plus derived fields,
// optional per-guest annotation, and the reservation list either in full
// (organizer) or redacted (everyone else).
type ItemView struct {
	GiftID                uuid.UUID   `json:"gift_id"`
	EventID               uuid.UUID   `json:"event_id"`
	Name                  string      `json:"name"`
	Description           string      `json:"description"`
	Quantity              int         `json:"quantity"`
	IsEssential           bool        `json:"is_essential"`
	Order                 int         `json:"order"`
	ImageURL              *string     `json:"image_url"`
	QuantityReserved      int         `json:"quantity_reserved"`
	Status                string      `json:"status"`
	ReservationPercentage int         `json:"reservation_percentage"`
	Reservations          interface{} `json:"reservations"`

	IsReservedByCurrentGuest *bool               `json:"is_reserved_by_current_guest,omitempty"`
	CurrentGuestReservation  *models.Reservation `json:"current_guest_reservation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ViewOptions controls annotation and redaction when building an ItemView.
type ViewOptions struct {
	Organizer  bool
	GuestID    *uuid.UUID
	GuestNames map[uuid.UUID]string
}

// BuildView computes the derived fields, annotates for the current guest if
// one is given, then redacts the reservation list unless the viewer is the
// organizer. Redaction runs last: derived fields need the full list.
func BuildView(item *models.GiftItem, opts ViewOptions) ItemView {
	v := ItemView{
		GiftID:                item.GiftID,
		EventID:               item.EventID,
		Name:                  item.Name,
		Description:           item.Description,
		Quantity:              item.Quantity,
		IsEssential:           item.IsEssential,
		Order:                 item.ItemOrder,
		ImageURL:              item.ImageURL,
		QuantityReserved:      QuantityReserved(item),
		Status:                Status(item),
		ReservationPercentage: ReservationPercentage(item),
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
	}

	if opts.GuestID != nil {
		reserved := IsReservedByGuest(item, *opts.GuestID)
		v.IsReservedByCurrentGuest = &reserved
		if r, ok := ReservationFor(item, *opts.GuestID); ok {
			v.CurrentGuestReservation = &r
		}
	}

	if opts.Organizer {
		v.Reservations = []models.Reservation(item.Reservations)
		return v
	}
	public := make([]PublicReservation, 0, len(item.Reservations))
	for _, r := range item.Reservations {
		public = append(public, RedactForPublic(r, opts.GuestNames[r.GuestID]))
	}
	v.Reservations = public
	return v
}
