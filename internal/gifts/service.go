package gifts

import (
	"context"
	"sort"
	"time"

	"gatherly-backend/internal/emails"
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/invitations"
	"gatherly-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// casRetries bounds optimistic-lock retries on concurrent assign/unassign.
const casRetries = 3

const notifyTimeout = 10 * time.Second

type Service struct {
	DB          *gorm.DB
	Events      *events.Service
	Guests      *guests.Service
	Invitations *invitations.Service
	Email       emails.Sender
}

type CreateItemInput struct {
	EventID     uuid.UUID
	OrganizerID uuid.UUID
	Name        string
	Description string
	Quantity    int
	IsEssential bool
	ImageURL    *string
}

// CreateItem appends a new registry item at the end of the event's order.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (*ItemView, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.GiftItem{}).Where("event_id = ?", in.EventID).Count(&count).Error; err != nil {
		return nil, err
	}

	item := &models.GiftItem{
		EventID:     in.EventID,
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		IsEssential: in.IsEssential,
		ItemOrder:   int(count) + 1,
		ImageURL:    in.ImageURL,
	}
	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	v := BuildView(item, ViewOptions{Organizer: true})
	return &v, nil
}

type ListItemsInput struct {
	EventID uuid.UUID
	// ViewerID is the session user, uuid.Nil when unauthenticated. Full
	// reservation detail is shown only when it matches the event's organizer.
	ViewerID uuid.UUID
	Status   string
	GuestID  *uuid.UUID
}

// ListItems returns the event's registry sorted essential-first then by
// manual order. The status filter is applied in memory after sorting.
func (s *Service) ListItems(ctx context.Context, in ListItemsInput) ([]ItemView, error) {
	if in.Status != "" && in.Status != StatusAvailable && in.Status != StatusPartially && in.Status != StatusReserved {
		return nil, ErrInvalidStatusFilter
	}
	ev, err := s.Events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	var items []models.GiftItem
	if err := s.DB.WithContext(ctx).Where("event_id = ?", in.EventID).Find(&items).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsEssential != items[j].IsEssential {
			return items[i].IsEssential
		}
		return items[i].ItemOrder < items[j].ItemOrder
	})

	opts := ViewOptions{
		Organizer: in.ViewerID != uuid.Nil && in.ViewerID == ev.OrganizerID,
		GuestID:   in.GuestID,
	}
	if !opts.Organizer {
		opts.GuestNames, err = s.guestNames(ctx, in.EventID)
		if err != nil {
			return nil, err
		}
	}

	views := make([]ItemView, 0, len(items))
	for i := range items {
		if in.Status != "" && Status(&items[i]) != in.Status {
			continue
		}
		views = append(views, BuildView(&items[i], opts))
	}
	return views, nil
}

type GetItemInput struct {
	EventID  uuid.UUID
	GiftID   uuid.UUID
	ViewerID uuid.UUID
	GuestID  *uuid.UUID
}

func (s *Service) GetItem(ctx context.Context, in GetItemInput) (*ItemView, error) {
	ev, err := s.Events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	item, err := s.findItem(ctx, in.EventID, in.GiftID)
	if err != nil {
		return nil, err
	}

	opts := ViewOptions{
		Organizer: in.ViewerID != uuid.Nil && in.ViewerID == ev.OrganizerID,
		GuestID:   in.GuestID,
	}
	if !opts.Organizer {
		opts.GuestNames, err = s.guestNames(ctx, in.EventID)
		if err != nil {
			return nil, err
		}
	}
	v := BuildView(item, opts)
	return &v, nil
}

type UpdateItemInput struct {
	EventID     uuid.UUID
	GiftID      uuid.UUID
	OrganizerID uuid.UUID
	Name        *string
	Description *string
	Quantity    *int
	IsEssential *bool
	ImageURL    *string
}

// UpdateItem applies the whitelist of mutable fields. Unknown fields in the
// request are ignored, not rejected. Reservations and order are untouched.
func (s *Service) UpdateItem(ctx context.Context, in UpdateItemInput) (*ItemView, error) {
	if _, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID); err != nil {
		return nil, err
	}
	item, err := s.findItem(ctx, in.EventID, in.GiftID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		updates["quantity"] = *in.Quantity
	}
	if in.IsEssential != nil {
		updates["is_essential"] = *in.IsEssential
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	v := BuildView(item, ViewOptions{Organizer: true})
	return &v, nil
}

// DeleteItem removes the item and closes the order gap with a single
// decrement-where-greater update, so no window exists where two items share
// an order value.
func (s *Service) DeleteItem(ctx context.Context, eventID, giftID, organizerID uuid.UUID) error {
	if _, err := s.Events.FindOwned(ctx, eventID, organizerID); err != nil {
		return err
	}
	item, err := s.findItem(ctx, eventID, giftID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(item).Error; err != nil {
			return err
		}
		return tx.Model(&models.GiftItem{}).
			Where("event_id = ? AND item_order > ?", eventID, item.ItemOrder).
			UpdateColumn("item_order", gorm.Expr("item_order - 1")).Error
	})
}

type ReorderEntry struct {
	GiftID uuid.UUID `json:"gift_id"`
	Order  int       `json:"order"`
}

// Reorder applies each {id, order} pair as an independent update. There is no
// atomicity across the batch: entries that fail are skipped and the rest
// still apply, matching the original behavior.
func (s *Service) Reorder(ctx context.Context, eventID, organizerID uuid.UUID, entries []ReorderEntry) ([]ItemView, error) {
	if _, err := s.Events.FindOwned(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Order < 1 {
			continue
		}
		err := s.DB.WithContext(ctx).Model(&models.GiftItem{}).
			Where("gift_id = ? AND event_id = ?", e.GiftID, eventID).
			Update("item_order", e.Order).Error
		if err != nil {
			log.Warn().Err(err).Str("gift_id", e.GiftID.String()).Msg("reorder entry skipped")
		}
	}
	return s.ListItems(ctx, ListItemsInput{EventID: eventID, ViewerID: organizerID})
}

type AssignInput struct {
	EventID  uuid.UUID
	GiftID   uuid.UUID
	GuestID  uuid.UUID
	Quantity int
	Message  string
}

// Assign reserves quantity for a guest. Preconditions run in order, first
// failure wins: guest exists, guest has an accepted invitation, item exists,
// no duplicate reservation, enough capacity. The capacity check and the
// append commit together via a compare-and-swap on the item row, retried a
// bounded number of times, so concurrent assigns cannot over-book.
func (s *Service) Assign(ctx context.Context, in AssignInput) (*ItemView, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	guest, err := s.Guests.FindByID(ctx, in.EventID, in.GuestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Invitations.FindAccepted(ctx, in.EventID, in.GuestID); err != nil {
		return nil, err
	}

	var item *models.GiftItem
	for attempt := 0; attempt < casRetries; attempt++ {
		item, err = s.findItem(ctx, in.EventID, in.GiftID)
		if err != nil {
			return nil, err
		}
		if IsReservedByGuest(item, in.GuestID) {
			return nil, ErrAlreadyReserved
		}
		if QuantityReserved(item)+in.Quantity > item.Quantity {
			return nil, ErrInsufficientQuantity
		}

		updated := append([]models.Reservation(item.Reservations), models.Reservation{
			GuestID:   in.GuestID,
			Quantity:  in.Quantity,
			Message:   in.Message,
			CreatedAt: time.Now(),
		})
		err = s.saveReservations(ctx, item, updated)
		if err == nil {
			item.Reservations = datatypes.NewJSONSlice(updated)
			break
		}
		if err != ErrReservationConflict {
			return nil, err
		}
		item = nil
	}
	if item == nil {
		return nil, ErrReservationConflict
	}

	s.notify(in.EventID, emails.ReservationNotice{
		GuestName: guest.Name,
		GiftName:  item.Name,
		Quantity:  in.Quantity,
		Message:   in.Message,
	}, false)

	return s.GetItem(ctx, GetItemInput{EventID: in.EventID, GiftID: in.GiftID, GuestID: &in.GuestID})
}

type UnassignInput struct {
	EventID uuid.UUID
	GiftID  uuid.UUID
	GuestID uuid.UUID
}

// Unassign removes the guest's single reservation on the item.
func (s *Service) Unassign(ctx context.Context, in UnassignInput) (*ItemView, error) {
	guest, err := s.Guests.FindByID(ctx, in.EventID, in.GuestID)
	if err != nil {
		return nil, err
	}

	var item *models.GiftItem
	for attempt := 0; attempt < casRetries; attempt++ {
		item, err = s.findItem(ctx, in.EventID, in.GiftID)
		if err != nil {
			return nil, err
		}
		if !IsReservedByGuest(item, in.GuestID) {
			return nil, ErrNotReserved
		}

		updated := make([]models.Reservation, 0, len(item.Reservations)-1)
		for _, r := range item.Reservations {
			if r.GuestID != in.GuestID {
				updated = append(updated, r)
			}
		}
		err = s.saveReservations(ctx, item, updated)
		if err == nil {
			item.Reservations = datatypes.NewJSONSlice(updated)
			break
		}
		if err != ErrReservationConflict {
			return nil, err
		}
		item = nil
	}
	if item == nil {
		return nil, ErrReservationConflict
	}

	s.notify(in.EventID, emails.ReservationNotice{
		GuestName: guest.Name,
		GiftName:  item.Name,
	}, true)

	return s.GetItem(ctx, GetItemInput{EventID: in.EventID, GiftID: in.GiftID, GuestID: &in.GuestID})
}

// GuestReservations returns every item in the event where the guest holds a
// reservation, annotated with the guest's own reservation detail.
func (s *Service) GuestReservations(ctx context.Context, eventID, guestID uuid.UUID) ([]ItemView, error) {
	if _, err := s.Guests.FindByID(ctx, eventID, guestID); err != nil {
		return nil, err
	}
	views, err := s.ListItems(ctx, ListItemsInput{EventID: eventID, GuestID: &guestID})
	if err != nil {
		return nil, err
	}
	mine := make([]ItemView, 0, len(views))
	for _, v := range views {
		if v.IsReservedByCurrentGuest != nil && *v.IsReservedByCurrentGuest {
			mine = append(mine, v)
		}
	}
	return mine, nil
}

// findItem loads an item scoped to its event; an item id under the wrong
// event is NotFound.
func (s *Service) findItem(ctx context.Context, eventID, giftID uuid.UUID) (*models.GiftItem, error) {
	var item models.GiftItem
	err := s.DB.WithContext(ctx).Where("gift_id = ? AND event_id = ?", giftID, eventID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrGiftNotFound
		}
		return nil, err
	}
	return &item, nil
}

// saveReservations writes the new list only if the row's lock_version is
// unchanged since the read. ErrReservationConflict signals a lost race.
func (s *Service) saveReservations(ctx context.Context, item *models.GiftItem, reservations []models.Reservation) error {
	res := s.DB.WithContext(ctx).Model(&models.GiftItem{}).
		Where("gift_id = ? AND lock_version = ?", item.GiftID, item.LockVersion).
		Updates(map[string]interface{}{
			"reservations": datatypes.NewJSONSlice(reservations),
			"lock_version": item.LockVersion + 1,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReservationConflict
	}
	item.LockVersion++
	return nil
}

func (s *Service) guestNames(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]string, error) {
	var gs []models.Guest
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).Find(&gs).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(gs))
	for _, g := range gs {
		names[g.GuestID] = g.Name
	}
	return names, nil
}

// notify emails the organizer about a reservation change. Fire-and-forget
// with a bounded timeout; failures are logged and never fail the reservation.
func (s *Service) notify(eventID uuid.UUID, n emails.ReservationNotice, cancelled bool) {
	if s.Email == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		ev, err := s.Events.FindByID(ctx, eventID)
		if err != nil {
			log.Warn().Err(err).Str("event_id", eventID.String()).Msg("reservation notification skipped")
			return
		}
		var organizer models.User
		if err := s.DB.WithContext(ctx).Where("user_id = ?", ev.OrganizerID).First(&organizer).Error; err != nil {
			log.Warn().Err(err).Str("event_id", eventID.String()).Msg("reservation notification skipped")
			return
		}
		n.ToEmail = organizer.Email
		n.EventName = ev.Name

		if cancelled {
			err = s.Email.SendReservationCancelled(ctx, n)
		} else {
			err = s.Email.SendReservationCreated(ctx, n)
		}
		if err != nil {
			log.Warn().Err(err).Str("event_id", eventID.String()).Msg("reservation notification failed")
		}
	}()
}
