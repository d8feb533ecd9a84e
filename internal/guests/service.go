package guests

import (
	"context"
	"errors"

	"gatherly-backend/internal/events"
	"gatherly-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGuestNotFound = errors.New("Guest not found")

type Service struct {
	DB     *gorm.DB
	Events *events.Service
}

type CreateGuestInput struct {
	EventID     uuid.UUID
	OrganizerID uuid.UUID
	Name        string
	Email       string
	Phone       string
}

func (s *Service) CreateGuest(ctx context.Context, in CreateGuestInput) (*models.Guest, error) {
	if in.Name == "" {
		return nil, errors.New("Guest name is required")
	}
	if _, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID); err != nil {
		return nil, err
	}
	g := &models.Guest{
		EventID: in.EventID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
	}
	if err := s.DB.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) ListGuests(ctx context.Context, eventID, organizerID uuid.UUID) ([]models.Guest, error) {
	if _, err := s.Events.FindOwned(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	var gs []models.Guest
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Find(&gs).Error; err != nil {
		return nil, err
	}
	return gs, nil
}

// FindByID loads a guest within an event. This is the guest lookup the gift
// registry uses; it does not require organizer ownership.
func (s *Service) FindByID(ctx context.Context, eventID, guestID uuid.UUID) (*models.Guest, error) {
	var g models.Guest
	err := s.DB.WithContext(ctx).Where("guest_id = ? AND event_id = ?", guestID, eventID).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return &g, nil
}

type UpdateGuestInput struct {
	EventID     uuid.UUID
	GuestID     uuid.UUID
	OrganizerID uuid.UUID
	Name        *string
	Email       *string
	Phone       *string
}

func (s *Service) UpdateGuest(ctx context.Context, in UpdateGuestInput) (*models.Guest, error) {
	if _, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID); err != nil {
		return nil, err
	}
	g, err := s.FindByID(ctx, in.EventID, in.GuestID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, errors.New("Guest name is required")
		}
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if len(updates) == 0 {
		return g, nil
	}
	if err := s.DB.WithContext(ctx).Model(g).Updates(updates).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGuest removes the guest and any invitation they held for the event.
// Gift reservations held by the guest stay in place; the visibility filter
// renders them as "a guest" once the record is gone.
func (s *Service) DeleteGuest(ctx context.Context, eventID, guestID, organizerID uuid.UUID) error {
	if _, err := s.Events.FindOwned(ctx, eventID, organizerID); err != nil {
		return err
	}
	g, err := s.FindByID(ctx, eventID, guestID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ? AND guest_id = ?", eventID, guestID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(g).Error
	})
}
