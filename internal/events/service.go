package events

import (
	"context"
	"errors"
	"time"

	"gatherly-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEventNotFound covers both a missing event and an event owned by someone
// else, so callers cannot probe for existence.
var ErrEventNotFound = errors.New("Event not found")

type Service struct {
	DB *gorm.DB
}

type CreateEventInput struct {
	OrganizerID   uuid.UUID
	Name          string
	Description   string
	Location      string
	EventDate     *time.Time
	CoverImageURL *string
}

func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.Name == "" {
		return nil, errors.New("Event name is required")
	}
	ev := &models.Event{
		OrganizerID:   in.OrganizerID,
		Name:          in.Name,
		Description:   in.Description,
		Location:      in.Location,
		EventDate:     in.EventDate,
		CoverImageURL: in.CoverImageURL,
	}
	if err := s.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) ListEvents(ctx context.Context, organizerID uuid.UUID) ([]models.Event, error) {
	var evs []models.Event
	if err := s.DB.WithContext(ctx).Where("organizer_id = ?", organizerID).Order("created_at DESC").Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}

// FindOwned loads an event only if it belongs to the given organizer. This is
// the ownership check every organizer-only operation goes through.
func (s *Service) FindOwned(ctx context.Context, eventID, organizerID uuid.UUID) (*models.Event, error) {
	var ev models.Event
	err := s.DB.WithContext(ctx).Where("event_id = ? AND organizer_id = ?", eventID, organizerID).First(&ev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// FindByID loads an event regardless of owner (guest-facing pages).
func (s *Service) FindByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var ev models.Event
	err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).First(&ev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

type UpdateEventInput struct {
	EventID       uuid.UUID
	OrganizerID   uuid.UUID
	Name          *string
	Description   *string
	Location      *string
	EventDate     *time.Time
	CoverImageURL *string
}

// UpdateEvent applies a whitelist of mutable fields; anything else in the
// request body is ignored.
func (s *Service) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	ev, err := s.FindOwned(ctx, in.EventID, in.OrganizerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, errors.New("Event name is required")
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.EventDate != nil {
		updates["event_date"] = *in.EventDate
	}
	if in.CoverImageURL != nil {
		updates["cover_image_url"] = *in.CoverImageURL
	}
	if len(updates) == 0 {
		return ev, nil
	}
	if err := s.DB.WithContext(ctx).Model(ev).Updates(updates).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteEvent removes the event and cascades guests, invitations and gift
// items in a single transaction.
func (s *Service) DeleteEvent(ctx context.Context, eventID, organizerID uuid.UUID) error {
	ev, err := s.FindOwned(ctx, eventID, organizerID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.GiftItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Guest{}).Error; err != nil {
			return err
		}
		return tx.Delete(ev).Error
	})
}
