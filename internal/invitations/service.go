package invitations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gatherly-backend/internal/emails"
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/models"
	"gatherly-backend/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken      = errors.New("Invalid invitation token")
	ErrInvalidResponse   = errors.New("Response must be yes or no")
	ErrInvalidChannel    = errors.New("Channel must be email or whatsapp")
	ErrEventPassed       = errors.New("The event date has passed")
	ErrGuestContact      = errors.New("Guest has no contact details for this channel")
	ErrNoAcceptedInvite  = errors.New("Guest is not associated with this event or has not accepted the invitation")
	ErrInvitationMissing = errors.New("Invitation not found")
)

const notifyTimeout = 10 * time.Second

type Service struct {
	DB          *gorm.DB
	Events      *events.Service
	Guests      *guests.Service
	Email       emails.Sender
	WhatsApp    whatsapp.Sender
	RSVPBaseURL string
}

type SendInviteInput struct {
	EventID     uuid.UUID
	OrganizerID uuid.UUID
	GuestID     uuid.UUID
	Channel     string
	Message     string
}

// SendInvite creates (or refreshes) the guest's invitation and sends it over
// the chosen channel. The send is best-effort: a delivery failure is logged
// and the invitation is still persisted with a nil SentAt.
func (s *Service) SendInvite(ctx context.Context, in SendInviteInput) (*models.Invitation, error) {
	ev, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID)
	if err != nil {
		return nil, err
	}
	guest, err := s.Guests.FindByID(ctx, in.EventID, in.GuestID)
	if err != nil {
		return nil, err
	}

	channel := in.Channel
	if channel == "" {
		channel = models.ChannelEmail
	}
	if channel != models.ChannelEmail && channel != models.ChannelWhatsApp {
		return nil, ErrInvalidChannel
	}
	if channel == models.ChannelEmail && guest.Email == "" {
		return nil, ErrGuestContact
	}
	if channel == models.ChannelWhatsApp && guest.Phone == "" {
		return nil, ErrGuestContact
	}

	token := randomHex(32)

	var inv models.Invitation
	err = s.DB.WithContext(ctx).Where("event_id = ? AND guest_id = ?", in.EventID, in.GuestID).First(&inv).Error
	if err == gorm.ErrRecordNotFound {
		inv = models.Invitation{
			EventID: in.EventID,
			GuestID: in.GuestID,
			Channel: channel,
			Token:   token,
			Status:  models.InvitationPending,
			Message: in.Message,
		}
		if err := s.DB.WithContext(ctx).Create(&inv).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		// Re-send: refresh the token; an answered invitation keeps its status.
		inv.Token = token
		inv.Channel = channel
		if in.Message != "" {
			inv.Message = in.Message
		}
		if err := s.DB.WithContext(ctx).Save(&inv).Error; err != nil {
			return nil, err
		}
	}

	if err := s.deliver(ctx, &inv, guest, ev); err != nil {
		log.Warn().Err(err).Str("invite_id", inv.InviteID.String()).Str("channel", channel).Msg("invitation delivery failed")
		return &inv, nil
	}
	now := time.Now()
	inv.SentAt = &now
	if err := s.DB.WithContext(ctx).Model(&inv).Update("sent_at", now).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Service) deliver(ctx context.Context, inv *models.Invitation, guest *models.Guest, ev *models.Event) error {
	link := fmt.Sprintf("%s/rsvp/%s", s.RSVPBaseURL, inv.Token)
	sendCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if inv.Channel == models.ChannelWhatsApp {
		if s.WhatsApp == nil {
			return nil
		}
		return s.WhatsApp.SendInvite(sendCtx, guest.Phone, guest.Name, ev.Name, link)
	}
	if s.Email == nil {
		return nil
	}
	return s.Email.SendInvite(sendCtx, guest.Email, guest.Name, ev.Name, link)
}

type ListInvitesInput struct {
	EventID     uuid.UUID
	OrganizerID uuid.UUID
	Status      string
}

func (s *Service) ListInvitations(ctx context.Context, in ListInvitesInput) ([]models.Invitation, error) {
	if _, err := s.Events.FindOwned(ctx, in.EventID, in.OrganizerID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("event_id = ?", in.EventID)
	if in.Status != "" {
		q = q.Where("status = ?", in.Status)
	}
	var invs []models.Invitation
	if err := q.Order("created_at DESC").Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// CheckTokenResult is what the public RSVP page renders.
type CheckTokenResult struct {
	GuestName   string     `json:"guest_name"`
	EventName   string     `json:"event_name"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	EventDate   *time.Time `json:"event_date"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
}

func (s *Service) CheckToken(ctx context.Context, token string) (*CheckTokenResult, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var inv models.Invitation
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	ev, err := s.Events.FindByID(ctx, inv.EventID)
	if err != nil {
		return nil, err
	}
	guestName := ""
	if g, err := s.Guests.FindByID(ctx, inv.EventID, inv.GuestID); err == nil {
		guestName = g.Name
	}

	return &CheckTokenResult{
		GuestName:   guestName,
		EventName:   ev.Name,
		Description: ev.Description,
		Location:    ev.Location,
		EventDate:   ev.EventDate,
		Status:      inv.Status,
		Message:     inv.Message,
	}, nil
}

type RespondInput struct {
	Token    string
	Response string
	Message  string
}

// Respond records the guest's RSVP. Answers can be changed until the event
// date passes.
func (s *Service) Respond(ctx context.Context, in RespondInput) (*models.Invitation, error) {
	if in.Response != models.InvitationYes && in.Response != models.InvitationNo {
		return nil, ErrInvalidResponse
	}
	var inv models.Invitation
	if err := s.DB.WithContext(ctx).Where("token = ?", in.Token).First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	ev, err := s.Events.FindByID(ctx, inv.EventID)
	if err != nil {
		return nil, err
	}
	if ev.EventDate != nil && ev.EventDate.Before(time.Now()) {
		return nil, ErrEventPassed
	}

	now := time.Now()
	inv.Status = in.Response
	inv.RespondedAt = &now
	if in.Message != "" {
		inv.Message = in.Message
	}
	if err := s.DB.WithContext(ctx).Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindAccepted returns the guest's invitation for the event only when its
// status is "yes". The gift registry gates reservations on this.
func (s *Service) FindAccepted(ctx context.Context, eventID, guestID uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND guest_id = ? AND status = ?", eventID, guestID, models.InvitationYes).
		First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNoAcceptedInvite
		}
		return nil, err
	}
	return &inv, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
