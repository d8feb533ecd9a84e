package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation statuses. "yes" is what unlocks gift reservations for a guest.
const (
	InvitationPending = "pending"
	InvitationYes     = "yes"
	InvitationNo      = "no"
)

// Invitation channels.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Invitation links a guest to an event with an RSVP token. One invitation
// per (event, guest); re-sending refreshes the token.
type Invitation struct {
	InviteID    uuid.UUID      `gorm:"column:invite_id;type:uuid;primaryKey" json:"invite_id"`
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;not null;index:idx_invitations_event_guest" json:"event_id"`
	GuestID     uuid.UUID      `gorm:"column:guest_id;type:uuid;not null;index:idx_invitations_event_guest" json:"guest_id"`
	Channel     string         `gorm:"column:channel;not null;default:email" json:"channel"`
	Token       string         `gorm:"column:token;not null;uniqueIndex" json:"-"`
	Status      string         `gorm:"column:status;not null;default:pending" json:"status"`
	Message     string         `gorm:"column:message" json:"message"`
	SentAt      *time.Time     `gorm:"column:sent_at" json:"sent_at"`
	RespondedAt *time.Time     `gorm:"column:responded_at" json:"responded_at"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.InviteID == uuid.Nil {
		i.InviteID = uuid.New()
	}
	return nil
}
