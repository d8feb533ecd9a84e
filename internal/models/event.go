package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is the root entity: guests, invitations and gift items all hang off
// one event and are removed with it.
type Event struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	OrganizerID   uuid.UUID      `gorm:"column:organizer_id;type:uuid;not null;index" json:"organizer_id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Description   string         `gorm:"column:description" json:"description"`
	Location      string         `gorm:"column:location" json:"location"`
	EventDate     *time.Time     `gorm:"column:event_date" json:"event_date"`
	CoverImageURL *string        `gorm:"column:cover_image_url" json:"cover_image_url"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
