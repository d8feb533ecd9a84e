package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest is one invited person, scoped to a single event.
type Guest struct {
	GuestID   uuid.UUID      `gorm:"column:guest_id;type:uuid;primaryKey" json:"guest_id"`
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;not null;index" json:"event_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Email     string         `gorm:"column:email" json:"email"`
	Phone     string         `gorm:"column:phone" json:"phone"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Guest) TableName() string {
	return "guests"
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.GuestID == uuid.Nil {
		g.GuestID = uuid.New()
	}
	return nil
}
