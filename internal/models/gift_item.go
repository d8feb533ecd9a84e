package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reservation is a guest's claim on some quantity of a gift item. It lives
// embedded in the item's reservations column, never as its own row, so a
// reservation cannot outlive its item.
type Reservation struct {
	GuestID   uuid.UUID `json:"guest_id"`
	Quantity  int       `json:"quantity"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GiftItem is one registry entry for an event. Reservations are stored as a
// JSON sub-document on the row; reserved quantity, status and percentage are
// derived on every read and never persisted. LockVersion guards concurrent
// assign/unassign writes (compare-and-swap on the row).
type GiftItem struct {
	GiftID       uuid.UUID                        `gorm:"column:gift_id;type:uuid;primaryKey" json:"gift_id"`
	EventID      uuid.UUID                        `gorm:"column:event_id;type:uuid;not null;index" json:"event_id"`
	Name         string                           `gorm:"column:name;not null" json:"name"`
	Description  string                           `gorm:"column:description" json:"description"`
	Quantity     int                              `gorm:"column:quantity;not null" json:"quantity"`
	IsEssential  bool                             `gorm:"column:is_essential;not null;default:false" json:"is_essential"`
	ItemOrder    int                              `gorm:"column:item_order;not null" json:"order"`
	ImageURL     *string                          `gorm:"column:image_url" json:"image_url"`
	Reservations datatypes.JSONSlice[Reservation] `gorm:"column:reservations" json:"reservations"`
	LockVersion  int                              `gorm:"column:lock_version;not null;default:0" json:"-"`
	CreatedAt    time.Time                        `json:"createdAt"`
	UpdatedAt    time.Time                        `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt                   `gorm:"index" json:"-"`
}

func (GiftItem) TableName() string {
	return "gift_items"
}

func (g *GiftItem) BeforeCreate(tx *gorm.DB) error {
	if g.GiftID == uuid.Nil {
		g.GiftID = uuid.New()
	}
	if g.Reservations == nil {
		g.Reservations = datatypes.JSONSlice[Reservation]{}
	}
	return nil
}
