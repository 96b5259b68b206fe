package models

import (
	"hotelmaint/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID       uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TicketID uuid.UUID `gorm:"type:uuid;not null" json:"ticket_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Read     bool      `gorm:"not null" json:"read"`

	types.Timestamps
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
