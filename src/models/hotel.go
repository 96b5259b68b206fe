package models

import (
	"hotelmaint/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Hotel struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Name    string    `gorm:"not null" json:"name"`
	Address string    `json:"address,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Email   string    `json:"email,omitempty"`
	TaxID   string    `json:"tax_id,omitempty"`
	Active  bool      `gorm:"not null" json:"active"`

	Rooms []Room `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`

	types.Timestamps
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
