package models

import (
	"hotelmaint/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Room struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	HotelID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:hotel_room" json:"hotel_id"`
	Number  string    `gorm:"type:varchar(20);not null;uniqueIndex:hotel_room" json:"number"`
	Floor   int       `json:"floor"`

	types.Timestamps
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Floor struct {
	Floor int    `json:"floor"`
	Rooms []Room `json:"rooms"`
}
