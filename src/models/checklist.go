package models

import (
	"hotelmaint/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Checklist struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	HotelID   uuid.UUID `gorm:"type:uuid;not null;index" json:"hotel_id"`
	Title     string    `json:"title"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`

	Rooms []ChecklistRoomStatus `gorm:"foreignKey:ChecklistID" json:"rooms,omitempty"`

	types.Timestamps
}

func (c *Checklist) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ChecklistRoomStatus struct {
	ChecklistID uuid.UUID        `gorm:"primaryKey;type:uuid" json:"checklist_id"`
	RoomID      uuid.UUID        `gorm:"primaryKey;type:uuid" json:"room_id"`
	Status      types.RoomStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note        string           `json:"note,omitempty"`
	UpdatedBy   *uuid.UUID       `gorm:"type:uuid" json:"updated_by,omitempty"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// ChecklistSummary counts rooms per status.
type ChecklistSummary map[types.RoomStatus]int

func (c *Checklist) Summary() ChecklistSummary {
	s := ChecklistSummary{}
	for _, st := range types.RoomStatuses {
		s[st] = 0
	}
	for _, r := range c.Rooms {
		s[r.Status]++
	}
	return s
}
