package models

import (
	"hotelmaint/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID     uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	Email  string     `gorm:"uniqueIndex;not null" json:"email"`
	Name   string     `json:"name"`
	Role   types.Role `gorm:"type:varchar(20);not null" json:"role"`
	Locale string     `gorm:"type:varchar(5)" json:"locale"`
	Active bool       `gorm:"not null" json:"active"`

	Hotels []Hotel `gorm:"many2many:user_hotels;" json:"hotels,omitempty"`

	types.Timestamps
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserHotel is the join row that grants a user visibility on a hotel.
type UserHotel struct {
	UserID  uuid.UUID `gorm:"primaryKey;type:uuid" json:"user_id"`
	HotelID uuid.UUID `gorm:"primaryKey;type:uuid" json:"hotel_id"`
}
