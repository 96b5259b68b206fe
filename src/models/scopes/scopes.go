package scopes

import (
	"hotelmaint/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func WithID(id uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithHotels(ids ...uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("hotel_id IN (?)", ids)
	}
}

func WithStatus(status types.TicketStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

func CreatedBefore(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at < ?", t)
	}
}

func Assigned(db *gorm.DB) *gorm.DB {
	return db.Where("assignee_id IS NOT NULL")
}

func Unread(db *gorm.DB) *gorm.DB {
	return db.Where("read = ?", false)
}
