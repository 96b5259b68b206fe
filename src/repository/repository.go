// Package repository is the data access layer. Handlers and services only
// see the interfaces below; postgres (gorm) and in-memory implementations
// satisfy them.
package repository

import (
	"context"
	"errors"
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the store refuses the operation for the
// current user. Handlers translate it into a 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals a uniqueness or state conflict, such as a duplicate
// email or room number. Handlers translate it into a 409.
var ErrConflict = errors.New("conflict")

type TicketRepository interface {
	Create(ctx context.Context, t *models.Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	// List returns tickets of the given hotels, newest first. A nil slice
	// means every hotel; an empty one means none.
	List(ctx context.Context, hotelIDs []uuid.UUID) ([]models.Ticket, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Ticket, error)
	AppendAttachment(ctx context.Context, id uuid.UUID, column string, url string) (*models.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// EscalateStale moves assigned NEW tickets created before cutoff to
	// IN_PROGRESS and reports how many unassigned ones were left alone.
	EscalateStale(ctx context.Context, cutoff time.Time) (promoted []models.Ticket, unassigned int64, err error)
}

type HotelRepository interface {
	List(ctx context.Context, ids []uuid.UUID) ([]models.Hotel, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	Create(ctx context.Context, h *models.Hotel) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Hotel, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	// Update writes the scalar columns and, when hotelIDs is non-nil,
	// replaces the user's hotel assignments.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any, hotelIDs *[]uuid.UUID) (*models.User, error)
}

type RoomRepository interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Room, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Room, error)
	Create(ctx context.Context, r *models.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChecklistRepository interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Checklist, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Checklist, error)
	// Create stores the checklist together with its room rows.
	Create(ctx context.Context, c *models.Checklist) error
	SetRoomStatus(ctx context.Context, checklistID, roomID uuid.UUID, status types.RoomStatus, note string, by uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Store struct {
	Tickets       TicketRepository
	Hotels        HotelRepository
	Users         UserRepository
	Rooms         RoomRepository
	Checklists    ChecklistRepository
	Notifications NotificationRepository
}

// AttachmentColumn validates the ticket column an upload is appended to.
func AttachmentColumn(column string) (string, error) {
	switch column {
	case "attachments", "solution_attachments":
		return column, nil
	}
	return "", errors.New("unknown attachment column: " + column)
}
