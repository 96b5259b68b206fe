package models

import (
	"hotelmaint/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Ticket struct {
	ID                  uuid.UUID            `gorm:"primarykey;type:uuid" json:"id"`
	HotelID             uuid.UUID            `gorm:"type:uuid;not null;index" json:"hotel_id"`
	CreatorID           uuid.UUID            `gorm:"type:uuid;not null;index" json:"creator_id"`
	AssigneeID          *uuid.UUID           `gorm:"type:uuid;index" json:"assignee_id"`
	RoomID              *uuid.UUID           `gorm:"type:uuid" json:"room_id"`
	Title               string               `gorm:"not null" json:"title"`
	Description         string               `gorm:"type:text" json:"description"`
	Area                string               `json:"area"`
	Category            types.TicketCategory `gorm:"type:varchar(20);not null" json:"category"`
	Priority            types.TicketPriority `gorm:"type:varchar(10);not null" json:"priority"`
	Status              types.TicketStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	ScheduledFor        *time.Time           `json:"scheduled_for"`
	Solution            *string              `gorm:"type:text" json:"solution"`
	Attachments         types.StringList     `gorm:"type:jsonb" json:"attachments"`
	SolutionAttachments types.StringList     `gorm:"type:jsonb" json:"solution_attachments"`
	ClosedAt            *time.Time           `json:"closed_at"`

	Hotel    *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
	Creator  *User  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User  `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Room     *Room  `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	types.Timestamps
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsAssignedTo reports whether id is the current assignee.
func (t *Ticket) IsAssignedTo(id uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == id
}

// ResolutionHours is the whole number of hours between creation and close.
func (t *Ticket) ResolutionHours() (int64, bool) {
	if t.Status != types.TICKET_COMPLETED || t.ClosedAt == nil || t.CreatedAt.IsZero() {
		return 0, false
	}
	return int64(t.ClosedAt.Sub(t.CreatedAt).Hours()), true
}

// Clone returns a copy that shares no pointers or slices with t.
func (t *Ticket) Clone() Ticket {
	c := *t
	if t.AssigneeID != nil {
		v := *t.AssigneeID
		c.AssigneeID = &v
	}
	if t.RoomID != nil {
		v := *t.RoomID
		c.RoomID = &v
	}
	if t.ScheduledFor != nil {
		v := *t.ScheduledFor
		c.ScheduledFor = &v
	}
	if t.Solution != nil {
		v := *t.Solution
		c.Solution = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		c.ClosedAt = &v
	}
	c.Attachments = append(types.StringList{}, t.Attachments...)
	c.SolutionAttachments = append(types.StringList{}, t.SolutionAttachments...)
	return c
}
