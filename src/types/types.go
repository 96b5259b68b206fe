package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StringList is an ordered list persisted as a jsonb array.
type StringList []string

func (a StringList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal([]string(a))
	return string(valueString), err
}
func (a *StringList) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*a = StringList{}
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*a = out
	return nil
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type ChecklistRoomURIParams struct {
	ID     string `uri:"id" binding:"required,uuid"`
	RoomID string `uri:"roomId" binding:"required,uuid"`
}

type TicketQueryFilters struct {
	HotelID      string `form:"hotel_id" binding:"omitempty,uuid"`
	Status       string `form:"status" binding:"omitempty,ticketstatus"`
	Priority     string `form:"priority" binding:"omitempty,ticketpriority"`
	Category     string `form:"category" binding:"omitempty,ticketcategory"`
	TechnicianID string `form:"technician_id" binding:"omitempty,uuid"`
	Search       string `form:"q"`
	From         string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To           string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type CreateTicketRequestBody struct {
	HotelID      uuid.UUID      `json:"hotel_id" binding:"required"`
	RoomID       *uuid.UUID     `json:"room_id,omitempty"`
	Title        string         `json:"title" binding:"required,max=200"`
	Description  string         `json:"description,omitempty" binding:"max=5000"`
	Area         string         `json:"area" binding:"required,max=100"`
	Category     TicketCategory `json:"category" binding:"required"`
	Priority     TicketPriority `json:"priority" binding:"required"`
	Attachments  []string       `json:"attachments,omitempty"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
}

// UpdateTicketRequestBody is a partial update; nil fields are left untouched.
// AssigneeID uses a JSON null to unassign, see OptionalUUID.
type UpdateTicketRequestBody struct {
	HotelID      *uuid.UUID      `json:"hotel_id,omitempty"`
	RoomID       OptionalUUID    `json:"room_id"`
	AssigneeID   OptionalUUID    `json:"assignee_id"`
	Title        *string         `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description  *string         `json:"description,omitempty" binding:"omitempty,max=5000"`
	Area         *string         `json:"area,omitempty" binding:"omitempty,min=1,max=100"`
	Category     *TicketCategory `json:"category,omitempty"`
	Priority     *TicketPriority `json:"priority,omitempty"`
	Status       *TicketStatus   `json:"status,omitempty"`
	Solution     *string         `json:"solution,omitempty" binding:"omitempty,max=5000"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	Confirmed    bool            `json:"confirmed,omitempty"`
}

// OptionalUUID distinguishes an absent field from an explicit null.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

func (o OptionalUUID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

type CreateHotelRequestBody struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	TaxID   string `json:"tax_id,omitempty"`
}

type CreateUserRequestBody struct {
	ID       *uuid.UUID  `json:"id,omitempty"`
	Email    string      `json:"email" binding:"required,email"`
	Name     string      `json:"name" binding:"required"`
	Role     string      `json:"role" binding:"required,userrole"`
	Locale   string      `json:"locale,omitempty" binding:"omitempty,oneof=es en"`
	HotelIDs []uuid.UUID `json:"hotel_ids,omitempty"`
}

type UpdateUserRequestBody struct {
	Name     *string      `json:"name,omitempty"`
	Role     *string      `json:"role,omitempty" binding:"omitempty,userrole"`
	Locale   *string      `json:"locale,omitempty" binding:"omitempty,oneof=es en"`
	Active   *bool        `json:"active,omitempty"`
	HotelIDs *[]uuid.UUID `json:"hotel_ids,omitempty"`
}

type CreateRoomRequestBody struct {
	Number string `json:"number" binding:"required,max=20"`
	Floor  int    `json:"floor"`
}

type CreateChecklistRequestBody struct {
	Title string `json:"title" binding:"required,max=200"`
}

type UpdateChecklistRoomRequestBody struct {
	Status string `json:"status" binding:"required,roomstatus"`
	Note   string `json:"note,omitempty" binding:"max=1000"`
}
