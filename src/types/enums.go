package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	ROLE_ADMIN      Role = "ADMIN"
	ROLE_TECHNICIAN Role = "TECHNICIAN"
	ROLE_RECEPTION  Role = "RECEPTION"
)

var Roles = []Role{ROLE_ADMIN, ROLE_TECHNICIAN, ROLE_RECEPTION}

type TicketStatus string

const (
	TICKET_NEW           TicketStatus = "NEW"
	TICKET_IN_PROGRESS   TicketStatus = "IN_PROGRESS"
	TICKET_WAITING_PARTS TicketStatus = "WAITING_PARTS"
	TICKET_SCHEDULED     TicketStatus = "SCHEDULED"
	TICKET_COMPLETED     TicketStatus = "COMPLETED"
	TICKET_CANCELLED     TicketStatus = "CANCELLED"
)

var TicketStatuses = []TicketStatus{
	TICKET_NEW,
	TICKET_IN_PROGRESS,
	TICKET_WAITING_PARTS,
	TICKET_SCHEDULED,
	TICKET_COMPLETED,
	TICKET_CANCELLED,
}

type TicketPriority string

const (
	PRIORITY_LOW    TicketPriority = "LOW"
	PRIORITY_MEDIUM TicketPriority = "MEDIUM"
	PRIORITY_HIGH   TicketPriority = "HIGH"
	PRIORITY_URGENT TicketPriority = "URGENT"
)

var TicketPriorities = []TicketPriority{PRIORITY_LOW, PRIORITY_MEDIUM, PRIORITY_HIGH, PRIORITY_URGENT}

type TicketCategory string

const (
	CATEGORY_PLUMBING    TicketCategory = "PLUMBING"
	CATEGORY_ELECTRICAL  TicketCategory = "ELECTRICAL"
	CATEGORY_PAINTING    TicketCategory = "PAINTING"
	CATEGORY_CARPENTRY   TicketCategory = "CARPENTRY"
	CATEGORY_FLOORING    TicketCategory = "FLOORING"
	CATEGORY_FIRE_SAFETY TicketCategory = "FIRE_SAFETY"
	CATEGORY_OTHER       TicketCategory = "OTHER"
)

var TicketCategories = []TicketCategory{
	CATEGORY_PLUMBING,
	CATEGORY_ELECTRICAL,
	CATEGORY_PAINTING,
	CATEGORY_CARPENTRY,
	CATEGORY_FLOORING,
	CATEGORY_FIRE_SAFETY,
	CATEGORY_OTHER,
}

// RoomStatus is the qualitative state of a room in a checklist.
type RoomStatus string

const (
	ROOM_OK           RoomStatus = "ok"
	ROOM_WARNING      RoomStatus = "warning"
	ROOM_ERROR        RoomStatus = "error"
	ROOM_NOT_VERIFIED RoomStatus = "not_verified"
)

var RoomStatuses = []RoomStatus{ROOM_OK, ROOM_WARNING, ROOM_ERROR, ROOM_NOT_VERIFIED}

func parseEnum[T ~string](kind string, s string, members []T) (T, error) {
	for _, m := range members {
		if string(m) == s {
			return m, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s: %q", kind, s)
}

func scanEnum[T ~string](kind string, value any, members []T) (T, error) {
	var zero T
	switch v := value.(type) {
	case string:
		return parseEnum(kind, v, members)
	case []byte:
		return parseEnum(kind, string(v), members)
	case nil:
		return zero, fmt.Errorf("invalid %s: null", kind)
	}
	return zero, fmt.Errorf("invalid %s: unsupported type %T", kind, value)
}

func unmarshalEnum[T ~string](kind string, b []byte, members []T) (T, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var zero T
		return zero, err
	}
	return parseEnum(kind, s, members)
}

func ParseRole(s string) (Role, error) {
	return parseEnum("role", strings.ToUpper(s), Roles)
}
func (r Role) String() string { return string(r) }
func (r Role) Valid() bool {
	_, err := parseEnum("role", string(r), Roles)
	return err == nil
}
func (r Role) Value() (driver.Value, error) { return string(r), nil }
func (r *Role) Scan(value any) error {
	v, err := scanEnum("role", value, Roles)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
func (r *Role) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("role", b, Roles)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseTicketStatus(s string) (TicketStatus, error) {
	return parseEnum("ticket status", s, TicketStatuses)
}
func (s TicketStatus) String() string { return string(s) }
func (s TicketStatus) Valid() bool {
	_, err := ParseTicketStatus(string(s))
	return err == nil
}

// Terminal reports whether no further work is expected on the ticket.
func (s TicketStatus) Terminal() bool {
	return s == TICKET_COMPLETED || s == TICKET_CANCELLED
}
func (s TicketStatus) Value() (driver.Value, error) { return string(s), nil }
func (s *TicketStatus) Scan(value any) error {
	v, err := scanEnum("ticket status", value, TicketStatuses)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
func (s *TicketStatus) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("ticket status", b, TicketStatuses)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseTicketPriority(s string) (TicketPriority, error) {
	return parseEnum("ticket priority", s, TicketPriorities)
}
func (p TicketPriority) String() string { return string(p) }
func (p TicketPriority) Valid() bool {
	_, err := ParseTicketPriority(string(p))
	return err == nil
}

// High reports whether the priority counts towards the high-priority share.
func (p TicketPriority) High() bool {
	return p == PRIORITY_HIGH || p == PRIORITY_URGENT
}
func (p TicketPriority) Value() (driver.Value, error) { return string(p), nil }
func (p *TicketPriority) Scan(value any) error {
	v, err := scanEnum("ticket priority", value, TicketPriorities)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
func (p *TicketPriority) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("ticket priority", b, TicketPriorities)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func ParseTicketCategory(s string) (TicketCategory, error) {
	return parseEnum("ticket category", s, TicketCategories)
}
func (c TicketCategory) String() string { return string(c) }
func (c TicketCategory) Valid() bool {
	_, err := ParseTicketCategory(string(c))
	return err == nil
}
func (c TicketCategory) Value() (driver.Value, error) { return string(c), nil }
func (c *TicketCategory) Scan(value any) error {
	v, err := scanEnum("ticket category", value, TicketCategories)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
func (c *TicketCategory) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("ticket category", b, TicketCategories)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func ParseRoomStatus(s string) (RoomStatus, error) {
	return parseEnum("room status", s, RoomStatuses)
}
func (r RoomStatus) String() string { return string(r) }
func (r RoomStatus) Valid() bool {
	_, err := ParseRoomStatus(string(r))
	return err == nil
}
func (r RoomStatus) Value() (driver.Value, error) { return string(r), nil }
func (r *RoomStatus) Scan(value any) error {
	v, err := scanEnum("room status", value, RoomStatuses)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
func (r *RoomStatus) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("room status", b, RoomStatuses)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
