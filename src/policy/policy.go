// Package policy holds the per-role visibility and mutation rules. Every
// handler and service asks these predicates; nothing else compares roles.
//
// The store's row-level security enforces the same rules independently.
package policy

import (
	"hotelmaint/src/models"
	"hotelmaint/src/session"
	"hotelmaint/src/types"

	"github.com/google/uuid"
)

type Field string

const (
	FieldHotel               Field = "hotel_id"
	FieldRoom                Field = "room_id"
	FieldAssignee            Field = "assignee_id"
	FieldTitle               Field = "title"
	FieldDescription         Field = "description"
	FieldArea                Field = "area"
	FieldCategory            Field = "category"
	FieldPriority            Field = "priority"
	FieldStatus              Field = "status"
	FieldSolution            Field = "solution"
	FieldScheduledFor        Field = "scheduled_for"
	FieldAttachments         Field = "attachments"
	FieldSolutionAttachments Field = "solution_attachments"
)

var allFields = []Field{
	FieldHotel, FieldRoom, FieldAssignee, FieldTitle, FieldDescription, FieldArea, FieldCategory,
	FieldPriority, FieldStatus, FieldSolution, FieldScheduledFor, FieldAttachments, FieldSolutionAttachments,
}

type FieldSet map[Field]bool

func fieldSet(fields ...Field) FieldSet {
	fs := FieldSet{}
	for _, f := range fields {
		fs[f] = true
	}
	return fs
}

func (fs FieldSet) Has(f Field) bool { return fs[f] }

func isAdmin(s *session.Session) bool      { return s != nil && s.Role == types.ROLE_ADMIN }
func isTechnician(s *session.Session) bool { return s != nil && s.Role == types.ROLE_TECHNICIAN }
func isReception(s *session.Session) bool  { return s != nil && s.Role == types.ROLE_RECEPTION }

// CanSeeHotel: admins see every hotel, everyone else only assigned ones.
func CanSeeHotel(s *session.Session, hotelID uuid.UUID) bool {
	if isAdmin(s) {
		return true
	}
	return s != nil && s.BelongsTo(hotelID)
}

func CanSeeTicket(s *session.Session, t *models.Ticket) bool {
	return CanSeeHotel(s, t.HotelID)
}

func VisibleTickets(s *session.Session, all []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(all))
	for i := range all {
		if CanSeeTicket(s, &all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}

func VisibleHotels(s *session.Session, all []models.Hotel) []models.Hotel {
	out := make([]models.Hotel, 0, len(all))
	for _, h := range all {
		if CanSeeHotel(s, h.ID) {
			out = append(out, h)
		}
	}
	return out
}

// VisibleHotelIDs returns nil for admins, meaning no hotel restriction.
func VisibleHotelIDs(s *session.Session) []uuid.UUID {
	if isAdmin(s) {
		return nil
	}
	if s == nil || s.HotelIDs == nil {
		return []uuid.UUID{}
	}
	return s.HotelIDs
}

// CanEdit does not check visibility; callers check CanSeeTicket first.
func CanEdit(s *session.Session, t *models.Ticket) bool {
	switch {
	case isAdmin(s), isTechnician(s):
		return true
	case isReception(s):
		return t.CreatorID == s.UserID
	}
	return false
}

func CanChangeTechnician(s *session.Session) bool {
	return isAdmin(s)
}

func CanChangePriority(s *session.Session) bool {
	return isAdmin(s) || isReception(s)
}

func CanChangeStatus(s *session.Session) bool {
	return isAdmin(s) || isTechnician(s)
}

// CanAssignTo: admins assign anyone with technician capability, technicians
// only themselves, reception nobody.
func CanAssignTo(s *session.Session, assignee *models.User) bool {
	if assignee == nil || assignee.Role != types.ROLE_TECHNICIAN || !assignee.Active {
		return false
	}
	if isAdmin(s) {
		return true
	}
	return isTechnician(s) && assignee.ID == s.UserID
}

// EditableFields lists the ticket fields s may write on t.
func EditableFields(s *session.Session, t *models.Ticket) FieldSet {
	if !CanEdit(s, t) {
		return FieldSet{}
	}
	switch {
	case isAdmin(s):
		return fieldSet(allFields...)
	case isTechnician(s):
		return fieldSet(FieldStatus, FieldSolution, FieldSolutionAttachments, FieldAssignee)
	case isReception(s):
		return fieldSet(FieldTitle, FieldDescription, FieldArea, FieldRoom, FieldCategory, FieldPriority, FieldAttachments)
	}
	return FieldSet{}
}

func CanCreateTicket(s *session.Session, hotelID uuid.UUID) bool {
	if isAdmin(s) {
		return true
	}
	return isReception(s) && s.BelongsTo(hotelID)
}

func CanDeleteTicket(s *session.Session) bool {
	return isAdmin(s)
}

// CanManageDirectory covers hotels, users and rooms.
func CanManageDirectory(s *session.Session) bool {
	return isAdmin(s)
}

// CanViewDashboard: every role sees metrics, computed over its own visible tickets.
func CanViewDashboard(s *session.Session) bool {
	return s != nil && s.Role.Valid()
}

func CanManageChecklists(s *session.Session, hotelID uuid.UUID) bool {
	if isAdmin(s) {
		return true
	}
	return isTechnician(s) && s.BelongsTo(hotelID)
}
