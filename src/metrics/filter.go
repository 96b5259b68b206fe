// Package metrics derives dashboard KPIs from an already scoped ticket set.
// Nothing here performs I/O; every function may be called on each refresh.
package metrics

import (
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Filters struct {
	From         *time.Time
	To           *time.Time
	HotelID      *uuid.UUID
	Priority     types.TicketPriority
	Status       types.TicketStatus
	Category     types.TicketCategory
	TechnicianID *uuid.UUID
	// Search matches the room number or the area label, case-insensitively.
	Search string
}

// FromQuery converts validated query parameters. Dates are whole days in
// UTC; To covers the entire day.
func FromQuery(q types.TicketQueryFilters) (Filters, error) {
	var f Filters
	if q.HotelID != "" {
		id, err := uuid.Parse(q.HotelID)
		if err != nil {
			return f, err
		}
		f.HotelID = &id
	}
	if q.TechnicianID != "" {
		id, err := uuid.Parse(q.TechnicianID)
		if err != nil {
			return f, err
		}
		f.TechnicianID = &id
	}
	if q.Status != "" {
		s, err := types.ParseTicketStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if q.Priority != "" {
		p, err := types.ParseTicketPriority(q.Priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	if q.Category != "" {
		c, err := types.ParseTicketCategory(q.Category)
		if err != nil {
			return f, err
		}
		f.Category = c
	}
	if q.From != "" {
		from, err := time.Parse(time.DateOnly, q.From)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.DateOnly, q.To)
		if err != nil {
			return f, err
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}
	f.Search = strings.TrimSpace(q.Search)
	return f, nil
}

func (f Filters) Match(t *models.Ticket) bool {
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	if f.HotelID != nil && t.HotelID != *f.HotelID {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.TechnicianID != nil && !t.IsAssignedTo(*f.TechnicianID) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		room := ""
		if t.Room != nil {
			room = strings.ToLower(t.Room.Number)
		}
		if !strings.Contains(room, needle) && !strings.Contains(strings.ToLower(t.Area), needle) {
			return false
		}
	}
	return true
}

func Filter(tickets []models.Ticket, f Filters) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for i := range tickets {
		if f.Match(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return out
}
