package policy

import (
	"hotelmaint/src/models"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	hotelA = uuid.New()
	hotelB = uuid.New()
)

func admin() *session.Session {
	return &session.Session{UserID: uuid.New(), Role: types.ROLE_ADMIN}
}

func technician(hotels ...uuid.UUID) *session.Session {
	return &session.Session{UserID: uuid.New(), Role: types.ROLE_TECHNICIAN, HotelIDs: hotels}
}

func reception(hotels ...uuid.UUID) *session.Session {
	return &session.Session{UserID: uuid.New(), Role: types.ROLE_RECEPTION, HotelIDs: hotels}
}

func ticketIn(hotel, creator uuid.UUID) models.Ticket {
	return models.Ticket{ID: uuid.New(), HotelID: hotel, CreatorID: creator, Status: types.TICKET_NEW}
}

func TestVisibleTickets(t *testing.T) {
	all := []models.Ticket{
		ticketIn(hotelA, uuid.New()),
		ticketIn(hotelB, uuid.New()),
		ticketIn(hotelA, uuid.New()),
	}

	t.Run("admin sees everything", func(t *testing.T) {
		assert.Len(t, VisibleTickets(admin(), all), 3)
	})
	t.Run("reception only sees assigned hotels", func(t *testing.T) {
		got := VisibleTickets(reception(hotelA), all)
		assert.Len(t, got, 2)
		for _, tk := range got {
			assert.Equal(t, hotelA, tk.HotelID)
		}
	})
	t.Run("technician sees every ticket of assigned hotels", func(t *testing.T) {
		assert.Len(t, VisibleTickets(technician(hotelA, hotelB), all), 3)
		assert.Empty(t, VisibleTickets(technician(), all))
	})
	t.Run("no session sees nothing", func(t *testing.T) {
		assert.Empty(t, VisibleTickets(nil, all))
	})
}

func TestCanEdit(t *testing.T) {
	rec := reception(hotelA)
	own := ticketIn(hotelA, rec.UserID)
	foreign := ticketIn(hotelA, uuid.New())

	assert.True(t, CanEdit(admin(), &foreign))
	assert.True(t, CanEdit(technician(hotelA), &foreign))
	assert.True(t, CanEdit(technician(), &own))
	assert.True(t, CanEdit(rec, &own))
	assert.False(t, CanEdit(rec, &foreign))
	assert.False(t, CanEdit(nil, &own))
}

func TestCapabilities(t *testing.T) {
	assert.True(t, CanChangeTechnician(admin()))
	assert.False(t, CanChangeTechnician(technician(hotelA)))
	assert.False(t, CanChangeTechnician(reception(hotelA)))

	assert.True(t, CanChangePriority(admin()))
	assert.True(t, CanChangePriority(reception(hotelA)))
	assert.False(t, CanChangePriority(technician(hotelA)))

	assert.True(t, CanDeleteTicket(admin()))
	assert.False(t, CanDeleteTicket(reception(hotelA)))

	assert.True(t, CanCreateTicket(reception(hotelA), hotelA))
	assert.False(t, CanCreateTicket(reception(hotelA), hotelB))
	assert.False(t, CanCreateTicket(technician(hotelA), hotelA))
	assert.True(t, CanCreateTicket(admin(), hotelB))
}

func TestCanAssignTo(t *testing.T) {
	tech := technician(hotelA)
	self := &models.User{ID: tech.UserID, Role: types.ROLE_TECHNICIAN, Active: true}
	other := &models.User{ID: uuid.New(), Role: types.ROLE_TECHNICIAN, Active: true}
	recUser := &models.User{ID: uuid.New(), Role: types.ROLE_RECEPTION, Active: true}
	inactive := &models.User{ID: uuid.New(), Role: types.ROLE_TECHNICIAN}

	assert.True(t, CanAssignTo(tech, self))
	assert.False(t, CanAssignTo(tech, other))
	assert.True(t, CanAssignTo(admin(), other))
	assert.False(t, CanAssignTo(admin(), recUser))
	assert.False(t, CanAssignTo(admin(), inactive))
	assert.False(t, CanAssignTo(reception(hotelA), other))
	assert.False(t, CanAssignTo(admin(), nil))
}

func TestEditableFields(t *testing.T) {
	rec := reception(hotelA)
	own := ticketIn(hotelA, rec.UserID)

	fs := EditableFields(rec, &own)
	assert.True(t, fs.Has(FieldPriority))
	assert.True(t, fs.Has(FieldTitle))
	assert.False(t, fs.Has(FieldStatus))
	assert.False(t, fs.Has(FieldAssignee))

	foreign := ticketIn(hotelA, uuid.New())
	assert.Empty(t, EditableFields(rec, &foreign))

	tech := EditableFields(technician(hotelA), &foreign)
	assert.True(t, tech.Has(FieldStatus))
	assert.True(t, tech.Has(FieldSolution))
	assert.False(t, tech.Has(FieldPriority))
	assert.False(t, tech.Has(FieldHotel))

	adm := EditableFields(admin(), &foreign)
	for _, f := range allFields {
		assert.True(t, adm.Has(f), f)
	}
}

func TestVisibleHotelIDs(t *testing.T) {
	assert.Nil(t, VisibleHotelIDs(admin()))
	assert.Equal(t, []uuid.UUID{hotelA}, VisibleHotelIDs(reception(hotelA)))
	assert.NotNil(t, VisibleHotelIDs(technician()))
	assert.Empty(t, VisibleHotelIDs(technician()))
}
