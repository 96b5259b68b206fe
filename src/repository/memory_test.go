package repository

import (
	"context"
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *Store
	hotel models.Hotel
}

func (s *MemoryStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(func() time.Time { return s.now })
	s.hotel = models.Hotel{Name: "Alameda", Active: true}
	s.Require().NoError(s.store.Hotels.Create(s.ctx, &s.hotel))
}

func (s *MemoryStoreTestSuite) newTicket(assignee *uuid.UUID) *models.Ticket {
	t := &models.Ticket{
		HotelID:    s.hotel.ID,
		CreatorID:  uuid.New(),
		AssigneeID: assignee,
		Title:      "No hot water",
		Area:       "Room 101",
		Category:   types.CATEGORY_PLUMBING,
		Priority:   types.PRIORITY_HIGH,
		Status:     types.TICKET_NEW,
	}
	s.Require().NoError(s.store.Tickets.Create(s.ctx, t))
	return t
}

func (s *MemoryStoreTestSuite) TestTicketCopiesAreIsolated() {
	t := s.newTicket(nil)
	got, err := s.store.Tickets.Get(s.ctx, t.ID)
	s.Require().NoError(err)
	got.Title = "changed"
	got.Attachments = append(got.Attachments, "x")

	again, err := s.store.Tickets.Get(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal("No hot water", again.Title)
	s.Empty(again.Attachments)
	s.Equal(s.now, again.CreatedAt)
}

func (s *MemoryStoreTestSuite) TestTicketUpdate() {
	t := s.newTicket(nil)
	tech := uuid.New()
	solution := "Replaced valve"
	s.now = s.now.Add(time.Hour)

	got, err := s.store.Tickets.Update(s.ctx, t.ID, map[string]any{
		"status":      types.TICKET_COMPLETED,
		"assignee_id": &tech,
		"solution":    &solution,
		"closed_at":   s.now,
	})
	s.Require().NoError(err)
	s.Equal(types.TICKET_COMPLETED, got.Status)
	s.True(got.IsAssignedTo(tech))
	s.Equal(solution, *got.Solution)
	s.Equal(s.now, got.UpdatedAt)
	h, ok := got.ResolutionHours()
	s.True(ok)
	s.EqualValues(1, h)

	got, err = s.store.Tickets.Update(s.ctx, t.ID, map[string]any{"closed_at": nil, "status": types.TICKET_IN_PROGRESS})
	s.Require().NoError(err)
	s.Nil(got.ClosedAt)

	_, err = s.store.Tickets.Update(s.ctx, t.ID, map[string]any{"bogus": 1})
	s.Error(err)
	_, err = s.store.Tickets.Update(s.ctx, uuid.New(), map[string]any{"title": "x"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreTestSuite) TestListScopesByHotel() {
	s.newTicket(nil)
	other := models.Hotel{Name: "Bahia"}
	s.Require().NoError(s.store.Hotels.Create(s.ctx, &other))

	all, err := s.store.Tickets.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 1)
	none, err := s.store.Tickets.List(s.ctx, []uuid.UUID{})
	s.Require().NoError(err)
	s.Empty(none)
	scoped, err := s.store.Tickets.List(s.ctx, []uuid.UUID{other.ID})
	s.Require().NoError(err)
	s.Empty(scoped)
}

func (s *MemoryStoreTestSuite) TestAppendAttachment() {
	t := s.newTicket(nil)
	got, err := s.store.Tickets.AppendAttachment(s.ctx, t.ID, "attachments", "tickets/a.jpg")
	s.Require().NoError(err)
	got, err = s.store.Tickets.AppendAttachment(s.ctx, t.ID, "attachments", "tickets/b.jpg")
	s.Require().NoError(err)
	s.Equal(types.StringList{"tickets/a.jpg", "tickets/b.jpg"}, got.Attachments)

	_, err = s.store.Tickets.AppendAttachment(s.ctx, t.ID, "title", "x")
	s.Error(err)
}

func (s *MemoryStoreTestSuite) TestEscalateStale() {
	tech := uuid.New()
	assigned := s.newTicket(&tech)
	unassigned := s.newTicket(nil)
	s.now = s.now.Add(2 * time.Hour)
	fresh := s.newTicket(&tech)

	promoted, left, err := s.store.Tickets.EscalateStale(s.ctx, s.now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().Len(promoted, 1)
	s.Equal(assigned.ID, promoted[0].ID)
	s.EqualValues(1, left)

	for id, want := range map[uuid.UUID]types.TicketStatus{
		assigned.ID:   types.TICKET_IN_PROGRESS,
		unassigned.ID: types.TICKET_NEW,
		fresh.ID:      types.TICKET_NEW,
	} {
		got, err := s.store.Tickets.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want, got.Status)
	}
}

func (s *MemoryStoreTestSuite) TestUsersAndHotels() {
	u := models.User{Email: "marta@example.com", Name: "Marta", Role: types.ROLE_TECHNICIAN, Active: true, Hotels: []models.Hotel{s.hotel}}
	s.Require().NoError(s.store.Users.Create(s.ctx, &u))

	dup := models.User{Email: "MARTA@example.com"}
	s.ErrorIs(s.store.Users.Create(s.ctx, &dup), ErrConflict)

	got, err := s.store.Users.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Hotels, 1)
	s.Equal("Alameda", got.Hotels[0].Name)

	empty := []uuid.UUID{}
	got, err = s.store.Users.Update(s.ctx, u.ID, map[string]any{"active": false}, &empty)
	s.Require().NoError(err)
	s.False(got.Active)
	s.Empty(got.Hotels)
}

func (s *MemoryStoreTestSuite) TestRoomsAndChecklists() {
	r1 := models.Room{HotelID: s.hotel.ID, Number: "102", Floor: 1}
	r2 := models.Room{HotelID: s.hotel.ID, Number: "101", Floor: 1}
	s.Require().NoError(s.store.Rooms.Create(s.ctx, &r1))
	s.Require().NoError(s.store.Rooms.Create(s.ctx, &r2))
	s.ErrorIs(s.store.Rooms.Create(s.ctx, &models.Room{HotelID: s.hotel.ID, Number: "101"}), ErrConflict)

	rooms, err := s.store.Rooms.ListByHotel(s.ctx, s.hotel.ID)
	s.Require().NoError(err)
	s.Equal("101", rooms[0].Number)

	c := models.Checklist{HotelID: s.hotel.ID, Title: "Weekly fire check"}
	for _, r := range rooms {
		c.Rooms = append(c.Rooms, models.ChecklistRoomStatus{RoomID: r.ID, Status: types.ROOM_NOT_VERIFIED})
	}
	s.Require().NoError(s.store.Checklists.Create(s.ctx, &c))
	by := uuid.New()
	s.Require().NoError(s.store.Checklists.SetRoomStatus(s.ctx, c.ID, r1.ID, types.ROOM_WARNING, "smoke detector beeps", by))
	s.ErrorIs(s.store.Checklists.SetRoomStatus(s.ctx, c.ID, uuid.New(), types.ROOM_OK, "", by), ErrNotFound)

	got, err := s.store.Checklists.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	summary := got.Summary()
	s.Equal(1, summary[types.ROOM_WARNING])
	s.Equal(1, summary[types.ROOM_NOT_VERIFIED])
	s.Equal(0, summary[types.ROOM_ERROR])
	for _, r := range got.Rooms {
		s.NotNil(r.Room)
	}
}

func (s *MemoryStoreTestSuite) TestNotifications() {
	user := uuid.New()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Notifications.Create(s.ctx, &models.Notification{UserID: user, TicketID: uuid.New(), Title: "Assigned"}))
	}
	list, err := s.store.Notifications.ListForUser(s.ctx, user)
	s.Require().NoError(err)
	s.Len(list, 3)

	s.ErrorIs(s.store.Notifications.MarkRead(s.ctx, uuid.New(), list[0].ID), ErrNotFound)
	s.Require().NoError(s.store.Notifications.MarkRead(s.ctx, user, list[0].ID))
	n, err := s.store.Notifications.MarkAllRead(s.ctx, user)
	s.Require().NoError(err)
	s.EqualValues(2, n)
}

func TestMemoryStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreTestSuite))
}

func TestAttachmentColumn(t *testing.T) {
	_, err := AttachmentColumn("solution_attachments")
	require.NoError(t, err)
	_, err = AttachmentColumn("status")
	assert.Error(t, err)
}
