package services

import (
	"bytes"
	"context"
	"hotelmaint/src/lib"
	"hotelmaint/src/metrics"
	"hotelmaint/src/models"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"hotelmaint/src/workflow"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func ptr[T any](v T) *T { return &v }

type assignment struct {
	prev, next *uuid.UUID
	ticketID   uuid.UUID
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []assignment
}

func (r *recordingNotifier) OnAssignmentChanged(prev, next *uuid.UUID, t *models.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, assignment{prev: prev, next: next, ticketID: t.ID})
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type TicketServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	store    *repository.Store
	storage  *MemoryStorage
	notifier *recordingNotifier
	feed     *lib.LocalFeed
	svc      *TicketService

	hotelA, hotelB models.Hotel
	room           models.Room
	admin          *session.Session
	reception      *session.Session
	tech           *session.Session
	techOther      *session.Session
	techB          *session.Session
}

func (s *TicketServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }
	s.store = repository.NewMemoryStore(clock)
	s.storage = NewMemoryStorage()
	s.notifier = &recordingNotifier{}
	s.feed = lib.NewLocalFeed()
	s.svc = &TicketService{
		Store:       s.store,
		Notifier:    s.notifier,
		Feed:        s.feed,
		Media:       &MediaService{Storage: s.storage},
		Idempotency: NewMemoryKeyClaimer(),
		Now:         clock,
	}

	s.hotelA = models.Hotel{Name: "Alameda", Active: true}
	s.hotelB = models.Hotel{Name: "Bahia", Active: true}
	s.Require().NoError(s.store.Hotels.Create(s.ctx, &s.hotelA))
	s.Require().NoError(s.store.Hotels.Create(s.ctx, &s.hotelB))
	s.room = models.Room{HotelID: s.hotelA.ID, Number: "101", Floor: 1}
	s.Require().NoError(s.store.Rooms.Create(s.ctx, &s.room))

	s.admin = s.user("admin@example.com", types.ROLE_ADMIN)
	s.reception = s.user("desk@example.com", types.ROLE_RECEPTION, s.hotelA.ID)
	s.tech = s.user("tech@example.com", types.ROLE_TECHNICIAN, s.hotelA.ID)
	s.techOther = s.user("tech2@example.com", types.ROLE_TECHNICIAN, s.hotelA.ID)
	s.techB = s.user("techb@example.com", types.ROLE_TECHNICIAN, s.hotelB.ID)
}

func (s *TicketServiceTestSuite) user(email string, role types.Role, hotels ...uuid.UUID) *session.Session {
	u := &models.User{Email: email, Name: email, Role: role, Locale: "en", Active: true}
	for _, id := range hotels {
		u.Hotels = append(u.Hotels, models.Hotel{ID: id})
	}
	s.Require().NoError(s.store.Users.Create(s.ctx, u))
	stored, err := s.store.Users.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	return session.FromUser(stored)
}

func (s *TicketServiceTestSuite) body() *types.CreateTicketRequestBody {
	return &types.CreateTicketRequestBody{
		HotelID:  s.hotelA.ID,
		RoomID:   &s.room.ID,
		Title:    "Leaking tap",
		Area:     "Bathroom",
		Category: types.CATEGORY_PLUMBING,
		Priority: types.PRIORITY_HIGH,
	}
}

func (s *TicketServiceTestSuite) create() *models.Ticket {
	t, created, err := s.svc.Create(s.ctx, s.reception, s.body(), "")
	s.Require().NoError(err)
	s.Require().True(created)
	return t
}

func (s *TicketServiceTestSuite) assign(t *models.Ticket, to *session.Session) *models.Ticket {
	updated, err := s.svc.Update(s.ctx, s.admin, t.ID, &types.UpdateTicketRequestBody{
		AssigneeID: types.OptionalUUID{Set: true, Value: &to.UserID},
	})
	s.Require().NoError(err)
	return updated
}

func (s *TicketServiceTestSuite) TestCreateStartsNew() {
	t := s.create()
	s.Equal(types.TICKET_NEW, t.Status)
	s.Equal(s.reception.UserID, t.CreatorID)
	s.Nil(t.AssigneeID)
	s.Require().NotNil(t.Room)
	s.Equal("101", t.Room.Number)
}

func (s *TicketServiceTestSuite) TestCreateWithFutureDateIsScheduled() {
	b := s.body()
	b.ScheduledFor = ptr(s.now.Add(48 * time.Hour))
	t, _, err := s.svc.Create(s.ctx, s.reception, b, "")
	s.Require().NoError(err)
	s.Equal(types.TICKET_SCHEDULED, t.Status)

	b.ScheduledFor = ptr(s.now.Add(-time.Hour))
	_, _, err = s.svc.Create(s.ctx, s.reception, b, "")
	s.ErrorIs(err, workflow.ErrScheduleRequired)
}

func (s *TicketServiceTestSuite) TestCreateRejectsForeignHotelAndRoom() {
	b := s.body()
	b.HotelID = s.hotelB.ID
	b.RoomID = nil
	_, _, err := s.svc.Create(s.ctx, s.reception, b, "")
	s.ErrorIs(err, repository.ErrForbidden)

	_, _, err = s.svc.Create(s.ctx, s.techB, s.body(), "")
	s.ErrorIs(err, repository.ErrForbidden)

	b = s.body()
	b.HotelID = s.hotelB.ID
	_, _, err = s.svc.Create(s.ctx, s.admin, b, "")
	s.ErrorIs(err, ErrInvalidReference)
}

func (s *TicketServiceTestSuite) TestCreateIsIdempotent() {
	first, created, err := s.svc.Create(s.ctx, s.reception, s.body(), "retry-1")
	s.Require().NoError(err)
	s.True(created)

	second, created, err := s.svc.Create(s.ctx, s.reception, s.body(), "retry-1")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)

	all, err := s.svc.List(s.ctx, s.admin, metrics.Filters{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *TicketServiceTestSuite) TestVisibilityFollowsHotelAssignment() {
	t := s.create()

	mine, err := s.svc.List(s.ctx, s.tech, metrics.Filters{})
	s.Require().NoError(err)
	s.Len(mine, 1)

	other, err := s.svc.List(s.ctx, s.techB, metrics.Filters{})
	s.Require().NoError(err)
	s.Empty(other)

	_, err = s.svc.Get(s.ctx, s.techB, t.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.svc.Update(s.ctx, s.techB, t.ID, &types.UpdateTicketRequestBody{Status: ptr(types.TICKET_IN_PROGRESS)})
	s.ErrorIs(err, repository.ErrNotFound)

	all, err := s.svc.List(s.ctx, s.admin, metrics.Filters{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *TicketServiceTestSuite) TestNotifierFiresOnlyOnChange() {
	t := s.create()
	t = s.assign(t, s.tech)
	s.Equal(1, s.notifier.count())

	// same assignee again writes nothing
	same := s.assign(t, s.tech)
	s.Equal(t.UpdatedAt, same.UpdatedAt)
	s.Equal(1, s.notifier.count())

	s.assign(t, s.techOther)
	s.Require().Equal(2, s.notifier.count())
	last := s.notifier.calls[1]
	s.Equal(s.tech.UserID, *last.prev)
	s.Equal(s.techOther.UserID, *last.next)
}

func (s *TicketServiceTestSuite) TestAssigneeMustBelongToHotel() {
	t := s.create()
	_, err := s.svc.Update(s.ctx, s.admin, t.ID, &types.UpdateTicketRequestBody{
		AssigneeID: types.OptionalUUID{Set: true, Value: &s.techB.UserID},
	})
	s.ErrorIs(err, workflow.ErrInvalidAssignee)
	s.Equal(0, s.notifier.count())
}

func (s *TicketServiceTestSuite) TestMovingHotelKeepsAssigneeMember() {
	t := s.assign(s.create(), s.tech)

	_, err := s.svc.Update(s.ctx, s.admin, t.ID, &types.UpdateTicketRequestBody{HotelID: &s.hotelB.ID})
	s.ErrorIs(err, workflow.ErrInvalidAssignee)
	stored, err := s.svc.Get(s.ctx, s.tech, t.ID)
	s.Require().NoError(err)
	s.Equal(s.hotelA.ID, stored.HotelID)

	moved, err := s.svc.Update(s.ctx, s.admin, t.ID, &types.UpdateTicketRequestBody{
		HotelID:    &s.hotelB.ID,
		RoomID:     types.OptionalUUID{Set: true},
		AssigneeID: types.OptionalUUID{Set: true, Value: &s.techB.UserID},
	})
	s.Require().NoError(err)
	s.Equal(s.hotelB.ID, moved.HotelID)
	visible, err := s.svc.List(s.ctx, s.techB, metrics.Filters{})
	s.Require().NoError(err)
	s.Len(visible, 1)
}

func (s *TicketServiceTestSuite) TestCreateRetryWhileFirstInFlight() {
	_, claimed, err := s.svc.Idempotency.Claim(s.ctx, idempotencyKey(s.reception.UserID, "slow"), uuid.New().String())
	s.Require().NoError(err)
	s.Require().True(claimed)

	_, _, err = s.svc.Create(s.ctx, s.reception, s.body(), "slow")
	s.ErrorIs(err, repository.ErrConflict)
	all, err := s.svc.List(s.ctx, s.admin, metrics.Filters{})
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *TicketServiceTestSuite) TestTechnicianCompletion() {
	t := s.create()
	t = s.assign(t, s.tech)
	t, err := s.svc.Update(s.ctx, s.tech, t.ID, &types.UpdateTicketRequestBody{Status: ptr(types.TICKET_IN_PROGRESS)})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, s.tech, t.ID, &types.UpdateTicketRequestBody{Status: ptr(types.TICKET_COMPLETED)})
	s.ErrorIs(err, workflow.ErrSolutionRequired)
	stored, err := s.store.Tickets.Get(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(types.TICKET_IN_PROGRESS, stored.Status)
	s.Nil(stored.ClosedAt)

	patch := &types.UpdateTicketRequestBody{Status: ptr(types.TICKET_COMPLETED), Solution: ptr("Replaced washer")}
	_, err = s.svc.Update(s.ctx, s.tech, t.ID, patch)
	var confirm *workflow.ConfirmationRequired
	s.Require().ErrorAs(err, &confirm)
	s.Equal(workflow.ConfirmComplete, confirm.Reason)

	s.now = s.now.Add(5 * time.Hour)
	patch.Confirmed = true
	done, err := s.svc.Update(s.ctx, s.tech, t.ID, patch)
	s.Require().NoError(err)
	s.Equal(types.TICKET_COMPLETED, done.Status)
	s.Equal("Replaced washer", *done.Solution)
	s.Require().NotNil(done.ClosedAt)
	s.Equal(s.now, *done.ClosedAt)
}

func (s *TicketServiceTestSuite) TestReceptionCannotChangeStatus() {
	t := s.create()
	_, err := s.svc.Update(s.ctx, s.reception, t.ID, &types.UpdateTicketRequestBody{Status: ptr(types.TICKET_CANCELLED)})
	s.ErrorIs(err, workflow.ErrFieldNotEditable)

	updated, err := s.svc.Update(s.ctx, s.reception, t.ID, &types.UpdateTicketRequestBody{Priority: ptr(types.PRIORITY_URGENT)})
	s.Require().NoError(err)
	s.Equal(types.PRIORITY_URGENT, updated.Priority)
}

func (s *TicketServiceTestSuite) TestDeleteIsAdminOnly() {
	t := s.create()
	s.ErrorIs(s.svc.Delete(s.ctx, s.reception, t.ID), repository.ErrForbidden)
	s.Require().NoError(s.svc.Delete(s.ctx, s.admin, t.ID))
	_, err := s.svc.Get(s.ctx, s.admin, t.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *TicketServiceTestSuite) TestEscalatePromotesStaleAssigned() {
	assigned := s.assign(s.create(), s.tech)
	unassigned := s.create()
	s.now = s.now.Add(30 * time.Minute)
	fresh := s.assign(s.create(), s.tech)

	s.now = s.now.Add(45 * time.Minute)
	n, err := s.svc.Escalate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	got, _ := s.store.Tickets.Get(s.ctx, assigned.ID)
	s.Equal(types.TICKET_IN_PROGRESS, got.Status)
	got, _ = s.store.Tickets.Get(s.ctx, unassigned.ID)
	s.Equal(types.TICKET_NEW, got.Status)
	got, _ = s.store.Tickets.Get(s.ctx, fresh.ID)
	s.Equal(types.TICKET_NEW, got.Status)

	notes, err := s.store.Notifications.ListForUser(s.ctx, s.tech.UserID)
	s.Require().NoError(err)
	s.Require().Len(notes, 1)
	s.Equal("Ticket escalated", notes[0].Title)
}

func (s *TicketServiceTestSuite) TestAttachCompressesAndSigns() {
	t := s.create()
	img := image.NewRGBA(image.Rect(0, 0, 3000, 1000))
	for x := 0; x < 3000; x += 7 {
		img.Set(x, x%1000, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))

	updated, err := s.svc.Attach(s.ctx, s.reception, t.ID, false, Upload{
		Filename: "Broken Tap.png",
		Size:     int64(buf.Len()),
		Body:     &buf,
	})
	s.Require().NoError(err)
	s.Require().Len(updated.Attachments, 1)
	key := updated.Attachments[0]
	s.Contains(key, "tickets/"+t.ID.String()+"/")
	s.Contains(key, "-broken-tap.jpg")

	contentType, data, ok := s.storage.Object(key)
	s.Require().True(ok)
	s.Equal("image/jpeg", contentType)
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	s.Require().NoError(err)
	s.Equal(1920, decoded.Bounds().Dx())
	s.Equal(640, decoded.Bounds().Dy())

	presented := s.svc.Present(s.ctx, updated)
	s.Require().Len(presented.Attachments, 1)
	s.Contains(presented.Attachments[0], "memory://"+key+"?expires=")
	s.Equal(key, updated.Attachments[0])
}

func (s *TicketServiceTestSuite) TestAttachRespectsFieldPolicy() {
	t := s.create()
	_, err := s.svc.Attach(s.ctx, s.reception, t.ID, true, Upload{Filename: "x.png", Body: bytes.NewReader(nil)})
	s.ErrorIs(err, workflow.ErrFieldNotEditable)

	_, err = s.svc.Attach(s.ctx, s.admin, t.ID, false, Upload{Filename: "notes.txt", Body: bytes.NewReader([]byte("plain text"))})
	s.ErrorIs(err, ErrUnsupportedMedia)
	s.Equal(0, s.storage.Len())
}

func (s *TicketServiceTestSuite) TestUpdatePublishesChange() {
	t := s.create()
	changes, stop := s.feed.Subscribe(s.ctx, "changes:tickets")
	defer stop()

	s.assign(t, s.tech)
	select {
	case c := <-changes:
		s.Equal("ticket", c.Entity)
		s.Equal("update", c.Op)
		s.Equal(t.ID, c.ID)
	case <-time.After(time.Second):
		s.Fail("no change published")
	}
}

func TestTicketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TicketServiceTestSuite))
}

func TestDashboardScopesToVisibleTickets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore(func() time.Time { return now })

	hotelA := models.Hotel{Name: "Alameda", Active: true}
	hotelB := models.Hotel{Name: "Bahia", Active: true}
	require.NoError(t, store.Hotels.Create(ctx, &hotelA))
	require.NoError(t, store.Hotels.Create(ctx, &hotelB))
	for _, h := range []uuid.UUID{hotelA.ID, hotelA.ID, hotelB.ID} {
		require.NoError(t, store.Tickets.Create(ctx, &models.Ticket{
			HotelID: h, CreatorID: uuid.New(), Title: "t", Area: "lobby",
			Category: types.CATEGORY_OTHER, Priority: types.PRIORITY_LOW, Status: types.TICKET_NEW,
		}))
	}

	svc := &DashboardService{Store: store, Now: func() time.Time { return now }}
	reception := &session.Session{UserID: uuid.New(), Role: types.ROLE_RECEPTION, HotelIDs: []uuid.UUID{hotelA.ID}}
	d, err := svc.Build(ctx, reception, metrics.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Total)
	require.Len(t, d.ByHotel, 1)
	assert.Equal(t, "Alameda", d.ByHotel[0].Name)

	admin := &session.Session{UserID: uuid.New(), Role: types.ROLE_ADMIN}
	d, err = svc.Build(ctx, admin, metrics.Filters{HotelID: &hotelB.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Total)
}
