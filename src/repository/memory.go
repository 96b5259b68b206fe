package repository

import (
	"cmp"
	"context"
	"fmt"
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memory backs STORE_DRIVER=memory and the service tests. Rows are copied
// in and out so callers never share state with the store.
type memory struct {
	mu            sync.RWMutex
	now           func() time.Time
	tickets       map[uuid.UUID]models.Ticket
	hotels        map[uuid.UUID]models.Hotel
	users         map[uuid.UUID]models.User
	userHotels    map[uuid.UUID][]uuid.UUID
	rooms         map[uuid.UUID]models.Room
	checklists    map[uuid.UUID]models.Checklist
	notifications map[uuid.UUID]models.Notification
}

// NewMemoryStore returns a Store kept in process memory. now stamps
// created_at/updated_at; nil means time.Now.
func NewMemoryStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	m := &memory{
		now:           now,
		tickets:       map[uuid.UUID]models.Ticket{},
		hotels:        map[uuid.UUID]models.Hotel{},
		users:         map[uuid.UUID]models.User{},
		userHotels:    map[uuid.UUID][]uuid.UUID{},
		rooms:         map[uuid.UUID]models.Room{},
		checklists:    map[uuid.UUID]models.Checklist{},
		notifications: map[uuid.UUID]models.Notification{},
	}
	return &Store{
		Tickets:       (*memTickets)(m),
		Hotels:        (*memHotels)(m),
		Users:         (*memUsers)(m),
		Rooms:         (*memRooms)(m),
		Checklists:    (*memChecklists)(m),
		Notifications: (*memNotifications)(m),
	}
}

func (m *memory) stamp(ts *types.Timestamps) {
	now := m.now()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now
}

func (m *memory) withRoom(t models.Ticket) models.Ticket {
	c := t.Clone()
	c.Room = nil
	if t.RoomID != nil {
		if r, ok := m.rooms[*t.RoomID]; ok {
			c.Room = &r
		}
	}
	return c
}

type memTickets memory

func (r *memTickets) Create(_ context.Context, t *models.Ticket) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := m.tickets[t.ID]; ok {
		return fmt.Errorf("%w: ticket %s exists", ErrConflict, t.ID)
	}
	if t.Attachments == nil {
		t.Attachments = types.StringList{}
	}
	if t.SolutionAttachments == nil {
		t.SolutionAttachments = types.StringList{}
	}
	m.stamp(&t.Timestamps)
	m.tickets[t.ID] = t.Clone()
	return nil
}

func (r *memTickets) Get(_ context.Context, id uuid.UUID) (*models.Ticket, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.withRoom(t)
	return &out, nil
}

func (r *memTickets) List(_ context.Context, hotelIDs []uuid.UUID) ([]models.Ticket, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Ticket{}
	for _, t := range m.tickets {
		if hotelIDs != nil && !slices.Contains(hotelIDs, t.HotelID) {
			continue
		}
		out = append(out, m.withRoom(t))
	}
	slices.SortFunc(out, func(a, b models.Ticket) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *memTickets) Update(_ context.Context, id uuid.UUID, updates map[string]any) (*models.Ticket, error) {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	t = t.Clone()
	if err := applyTicketUpdates(&t, updates); err != nil {
		return nil, err
	}
	m.stamp(&t.Timestamps)
	m.tickets[id] = t
	out := m.withRoom(t)
	return &out, nil
}

func (r *memTickets) AppendAttachment(_ context.Context, id uuid.UUID, column string, url string) (*models.Ticket, error) {
	column, err := AttachmentColumn(column)
	if err != nil {
		return nil, err
	}
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	t = t.Clone()
	if column == "solution_attachments" {
		t.SolutionAttachments = append(t.SolutionAttachments, url)
	} else {
		t.Attachments = append(t.Attachments, url)
	}
	m.stamp(&t.Timestamps)
	m.tickets[id] = t
	out := m.withRoom(t)
	return &out, nil
}

func (r *memTickets) Delete(_ context.Context, id uuid.UUID) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(m.tickets, id)
	return nil
}

func (r *memTickets) EscalateStale(_ context.Context, cutoff time.Time) ([]models.Ticket, int64, error) {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	var promoted []models.Ticket
	var unassigned int64
	for id, t := range m.tickets {
		if t.Status != types.TICKET_NEW || !t.CreatedAt.Before(cutoff) {
			continue
		}
		if t.AssigneeID == nil {
			unassigned++
			continue
		}
		t.Status = types.TICKET_IN_PROGRESS
		m.stamp(&t.Timestamps)
		m.tickets[id] = t
		promoted = append(promoted, t.Clone())
	}
	return promoted, unassigned, nil
}

// applyTicketUpdates mirrors the column writes gorm performs for Updates(map).
func applyTicketUpdates(t *models.Ticket, updates map[string]any) error {
	for col, v := range updates {
		var err error
		switch col {
		case "hotel_id":
			err = assign(&t.HotelID, v)
		case "room_id":
			t.RoomID, err = optionalUUID(v)
		case "assignee_id":
			t.AssigneeID, err = optionalUUID(v)
		case "title":
			err = assign(&t.Title, v)
		case "description":
			err = assign(&t.Description, v)
		case "area":
			err = assign(&t.Area, v)
		case "category":
			err = assign(&t.Category, v)
		case "priority":
			err = assign(&t.Priority, v)
		case "status":
			err = assign(&t.Status, v)
		case "solution":
			t.Solution, err = optional[string](v)
		case "scheduled_for":
			t.ScheduledFor, err = optional[time.Time](v)
		case "closed_at":
			t.ClosedAt, err = optional[time.Time](v)
		case "attachments":
			err = assign(&t.Attachments, v)
		case "solution_attachments":
			err = assign(&t.SolutionAttachments, v)
		default:
			err = fmt.Errorf("unknown ticket column %q", col)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func assign[T any](dst *T, v any) error {
	val, ok := v.(T)
	if !ok {
		return fmt.Errorf("unexpected %T for %T column", v, *dst)
	}
	*dst = val
	return nil
}

func optional[T any](v any) (*T, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *T:
		if val == nil {
			return nil, nil
		}
		c := *val
		return &c, nil
	case T:
		return &val, nil
	}
	return nil, fmt.Errorf("unexpected %T for optional column", v)
}

func optionalUUID(v any) (*uuid.UUID, error) {
	return optional[uuid.UUID](v)
}

type memHotels memory

func (r *memHotels) List(_ context.Context, ids []uuid.UUID) ([]models.Hotel, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Hotel{}
	for _, h := range m.hotels {
		if ids != nil && !slices.Contains(ids, h.ID) {
			continue
		}
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b models.Hotel) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memHotels) Get(_ context.Context, id uuid.UUID) (*models.Hotel, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (r *memHotels) Create(_ context.Context, h *models.Hotel) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if _, ok := m.hotels[h.ID]; ok {
		return fmt.Errorf("%w: hotel %s exists", ErrConflict, h.ID)
	}
	m.stamp(&h.Timestamps)
	stored := *h
	stored.Rooms = nil
	m.hotels[h.ID] = stored
	return nil
}

func (r *memHotels) Update(_ context.Context, id uuid.UUID, updates map[string]any) (*models.Hotel, error) {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, ErrNotFound
	}
	for col, v := range updates {
		var err error
		switch col {
		case "name":
			err = assign(&h.Name, v)
		case "address":
			err = assign(&h.Address, v)
		case "phone":
			err = assign(&h.Phone, v)
		case "email":
			err = assign(&h.Email, v)
		case "tax_id":
			err = assign(&h.TaxID, v)
		case "active":
			err = assign(&h.Active, v)
		default:
			err = fmt.Errorf("unknown hotel column %q", col)
		}
		if err != nil {
			return nil, err
		}
	}
	m.stamp(&h.Timestamps)
	m.hotels[id] = h
	return &h, nil
}

type memUsers memory

func (m *memory) userWithHotels(u models.User) models.User {
	u.Hotels = nil
	for _, hid := range m.userHotels[u.ID] {
		if h, ok := m.hotels[hid]; ok {
			u.Hotels = append(u.Hotels, h)
		}
	}
	return u
}

func (r *memUsers) List(_ context.Context) ([]models.User, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, m.userWithHotels(u))
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.userWithHotels(u)
	return &out, nil
}

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range m.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: user %s exists", ErrConflict, u.Email)
		}
	}
	m.stamp(&u.Timestamps)
	ids := make([]uuid.UUID, 0, len(u.Hotels))
	for _, h := range u.Hotels {
		ids = append(ids, h.ID)
	}
	m.userHotels[u.ID] = ids
	stored := *u
	stored.Hotels = nil
	m.users[u.ID] = stored
	return nil
}

func (r *memUsers) Update(_ context.Context, id uuid.UUID, updates map[string]any, hotelIDs *[]uuid.UUID) (*models.User, error) {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for col, v := range updates {
		var err error
		switch col {
		case "name":
			err = assign(&u.Name, v)
		case "role":
			err = assign(&u.Role, v)
		case "locale":
			err = assign(&u.Locale, v)
		case "active":
			err = assign(&u.Active, v)
		default:
			err = fmt.Errorf("unknown user column %q", col)
		}
		if err != nil {
			return nil, err
		}
	}
	if hotelIDs != nil {
		m.userHotels[id] = slices.Clone(*hotelIDs)
	}
	m.stamp(&u.Timestamps)
	m.users[id] = u
	out := m.userWithHotels(u)
	return &out, nil
}

type memRooms memory

func (r *memRooms) ListByHotel(_ context.Context, hotelID uuid.UUID) ([]models.Room, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Room{}
	for _, room := range m.rooms {
		if room.HotelID == hotelID {
			out = append(out, room)
		}
	}
	slices.SortFunc(out, func(a, b models.Room) int {
		if c := cmp.Compare(a.Floor, b.Floor); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
	return out, nil
}

func (r *memRooms) Get(_ context.Context, id uuid.UUID) (*models.Room, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (r *memRooms) Create(_ context.Context, room *models.Room) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	for _, existing := range m.rooms {
		if existing.HotelID == room.HotelID && existing.Number == room.Number {
			return fmt.Errorf("%w: room %s exists", ErrConflict, room.Number)
		}
	}
	m.stamp(&room.Timestamps)
	m.rooms[room.ID] = *room
	return nil
}

func (r *memRooms) Delete(_ context.Context, id uuid.UUID) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

type memChecklists memory

func (m *memory) checklistWithRooms(c models.Checklist, withRoom bool) models.Checklist {
	rooms := make([]models.ChecklistRoomStatus, len(c.Rooms))
	copy(rooms, c.Rooms)
	for i := range rooms {
		rooms[i].Room = nil
		if !withRoom {
			continue
		}
		if room, ok := m.rooms[rooms[i].RoomID]; ok {
			rooms[i].Room = &room
		}
	}
	c.Rooms = rooms
	return c
}

func (r *memChecklists) ListByHotel(_ context.Context, hotelID uuid.UUID) ([]models.Checklist, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Checklist{}
	for _, c := range m.checklists {
		if c.HotelID == hotelID {
			out = append(out, m.checklistWithRooms(c, false))
		}
	}
	slices.SortFunc(out, func(a, b models.Checklist) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *memChecklists) Get(_ context.Context, id uuid.UUID) (*models.Checklist, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checklists[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.checklistWithRooms(c, true)
	return &out, nil
}

func (r *memChecklists) Create(_ context.Context, c *models.Checklist) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.stamp(&c.Timestamps)
	now := m.now()
	for i := range c.Rooms {
		c.Rooms[i].ChecklistID = c.ID
		c.Rooms[i].UpdatedAt = now
	}
	m.checklists[c.ID] = m.checklistWithRooms(*c, false)
	return nil
}

func (r *memChecklists) SetRoomStatus(_ context.Context, checklistID, roomID uuid.UUID, status types.RoomStatus, note string, by uuid.UUID) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[checklistID]
	if !ok {
		return ErrNotFound
	}
	c = m.checklistWithRooms(c, false)
	for i := range c.Rooms {
		if c.Rooms[i].RoomID != roomID {
			continue
		}
		c.Rooms[i].Status = status
		c.Rooms[i].Note = note
		c.Rooms[i].UpdatedBy = &by
		c.Rooms[i].UpdatedAt = m.now()
		m.checklists[checklistID] = c
		return nil
	}
	return ErrNotFound
}

type memNotifications memory

func (r *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.stamp(&n.Timestamps)
	m.notifications[n.ID] = *n
	return nil
}

func (r *memNotifications) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	m := (*memory)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b models.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

func (r *memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m := (*memory)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, notif := range m.notifications {
		if notif.UserID == userID && !notif.Read {
			notif.Read = true
			m.notifications[id] = notif
			n++
		}
	}
	return n, nil
}
