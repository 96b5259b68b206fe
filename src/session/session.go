// Package session carries the authenticated identity through every policy
// and data-access call, and broadcasts session changes to interested parties.
package session

import (
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type Session struct {
	UserID   uuid.UUID   `json:"user_id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     types.Role  `json:"role"`
	Locale   string      `json:"locale"`
	HotelIDs []uuid.UUID `json:"hotel_ids"`
}

func FromUser(u *models.User) *Session {
	s := &Session{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Locale: u.Locale,
	}
	for _, h := range u.Hotels {
		s.HotelIDs = append(s.HotelIDs, h.ID)
	}
	return s
}

// BelongsTo reports whether the user is assigned to the hotel.
func (s *Session) BelongsTo(hotelID uuid.UUID) bool {
	return slices.Contains(s.HotelIDs, hotelID)
}

type Listener func(s *Session)

// Hub fans session-changed events out to subscribers keyed by user.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uuid.UUID]map[int]Listener
}

func NewHub() *Hub {
	return &Hub{subs: map[uuid.UUID]map[int]Listener{}}
}

// Subscribe registers fn for changes to userID's session. The returned
// function removes the subscription and is safe to call more than once.
func (h *Hub) Subscribe(userID uuid.UUID, fn Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	if h.subs[userID] == nil {
		h.subs[userID] = map[int]Listener{}
	}
	h.subs[userID][id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
		})
	}
}

// Publish notifies every subscriber of s.UserID.
func (h *Hub) Publish(s *Session) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.subs[s.UserID]))
	for _, fn := range h.subs[s.UserID] {
		listeners = append(listeners, fn)
	}
	h.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
