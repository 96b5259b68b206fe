package services

import (
	"context"
	"errors"
	"fmt"
	"hotelmaint/src/config"
	"hotelmaint/src/lib"
	"hotelmaint/src/metrics"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"hotelmaint/src/workflow"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TicketService struct {
	Store       *repository.Store
	Notifier    Notifier
	Feed        lib.Feed
	Media       *MediaService
	Idempotency KeyClaimer
	Now         func() time.Time
}

func (s *TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the caller's visible tickets narrowed by f.
func (s *TicketService) List(ctx context.Context, sess *session.Session, f metrics.Filters) ([]models.Ticket, error) {
	tickets, err := s.Store.Tickets.List(ctx, policy.VisibleHotelIDs(sess))
	if err != nil {
		return nil, err
	}
	return metrics.Filter(policy.VisibleTickets(sess, tickets), f), nil
}

// Get hides tickets outside the caller's hotels as not found.
func (s *TicketService) Get(ctx context.Context, sess *session.Session, id uuid.UUID) (*models.Ticket, error) {
	t, err := s.Store.Tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanSeeTicket(sess, t) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (s *TicketService) checkRoom(ctx context.Context, hotelID uuid.UUID, roomID *uuid.UUID) error {
	if roomID == nil {
		return nil
	}
	room, err := s.Store.Rooms.Get(ctx, *roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: room %s", ErrInvalidReference, roomID)
		}
		return err
	}
	if room.HotelID != hotelID {
		return fmt.Errorf("%w: room %s is not in hotel %s", ErrInvalidReference, roomID, hotelID)
	}
	return nil
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:%s:%s", userID, key)
}

// Create opens a ticket. When key is non-empty a retry with the same key
// returns the ticket created first, with created=false.
func (s *TicketService) Create(ctx context.Context, sess *session.Session, body *types.CreateTicketRequestBody, key string) (*models.Ticket, bool, error) {
	if !policy.CanCreateTicket(sess, body.HotelID) {
		return nil, false, repository.ErrForbidden
	}
	if !body.Category.Valid() || !body.Priority.Valid() {
		return nil, false, fmt.Errorf("%w: category or priority", ErrInvalidReference)
	}
	hotel, err := s.Store.Hotels.Get(ctx, body.HotelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: hotel %s", ErrInvalidReference, body.HotelID)
		}
		return nil, false, err
	}
	if !hotel.Active {
		return nil, false, fmt.Errorf("%w: hotel %s is inactive", ErrInvalidReference, body.HotelID)
	}
	if err := s.checkRoom(ctx, body.HotelID, body.RoomID); err != nil {
		return nil, false, err
	}
	now := s.now()
	status, err := workflow.InitialStatus(body.ScheduledFor, now)
	if err != nil {
		return nil, false, err
	}

	ticket := &models.Ticket{
		ID:           uuid.New(),
		HotelID:      body.HotelID,
		CreatorID:    sess.UserID,
		RoomID:       body.RoomID,
		Title:        strings.TrimSpace(body.Title),
		Description:  body.Description,
		Area:         strings.TrimSpace(body.Area),
		Category:     body.Category,
		Priority:     body.Priority,
		Status:       status,
		ScheduledFor: body.ScheduledFor,
		Attachments:  types.StringList(body.Attachments),
	}

	var claimKey string
	if key != "" && s.Idempotency != nil {
		claimKey = idempotencyKey(sess.UserID, key)
		held, claimed, err := s.Idempotency.Claim(ctx, claimKey, ticket.ID.String())
		if err != nil {
			log.Printf("Error claiming idempotency key: %s\n", err.Error())
			claimKey = ""
		} else if !claimed {
			id, err := uuid.Parse(held)
			if err != nil {
				return nil, false, err
			}
			existing, err := s.Get(ctx, sess, id)
			if errors.Is(err, repository.ErrNotFound) {
				// the first request holds the key but has not written the row yet
				return nil, false, fmt.Errorf("%w: request %s is still in progress", repository.ErrConflict, key)
			}
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
	}

	if err := s.Store.Tickets.Create(ctx, ticket); err != nil {
		if claimKey != "" {
			if rerr := s.Idempotency.Release(ctx, claimKey); rerr != nil {
				log.Printf("Error releasing idempotency key: %s\n", rerr.Error())
			}
		}
		return nil, false, err
	}
	publishTicket(ctx, s.Feed, "create", ticket.ID, ticket.HotelID)
	created, err := s.Store.Tickets.Get(ctx, ticket.ID)
	if err != nil {
		return ticket, true, nil
	}
	return created, true, nil
}

// Update applies a partial change. Only differing fields are written and
// the assignment notifier fires at most once, after the write commits.
func (s *TicketService) Update(ctx context.Context, sess *session.Session, id uuid.UUID, patch *types.UpdateTicketRequestBody) (*models.Ticket, error) {
	current, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	in := workflow.Input{Actor: sess, Current: current, Patch: patch, Now: s.now()}
	hotelID := current.HotelID
	if patch.HotelID != nil {
		hotelID = *patch.HotelID
	}
	if patch.AssigneeID.Set && patch.AssigneeID.Value != nil {
		assignee, err := s.Store.Users.Get(ctx, *patch.AssigneeID.Value)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if assignee != nil && !session.FromUser(assignee).BelongsTo(hotelID) {
			return nil, workflow.ErrInvalidAssignee
		}
		in.Assignee = assignee
	}
	if patch.HotelID != nil && *patch.HotelID != current.HotelID && !policy.CanSeeHotel(sess, *patch.HotelID) {
		return nil, repository.ErrForbidden
	}
	plan, err := workflow.Plan(in)
	if err != nil {
		return nil, err
	}
	if plan.Empty() {
		return current, nil
	}
	if plan.Changed(policy.FieldHotel) && plan.Next.AssigneeID != nil {
		if err := s.checkAssigneeHotel(ctx, *plan.Next.AssigneeID, plan.Next.HotelID); err != nil {
			return nil, err
		}
	}
	if plan.Changed(policy.FieldRoom) || plan.Changed(policy.FieldHotel) {
		if err := s.checkRoom(ctx, plan.Next.HotelID, plan.Next.RoomID); err != nil {
			return nil, err
		}
	}

	updated, err := s.Store.Tickets.Update(ctx, id, plan.Updates)
	if err != nil {
		return nil, err
	}
	if plan.AssigneeChanged && s.Notifier != nil {
		s.Notifier.OnAssignmentChanged(plan.PrevAssignee, updated.AssigneeID, updated)
	}
	publishTicket(ctx, s.Feed, "update", updated.ID, updated.HotelID)
	return updated, nil
}

// checkAssigneeHotel rejects moving a ticket to a hotel its assignee is not a member of.
func (s *TicketService) checkAssigneeHotel(ctx context.Context, assigneeID, hotelID uuid.UUID) error {
	assignee, err := s.Store.Users.Get(ctx, assigneeID)
	if errors.Is(err, repository.ErrNotFound) {
		return workflow.ErrInvalidAssignee
	}
	if err != nil {
		return err
	}
	if !session.FromUser(assignee).BelongsTo(hotelID) {
		return workflow.ErrInvalidAssignee
	}
	return nil
}

func (s *TicketService) Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !policy.CanDeleteTicket(sess) {
		return repository.ErrForbidden
	}
	t, err := s.Store.Tickets.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Tickets.Delete(ctx, id); err != nil {
		return err
	}
	if s.Media != nil {
		s.Media.Remove(ctx, append(append([]string{}, t.Attachments...), t.SolutionAttachments...)...)
	}
	publishTicket(ctx, s.Feed, "delete", t.ID, t.HotelID)
	return nil
}

// Attach stores an upload and appends it to the ticket's attachments, or
// to the solution attachments when solution is set.
func (s *TicketService) Attach(ctx context.Context, sess *session.Session, id uuid.UUID, solution bool, up Upload) (*models.Ticket, error) {
	current, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	field := policy.FieldAttachments
	if solution {
		field = policy.FieldSolutionAttachments
	}
	if !policy.EditableFields(sess, current).Has(field) {
		return nil, &workflow.FieldError{Field: field}
	}
	if s.Media == nil {
		return nil, errors.New("media storage is not configured")
	}
	key, err := s.Media.Store(ctx, id, up)
	if err != nil {
		return nil, err
	}
	updated, err := s.Store.Tickets.AppendAttachment(ctx, id, string(field), key)
	if err != nil {
		s.Media.Remove(ctx, key)
		return nil, err
	}
	publishTicket(ctx, s.Feed, "update", updated.ID, updated.HotelID)
	return updated, nil
}

// Present returns a copy safe to send to clients: attachment references
// are exchanged for signed URLs.
func (s *TicketService) Present(ctx context.Context, t *models.Ticket) models.Ticket {
	out := t.Clone()
	if s.Media == nil {
		return out
	}
	out.Attachments = s.Media.Sign(ctx, t.Attachments)
	out.SolutionAttachments = s.Media.Sign(ctx, t.SolutionAttachments)
	return out
}

// Escalate promotes stale assigned NEW tickets. Unassigned ones stay NEW
// because a ticket in progress always has an assignee.
func (s *TicketService) Escalate(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-config.ESCALATION_AGE)
	promoted, unassigned, err := s.Store.Tickets.EscalateStale(ctx, cutoff)
	if err != nil {
		log.Printf("Error escalating stale tickets: %s\n", err.Error())
		return 0, err
	}
	for i := range promoted {
		t := &promoted[i]
		publishTicket(ctx, s.Feed, "update", t.ID, t.HotelID)
		s.notifyEscalated(ctx, t)
	}
	if len(promoted) > 0 || unassigned > 0 {
		log.Printf("Escalation: %d tickets moved to IN_PROGRESS, %d unassigned tickets left NEW\n", len(promoted), unassigned)
	}
	return len(promoted), nil
}

func (s *TicketService) notifyEscalated(ctx context.Context, t *models.Ticket) {
	if t.AssigneeID == nil {
		return
	}
	user, err := s.Store.Users.Get(ctx, *t.AssigneeID)
	if err != nil {
		log.Printf("Error loading assignee of escalated ticket %s: %s\n", t.ID, err.Error())
		return
	}
	n := models.Notification{
		UserID:   user.ID,
		TicketID: t.ID,
		Title:    lib.T(lib.Translator(user.Locale), "escalation_title"),
		Body:     t.Title,
	}
	if err := s.Store.Notifications.Create(ctx, &n); err != nil {
		log.Printf("Error saving escalation notification: %s\n", err.Error())
		return
	}
	publishNotification(ctx, s.Feed, "create", n.ID, user.ID)
}
