package workflow

import (
	"errors"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hotel = uuid.New()
	now   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func newTicket(creator uuid.UUID) *models.Ticket {
	return &models.Ticket{
		ID:        uuid.New(),
		HotelID:   hotel,
		CreatorID: creator,
		Title:     "Leaking tap",
		Area:      "Bathroom",
		Category:  types.CATEGORY_PLUMBING,
		Priority:  types.PRIORITY_MEDIUM,
		Status:    types.TICKET_NEW,
	}
}

func as(role types.Role) *session.Session {
	return &session.Session{UserID: uuid.New(), Role: role, HotelIDs: []uuid.UUID{hotel}}
}

func techUser(s *session.Session) *models.User {
	return &models.User{ID: s.UserID, Role: types.ROLE_TECHNICIAN, Active: true}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(types.ROLE_TECHNICIAN, types.TICKET_NEW, types.TICKET_IN_PROGRESS))
	assert.True(t, CanTransition(types.ROLE_ADMIN, types.TICKET_WAITING_PARTS, types.TICKET_COMPLETED))
	assert.True(t, CanTransition(types.ROLE_ADMIN, types.TICKET_COMPLETED, types.TICKET_IN_PROGRESS))
	assert.False(t, CanTransition(types.ROLE_TECHNICIAN, types.TICKET_COMPLETED, types.TICKET_IN_PROGRESS))
	assert.False(t, CanTransition(types.ROLE_ADMIN, types.TICKET_CANCELLED, types.TICKET_NEW))
	assert.False(t, CanTransition(types.ROLE_ADMIN, types.TICKET_NEW, types.TICKET_COMPLETED))
}

func TestInitialStatus(t *testing.T) {
	s, err := InitialStatus(nil, now)
	require.NoError(t, err)
	assert.Equal(t, types.TICKET_NEW, s)

	s, err = InitialStatus(ptr(now.Add(24*time.Hour)), now)
	require.NoError(t, err)
	assert.Equal(t, types.TICKET_SCHEDULED, s)

	_, err = InitialStatus(ptr(now.Add(-time.Hour)), now)
	assert.ErrorIs(t, err, ErrScheduleRequired)
}

func TestPlanOnlyWritesChangedFields(t *testing.T) {
	rec := as(types.ROLE_RECEPTION)
	tk := newTicket(rec.UserID)

	res, err := Plan(Input{Actor: rec, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Title:    ptr("Leaking tap"),
		Priority: ptr(types.PRIORITY_URGENT),
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"priority": types.PRIORITY_URGENT}, res.Updates)
	assert.Equal(t, []policy.Field{policy.FieldPriority}, res.Fields)
	assert.False(t, res.AssigneeChanged)

	res, err = Plan(Input{Actor: rec, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{}})
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestPlanFieldPermissions(t *testing.T) {
	rec := as(types.ROLE_RECEPTION)
	tech := as(types.ROLE_TECHNICIAN)
	tk := newTicket(rec.UserID)

	t.Run("reception cannot touch status", func(t *testing.T) {
		_, err := Plan(Input{Actor: rec, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_IN_PROGRESS),
		}})
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, policy.FieldStatus, fe.Field)
		assert.ErrorIs(t, err, ErrFieldNotEditable)
	})
	t.Run("technician cannot change priority", func(t *testing.T) {
		_, err := Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Priority: ptr(types.PRIORITY_LOW),
		}})
		assert.ErrorIs(t, err, ErrFieldNotEditable)
	})
	t.Run("reception cannot edit someone else's ticket", func(t *testing.T) {
		other := newTicket(uuid.New())
		_, err := Plan(Input{Actor: rec, Current: other, Now: now, Patch: &types.UpdateTicketRequestBody{
			Title: ptr("x"),
		}})
		assert.ErrorIs(t, err, ErrNotEditable)
	})
	t.Run("technician may only assign themselves", func(t *testing.T) {
		other := as(types.ROLE_TECHNICIAN)
		_, err := Plan(Input{Actor: tech, Current: tk, Now: now, Assignee: techUser(other), Patch: &types.UpdateTicketRequestBody{
			AssigneeID: types.OptionalUUID{Set: true, Value: ptr(other.UserID)},
		}})
		assert.ErrorIs(t, err, ErrInvalidAssignee)

		res, err := Plan(Input{Actor: tech, Current: tk, Now: now, Assignee: techUser(tech), Patch: &types.UpdateTicketRequestBody{
			AssigneeID: types.OptionalUUID{Set: true, Value: ptr(tech.UserID)},
		}})
		require.NoError(t, err)
		assert.True(t, res.AssigneeChanged)
		assert.True(t, res.Next.IsAssignedTo(tech.UserID))
	})
}

func TestPlanTechnicianCompletion(t *testing.T) {
	tech := as(types.ROLE_TECHNICIAN)
	tk := newTicket(uuid.New())
	tk.Status = types.TICKET_IN_PROGRESS
	tk.AssigneeID = ptr(uuid.New())

	_, err := Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status: ptr(types.TICKET_COMPLETED),
	}})
	assert.ErrorIs(t, err, ErrSolutionRequired)

	_, err = Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status:   ptr(types.TICKET_COMPLETED),
		Solution: ptr("   "),
	}})
	assert.ErrorIs(t, err, ErrSolutionRequired)

	_, err = Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status:   ptr(types.TICKET_COMPLETED),
		Solution: ptr("Replaced the washer"),
	}})
	var confirm *ConfirmationRequired
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, ConfirmComplete, confirm.Reason)

	res, err := Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status:    ptr(types.TICKET_COMPLETED),
		Solution:  ptr("Replaced the washer"),
		Confirmed: true,
	}})
	require.NoError(t, err)
	assert.Equal(t, types.TICKET_COMPLETED, res.Updates["status"])
	assert.Equal(t, now, res.Updates["closed_at"])
	assert.Equal(t, ptr(tech.UserID), res.Updates["assignee_id"])
	assert.True(t, res.AssigneeChanged)
	assert.Equal(t, tk.AssigneeID, res.PrevAssignee)
}

func TestPlanAdminCompletionWithoutSolution(t *testing.T) {
	adm := as(types.ROLE_ADMIN)
	tk := newTicket(uuid.New())
	tk.Status = types.TICKET_WAITING_PARTS
	tk.AssigneeID = ptr(uuid.New())

	_, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status: ptr(types.TICKET_COMPLETED),
	}})
	var confirm *ConfirmationRequired
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, ConfirmNoSolution, confirm.Reason)

	res, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
		Status:    ptr(types.TICKET_COMPLETED),
		Confirmed: true,
	}})
	require.NoError(t, err)
	assert.NotContains(t, res.Updates, "assignee_id")
	assert.False(t, res.AssigneeChanged)
}

func TestPlanAssigneeInvariant(t *testing.T) {
	adm := as(types.ROLE_ADMIN)
	tech := as(types.ROLE_TECHNICIAN)
	tk := newTicket(uuid.New())

	t.Run("admin must assign before starting", func(t *testing.T) {
		_, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_IN_PROGRESS),
		}})
		assert.ErrorIs(t, err, ErrAssigneeRequired)
	})
	t.Run("technician starting takes the ticket", func(t *testing.T) {
		res, err := Plan(Input{Actor: tech, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_IN_PROGRESS),
		}})
		require.NoError(t, err)
		assert.True(t, res.Next.IsAssignedTo(tech.UserID))
		assert.True(t, res.AssigneeChanged)
	})
	t.Run("cannot unassign an active ticket", func(t *testing.T) {
		active := newTicket(uuid.New())
		active.Status = types.TICKET_IN_PROGRESS
		active.AssigneeID = ptr(tech.UserID)
		_, err := Plan(Input{Actor: adm, Current: active, Now: now, Patch: &types.UpdateTicketRequestBody{
			AssigneeID: types.OptionalUUID{Set: true},
		}})
		assert.ErrorIs(t, err, ErrAssigneeRequired)
	})
	t.Run("cancel without assignee", func(t *testing.T) {
		res, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_CANCELLED),
		}})
		require.NoError(t, err)
		assert.Equal(t, types.TICKET_CANCELLED, res.Next.Status)
	})
}

func TestPlanTransitions(t *testing.T) {
	adm := as(types.ROLE_ADMIN)

	t.Run("invalid transition", func(t *testing.T) {
		tk := newTicket(uuid.New())
		tk.Status = types.TICKET_CANCELLED
		_, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_IN_PROGRESS),
		}})
		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, types.TICKET_CANCELLED, te.From)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
	t.Run("schedule needs a future date", func(t *testing.T) {
		tk := newTicket(uuid.New())
		_, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_SCHEDULED),
		}})
		assert.ErrorIs(t, err, ErrScheduleRequired)

		res, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status:       ptr(types.TICKET_SCHEDULED),
			ScheduledFor: ptr(now.Add(48 * time.Hour)),
		}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []policy.Field{policy.FieldStatus, policy.FieldScheduledFor}, res.Fields)
	})
	t.Run("reopen clears closed_at", func(t *testing.T) {
		tk := newTicket(uuid.New())
		tk.Status = types.TICKET_COMPLETED
		tk.AssigneeID = ptr(uuid.New())
		tk.ClosedAt = ptr(now.Add(-time.Hour))
		res, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			Status: ptr(types.TICKET_IN_PROGRESS),
		}})
		require.NoError(t, err)
		assert.Contains(t, res.Updates, "closed_at")
		assert.Nil(t, res.Updates["closed_at"])
		assert.Nil(t, res.Next.ClosedAt)
	})
	t.Run("hotel move drops the room", func(t *testing.T) {
		tk := newTicket(uuid.New())
		tk.RoomID = ptr(uuid.New())
		res, err := Plan(Input{Actor: adm, Current: tk, Now: now, Patch: &types.UpdateTicketRequestBody{
			HotelID: ptr(uuid.New()),
		}})
		require.NoError(t, err)
		assert.Nil(t, res.Next.RoomID)
		assert.Contains(t, res.Updates, "room_id")
	})
}
