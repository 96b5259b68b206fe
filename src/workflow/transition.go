// Package workflow validates ticket status transitions and computes the
// minimal set of column writes a mutation needs.
package workflow

import (
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
)

var transitions = map[types.TicketStatus][]types.TicketStatus{
	types.TICKET_NEW:           {types.TICKET_IN_PROGRESS, types.TICKET_SCHEDULED, types.TICKET_CANCELLED},
	types.TICKET_SCHEDULED:     {types.TICKET_IN_PROGRESS, types.TICKET_CANCELLED},
	types.TICKET_IN_PROGRESS:   {types.TICKET_WAITING_PARTS, types.TICKET_COMPLETED, types.TICKET_CANCELLED},
	types.TICKET_WAITING_PARTS: {types.TICKET_IN_PROGRESS, types.TICKET_COMPLETED, types.TICKET_CANCELLED},
	types.TICKET_COMPLETED:     {types.TICKET_IN_PROGRESS},
	types.TICKET_CANCELLED:     {},
}

// CanTransition reports whether role may move a ticket from one status to
// another. Reopening a completed ticket is reserved to admins.
func CanTransition(role types.Role, from, to types.TicketStatus) bool {
	if from == types.TICKET_COMPLETED && role != types.ROLE_ADMIN {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Unassignable statuses are the only ones a ticket may hold without an assignee.
func Unassignable(s types.TicketStatus) bool {
	return s == types.TICKET_NEW || s == types.TICKET_SCHEDULED || s == types.TICKET_CANCELLED
}

// InitialStatus is SCHEDULED when a visit date is given, NEW otherwise.
func InitialStatus(scheduledFor *time.Time, now time.Time) (types.TicketStatus, error) {
	if scheduledFor == nil {
		return types.TICKET_NEW, nil
	}
	if !scheduledFor.After(now) {
		return "", ErrScheduleRequired
	}
	return types.TICKET_SCHEDULED, nil
}

type Input struct {
	Actor   *session.Session
	Current *models.Ticket
	Patch   *types.UpdateTicketRequestBody
	// Assignee is the resolved user for Patch.AssigneeID, when one is given.
	Assignee *models.User
	Now      time.Time
}

type Result struct {
	Updates         map[string]any
	Fields          []policy.Field
	Next            models.Ticket
	PrevAssignee    *uuid.UUID
	AssigneeChanged bool
}

func (r *Result) Empty() bool { return len(r.Updates) == 0 }

func (r *Result) Changed(f policy.Field) bool {
	for _, c := range r.Fields {
		if c == f {
			return true
		}
	}
	return false
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

type planner struct {
	in      Input
	allowed policy.FieldSet
	res     *Result
}

func (p *planner) set(f policy.Field, value any) error {
	if !p.allowed.Has(f) {
		return &FieldError{Field: f}
	}
	p.res.Updates[string(f)] = value
	if !p.res.Changed(f) {
		p.res.Fields = append(p.res.Fields, f)
	}
	return nil
}

// Plan validates a partial update and returns only the writes that differ
// from the stored ticket. Nothing is persisted here.
func Plan(in Input) (*Result, error) {
	actor, cur, patch := in.Actor, in.Current, in.Patch
	if !policy.CanEdit(actor, cur) {
		return nil, ErrNotEditable
	}
	p := &planner{
		in:      in,
		allowed: policy.EditableFields(actor, cur),
		res: &Result{
			Updates:      map[string]any{},
			Next:         cur.Clone(),
			PrevAssignee: cur.AssigneeID,
		},
	}
	next := &p.res.Next

	if patch.Title != nil && *patch.Title != cur.Title {
		if err := p.set(policy.FieldTitle, *patch.Title); err != nil {
			return nil, err
		}
		next.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != cur.Description {
		if err := p.set(policy.FieldDescription, *patch.Description); err != nil {
			return nil, err
		}
		next.Description = *patch.Description
	}
	if patch.Area != nil && *patch.Area != cur.Area {
		if err := p.set(policy.FieldArea, *patch.Area); err != nil {
			return nil, err
		}
		next.Area = *patch.Area
	}
	if patch.Category != nil && *patch.Category != cur.Category {
		if err := p.set(policy.FieldCategory, *patch.Category); err != nil {
			return nil, err
		}
		next.Category = *patch.Category
	}
	if patch.HotelID != nil && *patch.HotelID != cur.HotelID {
		if err := p.set(policy.FieldHotel, *patch.HotelID); err != nil {
			return nil, err
		}
		next.HotelID = *patch.HotelID
		// rooms belong to one hotel
		if !patch.RoomID.Set && next.RoomID != nil {
			p.res.Updates[string(policy.FieldRoom)] = nil
			p.res.Fields = append(p.res.Fields, policy.FieldRoom)
			next.RoomID = nil
		}
	}
	if patch.RoomID.Set && !sameUUID(patch.RoomID.Value, cur.RoomID) {
		if err := p.set(policy.FieldRoom, patch.RoomID.Value); err != nil {
			return nil, err
		}
		next.RoomID = patch.RoomID.Value
	}
	if patch.ScheduledFor != nil && !sameTime(patch.ScheduledFor, cur.ScheduledFor) {
		if err := p.set(policy.FieldScheduledFor, *patch.ScheduledFor); err != nil {
			return nil, err
		}
		v := *patch.ScheduledFor
		next.ScheduledFor = &v
	}
	if patch.Priority != nil && *patch.Priority != cur.Priority {
		if !policy.CanChangePriority(actor) {
			return nil, &FieldError{Field: policy.FieldPriority}
		}
		if err := p.set(policy.FieldPriority, *patch.Priority); err != nil {
			return nil, err
		}
		next.Priority = *patch.Priority
	}
	if patch.Solution != nil {
		var solution *string
		if trimmed := strings.TrimSpace(*patch.Solution); trimmed != "" {
			solution = &trimmed
		}
		if !sameString(solution, cur.Solution) {
			if err := p.set(policy.FieldSolution, solution); err != nil {
				return nil, err
			}
			next.Solution = solution
		}
	}
	if patch.AssigneeID.Set && !sameUUID(patch.AssigneeID.Value, cur.AssigneeID) {
		if err := p.assign(patch.AssigneeID.Value); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && *patch.Status != cur.Status {
		if err := p.transition(*patch.Status); err != nil {
			return nil, err
		}
	} else if next.AssigneeID == nil && !Unassignable(next.Status) {
		return nil, ErrAssigneeRequired
	}
	p.res.AssigneeChanged = !sameUUID(p.res.PrevAssignee, next.AssigneeID)
	return p.res, nil
}

func (p *planner) assign(id *uuid.UUID) error {
	actor := p.in.Actor
	if id == nil {
		if !policy.CanChangeTechnician(actor) {
			return &FieldError{Field: policy.FieldAssignee}
		}
	} else {
		a := p.in.Assignee
		if a == nil || a.ID != *id || !policy.CanAssignTo(actor, a) {
			return ErrInvalidAssignee
		}
	}
	if err := p.set(policy.FieldAssignee, id); err != nil {
		return err
	}
	p.res.Next.AssigneeID = id
	return nil
}

// assignSelf bypasses the assignee lookup: a technician may always take a ticket.
func (p *planner) assignSelf() error {
	id := p.in.Actor.UserID
	if err := p.set(policy.FieldAssignee, &id); err != nil {
		return err
	}
	p.res.Next.AssigneeID = &id
	return nil
}

func (p *planner) transition(to types.TicketStatus) error {
	actor, cur, next := p.in.Actor, p.in.Current, &p.res.Next
	if !p.allowed.Has(policy.FieldStatus) || !policy.CanChangeStatus(actor) {
		return &FieldError{Field: policy.FieldStatus}
	}
	if !CanTransition(actor.Role, cur.Status, to) {
		return &TransitionError{From: cur.Status, To: to}
	}
	isTechnician := actor.Role == types.ROLE_TECHNICIAN

	switch to {
	case types.TICKET_COMPLETED:
		hasSolution := next.Solution != nil && strings.TrimSpace(*next.Solution) != ""
		if isTechnician {
			if !hasSolution {
				return ErrSolutionRequired
			}
			if !p.in.Patch.Confirmed {
				return &ConfirmationRequired{Reason: ConfirmComplete}
			}
		} else if !hasSolution && !p.in.Patch.Confirmed {
			return &ConfirmationRequired{Reason: ConfirmNoSolution}
		}
		closedAt := p.in.Now
		p.res.Updates["closed_at"] = closedAt
		next.ClosedAt = &closedAt
	case types.TICKET_SCHEDULED:
		if next.ScheduledFor == nil || !next.ScheduledFor.After(p.in.Now) {
			return ErrScheduleRequired
		}
	}
	if cur.Status == types.TICKET_COMPLETED {
		p.res.Updates["closed_at"] = nil
		next.ClosedAt = nil
	}

	if !Unassignable(to) {
		takeOver := next.AssigneeID == nil || (to == types.TICKET_COMPLETED && !next.IsAssignedTo(actor.UserID))
		switch {
		case isTechnician && takeOver:
			if err := p.assignSelf(); err != nil {
				return err
			}
		case next.AssigneeID == nil:
			return ErrAssigneeRequired
		}
	}
	if err := p.set(policy.FieldStatus, to); err != nil {
		return err
	}
	next.Status = to
	return nil
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
