package workflow

import (
	"errors"
	"fmt"
	"hotelmaint/src/policy"
	"hotelmaint/src/types"
)

var (
	ErrNotEditable       = errors.New("ticket is not editable by this user")
	ErrFieldNotEditable  = errors.New("field is not editable by this user")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSolutionRequired  = errors.New("a solution is required to complete the ticket")
	ErrAssigneeRequired  = errors.New("an assigned technician is required for this status")
	ErrInvalidAssignee   = errors.New("assignee must be an active technician the user may assign")
	ErrScheduleRequired  = errors.New("a future scheduled date is required")
)

type FieldError struct {
	Field policy.Field
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s is not editable by this user", e.Field)
}

func (e *FieldError) Unwrap() error { return ErrFieldNotEditable }

type TransitionError struct {
	From types.TicketStatus
	To   types.TicketStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move ticket from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type ConfirmReason string

const (
	// ConfirmComplete is asked of technicians before every completion.
	ConfirmComplete ConfirmReason = "complete"
	// ConfirmNoSolution warns an admin that no solution is recorded.
	ConfirmNoSolution ConfirmReason = "no_solution"
)

// ConfirmationRequired is returned when the change is valid but must be
// resubmitted with confirmed=true.
type ConfirmationRequired struct {
	Reason ConfirmReason
}

func (e *ConfirmationRequired) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Reason)
}
