// Package promotion contains the pure business logic for the promotion
// lifecycle. This is part of the Functional Core - no I/O, only pure functions.
//
// Lifecycle:
//
//	pending_approval --manager_approve--> pending_employee_approval --employee_approve--> assigned
//	assigned --start--> in_progress --complete--> completed
//	pending_approval --manager_reject--> rejected
//	pending_employee_approval --employee_reject--> rejected
//
// rejected and completed are absorbing.
package promotion

import (
	"strings"

	"github.com/example/ladder/internal/apperr"
)

// Status represents the possible states of a promotion.
type Status string

const (
	StatusPendingApproval         Status = "pending_approval"
	StatusPendingEmployeeApproval Status = "pending_employee_approval"
	StatusAssigned                Status = "assigned"
	StatusInProgress              Status = "in_progress"
	StatusCompleted               Status = "completed"
	StatusRejected                Status = "rejected"
)

// ActiveStatuses lists the statuses that block a new assignment.
var ActiveStatuses = []Status{
	StatusPendingApproval,
	StatusPendingEmployeeApproval,
	StatusAssigned,
	StatusInProgress,
}

// Active reports whether the promotion still blocks a new assignment.
func (s Status) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition accepts s as a source.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// OpenForEvaluation reports whether mentors and evaluators may record results.
func (s Status) OpenForEvaluation() bool {
	return s == StatusAssigned || s == StatusInProgress
}

// InitialStatus returns the status of a freshly assigned promotion.
func InitialStatus() Status {
	return StatusPendingApproval
}

// ParseStatus validates a status filter value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	switch s {
	case StatusPendingApproval, StatusPendingEmployeeApproval, StatusAssigned,
		StatusInProgress, StatusCompleted, StatusRejected:
		return s, nil
	}
	return "", apperr.Validation("unknown promotion status %q", raw)
}

// Action names a lifecycle transition.
type Action string

const (
	ActionManagerApprove  Action = "manager_approve"
	ActionManagerReject   Action = "manager_reject"
	ActionEmployeeApprove Action = "employee_approve"
	ActionEmployeeReject  Action = "employee_reject"
	ActionStart           Action = "start"
	ActionComplete        Action = "complete"
)

type edge struct {
	from Status
	to   Status
}

var transitions = map[Action]edge{
	ActionManagerApprove:  {StatusPendingApproval, StatusPendingEmployeeApproval},
	ActionManagerReject:   {StatusPendingApproval, StatusRejected},
	ActionEmployeeApprove: {StatusPendingEmployeeApproval, StatusAssigned},
	ActionEmployeeReject:  {StatusPendingEmployeeApproval, StatusRejected},
	ActionStart:           {StatusAssigned, StatusInProgress},
	ActionComplete:        {StatusInProgress, StatusCompleted},
}

// ParseAction validates an action name. Hyphens are accepted for underscores.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if _, ok := transitions[a]; !ok {
		return "", apperr.Validation("unknown promotion action %q", raw)
	}
	return a, nil
}

// Derived reports whether the action is fired by the engine rather than a person.
func (a Action) Derived() bool {
	return a == ActionStart || a == ActionComplete
}

// Source returns the only status the action may be applied to.
func (a Action) Source() Status {
	return transitions[a].from
}

// Target returns the status the action leads to.
func (a Action) Target() Status {
	return transitions[a].to
}
