// Package evaluation contains the pure business logic for per-subtask
// evaluation progress. Mentor and evaluator each drive their own status;
// a subtask is fully mastered only when both reach MASTER.
package evaluation

import (
	"strings"

	"github.com/example/ladder/internal/apperr"
)

// Status is the evaluation state recorded by one role for one subtask.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusAttempt1   Status = "attempt_1"
	StatusAttempt2   Status = "attempt_2"
	StatusMaster     Status = "master"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusAttempt1, StatusAttempt2, StatusMaster}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Mastered reports whether s is the positive terminal status.
func (s Status) Mastered() bool {
	return s == StatusMaster
}

// ParseStatus accepts "master", "MASTER", "attempt-1" and similar spellings.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if !s.Valid() {
		return "", apperr.Validation("unknown evaluation status %q (want one of not_started, attempt_1, attempt_2, master)", raw)
	}
	return s, nil
}

// Role identifies which track an evaluation belongs to.
type Role string

const (
	RoleMentor    Role = "mentor"
	RoleEvaluator Role = "evaluator"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if r != RoleMentor && r != RoleEvaluator {
		return "", apperr.Validation("unknown evaluator role %q (want mentor or evaluator)", raw)
	}
	return r, nil
}

// Other returns the opposite track.
func (r Role) Other() Role {
	if r == RoleMentor {
		return RoleEvaluator
	}
	return RoleMentor
}
