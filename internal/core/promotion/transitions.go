package promotion

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/ladder/internal/core/effects"
)

// Event types carried by notification effects.
const (
	EventManagerApproved  = "manager_approved"
	EventManagerRejected  = "manager_rejected"
	EventEmployeeRejected = "employee_rejected"
	EventCompleted        = "completed"
)

// Promotion is one promotion attempt for one employee.
type Promotion struct {
	ID               string
	EmployeeID       string
	ManagerID        string
	TargetJobTitleID string
	TargetGradeID    string
	RequirementID    string
	Status           Status
	AssignedBy       string
	AssignedAt       time.Time

	ApprovedBy string
	ApprovedAt *time.Time

	EmployeeApprovedBy string
	EmployeeApprovedAt *time.Time

	RejectedBy      string
	RejectedAt      *time.Time
	RejectionReason string

	EmployeeRejectedBy      string
	EmployeeRejectedAt      *time.Time
	EmployeeRejectionReason string

	StartedAt   *time.Time
	CompletedAt *time.Time
}

// TransitionResult contains the new promotion state plus the side effects the
// shell must run once the state is persisted.
type TransitionResult struct {
	Promotion Promotion
	Effects   []effects.Effect
}

// ApplyTransition applies an already-guarded action. It stamps the role's
// audit fields and emits notification and certificate effects.
// The caller passes the current time to enable testing.
func ApplyTransition(p Promotion, action Action, actorID, reason string, now time.Time) TransitionResult {
	p.Status = action.Target()
	reason = strings.TrimSpace(reason)
	target := fmt.Sprintf("%s/%s", p.TargetJobTitleID, p.TargetGradeID)

	var effs []effects.Effect
	switch action {
	case ActionManagerApprove:
		p.ApprovedBy = actorID
		p.ApprovedAt = &now
		effs = append(effs, effects.NotifyEffect{
			RecipientID: p.EmployeeID,
			EventType:   EventManagerApproved,
			PromotionID: p.ID,
			Message:     fmt.Sprintf("Your promotion to %s was approved by %s and is waiting for your acceptance.", target, actorID),
		})

	case ActionManagerReject:
		p.RejectedBy = actorID
		p.RejectedAt = &now
		p.RejectionReason = reason
		effs = append(effs, effects.NotifyEffect{
			RecipientID: p.EmployeeID,
			EventType:   EventManagerRejected,
			PromotionID: p.ID,
			Message:     fmt.Sprintf("Your promotion to %s was rejected by %s: %s", target, actorID, reason),
		})

	case ActionEmployeeApprove:
		p.EmployeeApprovedBy = actorID
		p.EmployeeApprovedAt = &now

	case ActionEmployeeReject:
		p.EmployeeRejectedBy = actorID
		p.EmployeeRejectedAt = &now
		p.EmployeeRejectionReason = reason
		msg := fmt.Sprintf("%s declined promotion %s to %s.", p.EmployeeID, p.ID, target)
		if reason != "" {
			msg = fmt.Sprintf("%s declined promotion %s to %s: %s", p.EmployeeID, p.ID, target, reason)
		}
		effs = append(effs, effects.NotifyEffect{
			RecipientID: p.ManagerID,
			EventType:   EventEmployeeRejected,
			PromotionID: p.ID,
			Message:     msg,
		})

	case ActionStart:
		p.StartedAt = &now

	case ActionComplete:
		p.CompletedAt = &now
		effs = append(effs,
			effects.NotifyEffect{
				RecipientID: p.EmployeeID,
				EventType:   EventCompleted,
				PromotionID: p.ID,
				Message:     fmt.Sprintf("Congratulations! You completed every requirement for %s.", target),
			},
			effects.CertificateEffect{
				PromotionID: p.ID,
				EmployeeID:  p.EmployeeID,
				JobTitleID:  p.TargetJobTitleID,
				GradeID:     p.TargetGradeID,
			},
		)
		if p.ManagerID != "" && p.ManagerID != p.EmployeeID {
			effs = append(effs, effects.NotifyEffect{
				RecipientID: p.ManagerID,
				EventType:   EventCompleted,
				PromotionID: p.ID,
				Message:     fmt.Sprintf("%s completed promotion %s to %s.", p.EmployeeID, p.ID, target),
			})
		}
	}

	effs = append(effs, effects.LogEffect{
		Level:   "info",
		Message: fmt.Sprintf("promotion %s: %s -> %s", p.ID, action.Source(), p.Status),
		Fields:  map[string]any{"actor": actorID, "action": string(action)},
	})

	return TransitionResult{Promotion: p, Effects: effs}
}

// DerivedActions returns the automatic transitions implied by progress, in
// the order they must be applied.
//   - leftNotStarted: a write just moved some record's track off not_started
//   - unmastered: number of records not yet fully mastered
//
// An assigned promotion starts once any record leaves not_started, or
// immediately when nothing is left to master. An in-progress promotion with
// nothing left to master completes.
func DerivedActions(status Status, leftNotStarted bool, unmastered int) []Action {
	var actions []Action
	if status == StatusAssigned && (leftNotStarted || unmastered == 0) {
		actions = append(actions, ActionStart)
		status = StatusInProgress
	}
	if status == StatusInProgress && unmastered == 0 {
		actions = append(actions, ActionComplete)
	}
	return actions
}
