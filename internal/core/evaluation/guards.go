package evaluation

import (
	"fmt"

	"github.com/example/ladder/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Invariant("%s", r.Reason)
}

// RecordEvaluationContext provides context for evaluation write guards.
type RecordEvaluationContext struct {
	PromotionID       string
	PromotionStatus   string
	PromotionOpen     bool // assigned or in_progress
	EmployeeID        string
	SubtaskID         string
	ActorID           string
	Role              Role
	AssignedMentor    string // empty if the mentor track is unclaimed
	AssignedEvaluator string // empty if the evaluator track is unclaimed
	OtherTrackOwner   string // owner of the opposite track on this subtask
}

// CanRecordEvaluation evaluates whether actor may write role's status.
// Rules:
// - Actor must be known
// - Promotion must be accepted and not yet closed
// - The promoted employee never evaluates their own subtasks
// - A claimed track may only be written by its owner
// - One actor never holds both tracks of a subtask
func CanRecordEvaluation(ctx RecordEvaluationContext) GuardResult {
	if ctx.ActorID == "" {
		return GuardResult{Allowed: false, Reason: "evaluations require an actor"}
	}

	if !ctx.PromotionOpen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("promotion %s is not open for evaluation (status: %s)", ctx.PromotionID, ctx.PromotionStatus),
		}
	}

	if ctx.ActorID == ctx.EmployeeID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("employee %s cannot evaluate their own promotion", ctx.EmployeeID),
		}
	}

	owner := ctx.AssignedMentor
	if ctx.Role == RoleEvaluator {
		owner = ctx.AssignedEvaluator
	}
	if owner != "" && owner != ctx.ActorID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s track of subtask %s belongs to %s", ctx.Role, ctx.SubtaskID, owner),
		}
	}

	if ctx.OtherTrackOwner != "" && ctx.OtherTrackOwner == ctx.ActorID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s already holds the %s track of subtask %s", ctx.ActorID, ctx.Role.Other(), ctx.SubtaskID),
		}
	}

	return GuardResult{Allowed: true}
}
