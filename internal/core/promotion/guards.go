package promotion

import (
	"fmt"
	"strings"

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

// AssignContext provides context for assignment guards.
type AssignContext struct {
	EmployeeID            string
	ActivePromotionID     string // empty if the employee has no active promotion
	ActivePromotionStatus Status
	HasDifferences        bool
}

// CanAssign evaluates whether a new promotion can be assigned.
// Rules:
// - Employee must not have another active promotion
// - The target must change something relative to the current level
func CanAssign(ctx AssignContext) GuardResult {
	if ctx.ActivePromotionID != "" {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("employee %s already has active promotion %s (status: %s)",
				ctx.EmployeeID, ctx.ActivePromotionID, ctx.ActivePromotionStatus),
		}
	}

	if !ctx.HasDifferences {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("target requirement for employee %s is identical to the current level", ctx.EmployeeID),
		}
	}

	return GuardResult{Allowed: true}
}

// TransitionContext provides context for lifecycle transition guards.
type TransitionContext struct {
	PromotionID string
	Status      Status
	Action      Action
	ActorID     string
	EmployeeID  string
	ManagerID   string
	Reason      string
	Unmastered  int // records not yet fully mastered, consulted by complete
}

// CanTransition evaluates whether action may be applied.
// Rules:
// - Terminal promotions never change
// - The promotion must be in the action's source status
// - Manager actions are reserved for the promotion's manager
// - Employee actions are reserved for the promoted employee
// - Manager rejection requires a reason; employee rejection does not
// - Completion requires every record to be fully mastered
func CanTransition(ctx TransitionContext) GuardResult {
	if ctx.Status.Terminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("promotion %s is %s and cannot change", ctx.PromotionID, ctx.Status),
		}
	}

	if ctx.Status != ctx.Action.Source() {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("cannot %s promotion %s (current status: %s, requires: %s)",
				ctx.Action, ctx.PromotionID, ctx.Status, ctx.Action.Source()),
		}
	}

	switch ctx.Action {
	case ActionManagerApprove, ActionManagerReject:
		if ctx.ActorID == "" || ctx.ActorID != ctx.ManagerID {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("only manager %s can %s promotion %s", ctx.ManagerID, ctx.Action, ctx.PromotionID),
			}
		}
		if ctx.Action == ActionManagerReject && strings.TrimSpace(ctx.Reason) == "" {
			return GuardResult{
				Allowed: false,
				Reason:  "manager rejection requires a reason",
			}
		}

	case ActionEmployeeApprove, ActionEmployeeReject:
		// Employee rejection intentionally accepts an empty reason.
		if ctx.ActorID == "" || ctx.ActorID != ctx.EmployeeID {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("only employee %s can %s promotion %s", ctx.EmployeeID, ctx.Action, ctx.PromotionID),
			}
		}

	case ActionComplete:
		if ctx.Unmastered > 0 {
			return GuardResult{
				Allowed: false,
				Reason: fmt.Sprintf("cannot complete promotion %s: %d subtask(s) not fully mastered",
					ctx.PromotionID, ctx.Unmastered),
			}
		}
	}

	return GuardResult{Allowed: true}
}
