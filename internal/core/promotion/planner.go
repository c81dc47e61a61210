package promotion

import (
	"fmt"
	"time"

	"github.com/example/ladder/internal/core/effects"
	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/requirement"
)

// AssignmentInput contains everything needed to plan a new promotion.
// All values are pre-fetched by the caller - no I/O in the planner.
type AssignmentInput struct {
	PromotionID string
	EmployeeID  string
	ManagerID   string
	AssignedBy  string
	Current     *requirement.Matrix // nil if no requirement exists for the current level
	Target      requirement.Matrix
	Mastered    map[string]bool // subtasks already mastered, see mastery.Resolve
	Now         time.Time
	NewID       func() string // history entry IDs
}

// AssignmentPlan is the promotion plus the fixed set of progress records
// minted for it.
type AssignmentPlan struct {
	Promotion      Promotion
	Records        []evaluation.Record
	Diff           requirement.DiffResult
	CarriedForward []string
	Effects        []effects.Effect
}

// PlanAssignment builds the promotion in its initial status together with one
// progress record per required subtask of the target. Subtasks in the
// mastered set start fully mastered with a synthetic carried-forward entry.
// This is the only place progress records are created.
func PlanAssignment(in AssignmentInput) AssignmentPlan {
	plan := AssignmentPlan{
		Promotion: Promotion{
			ID:               in.PromotionID,
			EmployeeID:       in.EmployeeID,
			ManagerID:        in.ManagerID,
			TargetJobTitleID: in.Target.JobTitleID,
			TargetGradeID:    in.Target.GradeID,
			RequirementID:    in.Target.ID,
			Status:           InitialStatus(),
			AssignedBy:       in.AssignedBy,
			AssignedAt:       in.Now,
		},
		Diff: requirement.Diff(in.Current, in.Target),
	}

	for _, t := range in.Target.Tasks {
		for _, s := range t.SubtaskIDs {
			if in.Mastered[s] {
				plan.Records = append(plan.Records,
					evaluation.CarriedForwardRecord(in.PromotionID, in.EmployeeID, t.TaskID, s, in.NewID(), in.Now))
				plan.CarriedForward = append(plan.CarriedForward, s)
				continue
			}
			plan.Records = append(plan.Records, evaluation.NewRecord(in.PromotionID, in.EmployeeID, t.TaskID, s))
		}
	}

	plan.Effects = append(plan.Effects, effects.LogEffect{
		Level: "info",
		Message: fmt.Sprintf("promotion %s assigned to %s: %d subtask(s), %d carried forward",
			in.PromotionID, in.EmployeeID, len(plan.Records), len(plan.CarriedForward)),
		Fields: map[string]any{"actor": in.AssignedBy, "requirement": in.Target.ID},
	})

	return plan
}
