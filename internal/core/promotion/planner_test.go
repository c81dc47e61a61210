package promotion

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/requirement"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("H-%d", n)
	}
}

func TestPlanAssignment_CarriesForwardMasteredSubtasks(t *testing.T) {
	current := requirement.Matrix{
		ID: "REQ-001", SectionID: "SEC-1", JobTitleID: "JT-1", GradeID: "G1",
		Tasks: []requirement.RequiredTask{{TaskID: "T1", SubtaskIDs: []string{"A", "B"}}},
	}
	target := requirement.Matrix{
		ID: "REQ-002", SectionID: "SEC-1", JobTitleID: "JT-1", GradeID: "G2",
		Tasks: []requirement.RequiredTask{{TaskID: "T1", SubtaskIDs: []string{"A", "B", "C"}}},
	}
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	plan := PlanAssignment(AssignmentInput{
		PromotionID: "PROMO-001",
		EmployeeID:  "EMP-001",
		ManagerID:   "MGR-001",
		AssignedBy:  "HR-001",
		Current:     &current,
		Target:      target,
		Mastered:    map[string]bool{"A": true, "B": true},
		Now:         now,
		NewID:       sequentialIDs(),
	})

	p := plan.Promotion
	if p.Status != StatusPendingApproval {
		t.Errorf("Status = %q, want pending_approval", p.Status)
	}
	if p.RequirementID != "REQ-002" || p.TargetJobTitleID != "JT-1" || p.TargetGradeID != "G2" {
		t.Errorf("target not frozen on promotion: %+v", p)
	}
	if len(plan.Records) != 3 {
		t.Fatalf("Records = %d, want 3", len(plan.Records))
	}

	bySubtask := map[string]evaluation.Record{}
	for _, r := range plan.Records {
		bySubtask[r.SubtaskID] = r
		if r.PromotionID != "PROMO-001" || r.EmployeeID != "EMP-001" || r.TaskID != "T1" {
			t.Errorf("record keys wrong: %+v", r)
		}
	}
	for _, s := range []string{"A", "B"} {
		r := bySubtask[s]
		if !r.FullyMastered() || len(r.History) != 1 || r.History[0].Feedback != evaluation.CarriedForwardFeedback {
			t.Errorf("%s should be carried forward: %+v", s, r)
		}
	}
	c := bySubtask["C"]
	if c.MentorStatus != evaluation.StatusNotStarted || c.EvaluatorStatus != evaluation.StatusNotStarted || len(c.History) != 0 {
		t.Errorf("C should start fresh: %+v", c)
	}

	if got := plan.Diff.NewSubtasks(); len(got) != 1 || got[0] != "C" {
		t.Errorf("Diff.NewSubtasks() = %v, want [C]", got)
	}
	if len(plan.CarriedForward) != 2 {
		t.Errorf("CarriedForward = %v", plan.CarriedForward)
	}

	// The promotion cannot complete until C is fully mastered on both tracks.
	unmastered := 0
	for _, r := range plan.Records {
		if !r.FullyMastered() {
			unmastered++
		}
	}
	if got := DerivedActions(StatusInProgress, true, unmastered); len(got) != 0 {
		t.Errorf("promotion must not complete with C outstanding, got %v", got)
	}
}

func TestPlanAssignment_NoMasteryStartsEverythingFresh(t *testing.T) {
	target := requirement.Matrix{
		ID: "REQ-009", SectionID: "SEC-1", JobTitleID: "JT-2", GradeID: "G1",
		Tasks: []requirement.RequiredTask{
			{TaskID: "T1", SubtaskIDs: []string{"A"}},
			{TaskID: "T2", SubtaskIDs: []string{"X", "Y"}},
		},
	}

	plan := PlanAssignment(AssignmentInput{
		PromotionID: "PROMO-002",
		EmployeeID:  "EMP-002",
		Target:      target,
		Now:         time.Now(),
		NewID:       sequentialIDs(),
	})

	if len(plan.Records) != target.SubtaskCount() {
		t.Fatalf("Records = %d, want %d", len(plan.Records), target.SubtaskCount())
	}
	for _, r := range plan.Records {
		if r.FullyMastered() || len(r.History) != 0 {
			t.Errorf("record %s should be fresh", r.SubtaskID)
		}
	}
	if len(plan.Diff.NewTasks) != 2 {
		t.Errorf("nil current should make every task new, got %v", plan.Diff.NewTasks)
	}
}
