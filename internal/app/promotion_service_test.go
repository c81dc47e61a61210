package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

func primaryAssignG2() primary.AssignPromotionRequest {
	return primary.AssignPromotionRequest{
		EmployeeID:       "EMP-001",
		TargetJobTitleID: "JT-TECH",
		TargetGradeID:    "G2",
	}
}

func TestPreviewAssignment(t *testing.T) {
	env := newTestEnv(t)

	preview, err := env.promotion.PreviewAssignment(context.Background(), primaryAssignG2())

	require.NoError(t, err)
	assert.Equal(t, "REQ-001", preview.CurrentRequirementID)
	assert.Equal(t, "REQ-002", preview.TargetRequirementID)
	assert.Equal(t, []string{"TASK-Y"}, preview.NewTasks)
	assert.Equal(t, []string{"SUB-C"}, preview.NewSubtasks)
	assert.Equal(t, []string{"SUB-A", "SUB-B"}, preview.CarriedForward)
	assert.Equal(t, 3, preview.TotalSubtasks)
	assert.True(t, preview.HasDifferences)
	assert.Empty(t, preview.ActivePromotionID)
	assert.Empty(t, env.promotions.promotions, "preview must not write")
}

func TestPreviewAssignment_ReportsActivePromotion(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	preview, err := env.promotion.PreviewAssignment(context.Background(), primaryAssignG2())

	require.NoError(t, err)
	assert.Equal(t, id, preview.ActivePromotionID)
}

func TestAssignPromotion_CarriesForwardCurrentLevel(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), primaryAssignG2())

	require.NoError(t, err)
	assert.Equal(t, "PROM-001", resp.PromotionID)
	assert.Equal(t, 3, resp.TotalSubtasks)
	assert.Equal(t, []string{"SUB-A", "SUB-B"}, resp.CarriedForward)
	assert.Equal(t, "pending_approval", resp.Promotion.Status)
	assert.Equal(t, "MGR-001", resp.Promotion.ManagerID)
	assert.Equal(t, "MGR-001", resp.Promotion.AssignedBy)
	assert.Equal(t, "REQ-002", resp.Promotion.RequirementID)
	assert.Equal(t, 1, env.tx.calls)

	records := env.progress.records["PROM-001"]
	require.Len(t, records, 3)
	for _, r := range records[:2] {
		assert.Equal(t, "master", r.MentorStatus, r.SubtaskID)
		assert.Equal(t, "master", r.EvaluatorStatus, r.SubtaskID)
		require.Len(t, r.History, 1)
		assert.Equal(t, evaluation.CarriedForwardFeedback, r.History[0].Feedback)
		assert.Empty(t, r.History[0].EvaluatorID)
	}
	assert.Equal(t, "SUB-C", records[2].SubtaskID)
	assert.Equal(t, "TASK-Y", records[2].TaskID)
	assert.Equal(t, "not_started", records[2].MentorStatus)
	assert.Equal(t, "not_started", records[2].EvaluatorStatus)
	assert.Empty(t, records[2].History)
}

func TestAssignPromotion_ManagerFallsBackToAssigner(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), primary.AssignPromotionRequest{
		EmployeeID:       "EMP-002",
		TargetJobTitleID: "JT-TECH",
		TargetGradeID:    "G2",
	})

	require.NoError(t, err)
	assert.Equal(t, "MGR-001", resp.Promotion.ManagerID)
}

func TestAssignPromotion_ExplicitManagerWins(t *testing.T) {
	env := newTestEnv(t)
	req := primaryAssignG2()
	req.ManagerID = "MGR-900"

	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), req)

	require.NoError(t, err)
	assert.Equal(t, "MGR-900", resp.Promotion.ManagerID)
}

func TestAssignPromotion_Refusals(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		req     primary.AssignPromotionRequest
		wantErr error
	}{
		{
			name:    "no actor",
			ctx:     context.Background(),
			req:     primaryAssignG2(),
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing employee ID",
			ctx:     asActor("MGR-001"),
			req:     primary.AssignPromotionRequest{TargetJobTitleID: "JT-TECH", TargetGradeID: "G2"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing target grade",
			ctx:     asActor("MGR-001"),
			req:     primary.AssignPromotionRequest{EmployeeID: "EMP-001", TargetJobTitleID: "JT-TECH"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown employee",
			ctx:     asActor("MGR-001"),
			req:     primary.AssignPromotionRequest{EmployeeID: "EMP-404", TargetJobTitleID: "JT-TECH", TargetGradeID: "G2"},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "no matrix for target",
			ctx:     asActor("MGR-001"),
			req:     primary.AssignPromotionRequest{EmployeeID: "EMP-001", TargetJobTitleID: "JT-TECH", TargetGradeID: "G9"},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "target identical to current level",
			ctx:     asActor("MGR-001"),
			req:     primary.AssignPromotionRequest{EmployeeID: "EMP-001", TargetJobTitleID: "JT-TECH", TargetGradeID: "G1"},
			wantErr: apperr.ErrInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.promotion.AssignPromotion(tt.ctx, tt.req)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, env.promotions.promotions)
			assert.Empty(t, env.progress.records)
		})
	}
}

func TestAssignPromotion_SecondActiveRefused(t *testing.T) {
	env := newTestEnv(t)
	first := env.assignToG2(t)

	_, err := env.promotion.AssignPromotion(asActor("MGR-001"), primaryAssignG2())

	require.ErrorIs(t, err, apperr.ErrInvariant)
	assert.Contains(t, err.Error(), first)
	assert.Len(t, env.promotions.promotions, 1)
}

func TestManagerReject_UnblocksReassignment(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	rejected, err := env.promotion.RejectPromotion(asActor("MGR-001"), id, "not this quarter")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "MGR-001", rejected.RejectedBy)
	assert.Equal(t, "not this quarter", rejected.RejectionReason)
	assert.Equal(t, testNow.Format("2006-01-02T15:04:05Z07:00"), rejected.RejectedAt)
	assert.Equal(t, []string{"EMP-001"}, env.notifications.byEvent("manager_rejected"))

	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), primaryAssignG2())
	require.NoError(t, err)
	assert.Equal(t, "PROM-002", resp.PromotionID)
	assert.Equal(t, "pending_approval", resp.Promotion.Status)
}

func TestManagerReject_RequiresReason(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	_, err := env.promotion.RejectPromotion(asActor("MGR-001"), id, "   ")

	require.ErrorIs(t, err, apperr.ErrInvariant)
	p, err := env.promotion.GetPromotion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pending_approval", p.Status)
	assert.Empty(t, env.notifications.notifications)
}

func TestEmployeeDecline_WithoutReason(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)
	_, err := env.promotion.ApprovePromotion(asActor("MGR-001"), id)
	require.NoError(t, err)

	declined, err := env.promotion.DeclinePromotion(asActor("EMP-001"), id, "")

	require.NoError(t, err)
	assert.Equal(t, "rejected", declined.Status)
	assert.Equal(t, "EMP-001", declined.EmployeeRejectedBy)
	assert.Empty(t, declined.EmployeeRejectionReason)
	assert.Equal(t, "MGR-001", declined.ApprovedBy)
	assert.Equal(t, []string{"EMP-001"}, env.notifications.byEvent("manager_approved"))
	assert.Equal(t, []string{"MGR-001"}, env.notifications.byEvent("employee_rejected"))
}

func TestTransitionPromotion_Refusals(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	t.Run("employee cannot give manager approval", func(t *testing.T) {
		_, err := env.promotion.ApprovePromotion(asActor("EMP-001"), id)
		require.ErrorIs(t, err, apperr.ErrInvariant)
	})

	t.Run("employee cannot accept before the manager", func(t *testing.T) {
		_, err := env.promotion.AcceptPromotion(asActor("EMP-001"), id)
		require.ErrorIs(t, err, apperr.ErrInvariant)
	})

	t.Run("derived actions cannot be requested", func(t *testing.T) {
		for _, action := range []string{"start", "complete"} {
			_, err := env.promotion.TransitionPromotion(asActor("MGR-001"), primary.TransitionPromotionRequest{
				PromotionID: id,
				Action:      action,
			})
			require.ErrorIs(t, err, apperr.ErrValidation, action)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := env.promotion.TransitionPromotion(asActor("MGR-001"), primary.TransitionPromotionRequest{
			PromotionID: id,
			Action:      "launch",
		})
		require.Error(t, err)
	})

	t.Run("unknown promotion", func(t *testing.T) {
		_, err := env.promotion.ApprovePromotion(asActor("MGR-001"), "PROM-404")
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	p, err := env.promotion.GetPromotion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pending_approval", p.Status)
	assert.Zero(t, env.promotions.updates)
}

func TestTransitionPromotion_ExplicitActorOverridesContext(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	p, err := env.promotion.TransitionPromotion(asActor("EMP-001"), primary.TransitionPromotionRequest{
		PromotionID: id,
		Action:      "manager_approve",
		ActorID:     "MGR-001",
	})

	require.NoError(t, err)
	assert.Equal(t, "pending_employee_approval", p.Status)
	assert.Equal(t, "MGR-001", p.ApprovedBy)
}

func TestRejectedPromotionIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)
	_, err := env.promotion.RejectPromotion(asActor("MGR-001"), id, "no")
	require.NoError(t, err)

	_, err = env.promotion.ApprovePromotion(asActor("MGR-001"), id)
	require.ErrorIs(t, err, apperr.ErrInvariant)

	_, err = env.promotion.RejectPromotion(asActor("MGR-001"), id, "again")
	require.ErrorIs(t, err, apperr.ErrInvariant)
}

func TestAcceptPromotion_LeavesWorkToEvaluate(t *testing.T) {
	env := newTestEnv(t)

	id := env.assignAndAccept(t)

	p, err := env.promotion.GetPromotion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "assigned", p.Status)
	assert.Equal(t, "EMP-001", p.EmployeeApprovedBy)
	assert.Empty(t, p.StartedAt)
}

func TestAcceptPromotion_CompletesWhenEverythingCarriedForward(t *testing.T) {
	env := newTestEnv(t)
	// An earlier completed promotion where only the evaluator mastered SUB-C.
	env.promotions.promotions["PROM-001"] = &secondary.PromotionRecord{
		ID: "PROM-001", EmployeeID: "EMP-001", ManagerID: "MGR-001",
		TargetJobTitleID: "JT-TECH", TargetGradeID: "G1", RequirementID: "REQ-001",
		Status: "completed", AssignedBy: "MGR-001", AssignedAt: "2025-01-01T00:00:00Z",
	}
	env.progress.records["PROM-001"] = []*secondary.ProgressRecord{{
		PromotionID: "PROM-001", EmployeeID: "EMP-001", TaskID: "TASK-Y", SubtaskID: "SUB-C",
		MentorStatus: "attempt_2", EvaluatorStatus: "master", EvaluatorID: "EVAL-001",
	}}

	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), primaryAssignG2())
	require.NoError(t, err)
	assert.Equal(t, []string{"SUB-A", "SUB-B", "SUB-C"}, resp.CarriedForward)

	_, err = env.promotion.ApprovePromotion(asActor("MGR-001"), resp.PromotionID)
	require.NoError(t, err)
	p, err := env.promotion.AcceptPromotion(asActor("EMP-001"), resp.PromotionID)
	require.NoError(t, err)

	assert.Equal(t, "completed", p.Status)
	assert.NotEmpty(t, p.StartedAt)
	assert.NotEmpty(t, p.CompletedAt)

	cert, err := env.promotion.GetCertificate(context.Background(), resp.PromotionID)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Equal(t, "EMP-001", cert.EmployeeID)
	assert.Equal(t, "G2", cert.GradeID)

	employee := env.employees.employees["EMP-001"]
	assert.Equal(t, "G2", employee.GradeID)
	assert.ElementsMatch(t, []string{"EMP-001", "MGR-001"}, env.notifications.byEvent("completed"))
}

func TestListPromotions(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	all, err := env.promotion.ListPromotions(context.Background(), primary.PromotionFilters{EmployeeID: "EMP-001"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)

	none, err := env.promotion.ListPromotions(context.Background(), primary.PromotionFilters{Status: "completed"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = env.promotion.ListPromotions(context.Background(), primary.PromotionFilters{Status: "archived"})
	require.Error(t, err)
}

func TestGetProgressSummary(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	sum, err := env.promotion.GetProgressSummary(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, sum.PromotionID)
	assert.Equal(t, "pending_approval", sum.Status)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.CarriedForward)
	assert.False(t, sum.ReadyToComplete)

	_, err = env.promotion.GetProgressSummary(context.Background(), "PROM-404")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetCertificate_NoneBeforeCompletion(t *testing.T) {
	env := newTestEnv(t)
	id := env.assignToG2(t)

	cert, err := env.promotion.GetCertificate(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, cert)

	_, err = env.promotion.GetCertificate(context.Background(), "PROM-404")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
