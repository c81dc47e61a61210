// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/ladder/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────"

// StatusLabel colours a promotion status for terminal output.
func StatusLabel(status string) string {
	switch status {
	case "completed":
		return color.New(color.FgGreen).Sprint(status)
	case "rejected":
		return color.New(color.FgRed).Sprint(status)
	case "in_progress":
		return color.New(color.FgCyan).Sprint(status)
	case "assigned":
		return color.New(color.FgBlue).Sprint(status)
	case "pending_approval", "pending_employee_approval":
		return color.New(color.FgYellow).Sprint(status)
	default:
		return status
	}
}

func trackLabel(status string) string {
	switch status {
	case "master":
		return color.New(color.FgGreen).Sprint("MASTER   ")
	case "attempt_1":
		return color.New(color.FgYellow).Sprint("ATTEMPT 1")
	case "attempt_2":
		return color.New(color.FgYellow).Sprint("ATTEMPT 2")
	default:
		return "-        "
	}
}

// PromotionAdapter translates CLI operations to PromotionService and
// EvaluationService calls.
type PromotionAdapter struct {
	promotions  primary.PromotionService
	evaluations primary.EvaluationService
	out         io.Writer
}

// NewPromotionAdapter creates a new PromotionAdapter.
func NewPromotionAdapter(promotions primary.PromotionService, evaluations primary.EvaluationService, out io.Writer) *PromotionAdapter {
	return &PromotionAdapter{promotions: promotions, evaluations: evaluations, out: out}
}

// Preview prints what an assignment would create.
func (a *PromotionAdapter) Preview(ctx context.Context, req primary.AssignPromotionRequest) error {
	p, err := a.promotions.PreviewAssignment(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nPromotion preview for %s → %s/%s\n", p.EmployeeID, req.TargetJobTitleID, req.TargetGradeID)
	current := p.CurrentRequirementID
	if current == "" {
		current = "(none)"
	}
	fmt.Fprintf(a.out, "Current matrix:  %s\n", current)
	fmt.Fprintf(a.out, "Target matrix:   %s\n", p.TargetRequirementID)
	fmt.Fprintf(a.out, "Subtasks:        %d (%d carried forward)\n", p.TotalSubtasks, len(p.CarriedForward))
	if len(p.NewTasks) > 0 {
		fmt.Fprintf(a.out, "New tasks:       %s\n", strings.Join(p.NewTasks, ", "))
	}
	if len(p.NewSubtasks) > 0 {
		fmt.Fprintf(a.out, "New subtasks:    %s\n", strings.Join(p.NewSubtasks, ", "))
	}

	switch {
	case p.ActivePromotionID != "":
		fmt.Fprintf(a.out, "%s: %s already has active promotion %s\n",
			color.New(color.FgRed).Sprint("BLOCKED"), p.EmployeeID, p.ActivePromotionID)
	case !p.HasDifferences:
		fmt.Fprintf(a.out, "%s: target is identical to the current level\n", color.New(color.FgRed).Sprint("BLOCKED"))
	default:
		fmt.Fprintf(a.out, "%s\n", color.New(color.FgGreen).Sprint("Ready to assign"))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Assign creates a promotion.
func (a *PromotionAdapter) Assign(ctx context.Context, req primary.AssignPromotionRequest) error {
	resp, err := a.promotions.AssignPromotion(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Assigned promotion %s: %s → %s/%s (%d subtasks, %d carried forward)\n",
		resp.PromotionID, resp.Promotion.EmployeeID, resp.Promotion.TargetJobTitleID, resp.Promotion.TargetGradeID,
		resp.TotalSubtasks, len(resp.CarriedForward))
	fmt.Fprintf(a.out, "  Awaiting approval from %s\n", resp.Promotion.ManagerID)
	return nil
}

// Transition applies a human lifecycle action and reports the new status.
func (a *PromotionAdapter) Transition(ctx context.Context, req primary.TransitionPromotionRequest) error {
	p, err := a.promotions.TransitionPromotion(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Promotion %s is now %s\n", p.ID, StatusLabel(p.Status))
	return nil
}

// List lists promotions.
func (a *PromotionAdapter) List(ctx context.Context, filters primary.PromotionFilters) error {
	promotions, err := a.promotions.ListPromotions(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list promotions: %w", err)
	}

	if len(promotions) == 0 {
		fmt.Fprintln(a.out, "No promotions found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-14s %-27s %s\n", "ID", "EMPLOYEE", "TARGET", "STATUS", "ASSIGNED")
	fmt.Fprintln(a.out, rule)
	for _, p := range promotions {
		fmt.Fprintf(a.out, "%-10s %-10s %-14s %-27s %s\n",
			p.ID, p.EmployeeID, p.TargetJobTitleID+"/"+p.TargetGradeID, p.Status, p.AssignedAt)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a promotion, its approvals and a progress summary.
func (a *PromotionAdapter) Show(ctx context.Context, promotionID string) error {
	p, err := a.promotions.GetPromotion(ctx, promotionID)
	if err != nil {
		return fmt.Errorf("failed to get promotion: %w", err)
	}
	sum, err := a.promotions.GetProgressSummary(ctx, promotionID)
	if err != nil {
		return fmt.Errorf("failed to get progress: %w", err)
	}

	fmt.Fprintf(a.out, "\nPromotion: %s\n", p.ID)
	fmt.Fprintf(a.out, "Employee:  %s (manager %s)\n", p.EmployeeID, p.ManagerID)
	fmt.Fprintf(a.out, "Target:    %s/%s (matrix %s)\n", p.TargetJobTitleID, p.TargetGradeID, p.RequirementID)
	fmt.Fprintf(a.out, "Status:    %s\n", StatusLabel(p.Status))
	fmt.Fprintf(a.out, "Assigned:  %s by %s\n", p.AssignedAt, p.AssignedBy)
	if p.ApprovedAt != "" {
		fmt.Fprintf(a.out, "Approved:  %s by %s\n", p.ApprovedAt, p.ApprovedBy)
	}
	if p.EmployeeApprovedAt != "" {
		fmt.Fprintf(a.out, "Accepted:  %s by %s\n", p.EmployeeApprovedAt, p.EmployeeApprovedBy)
	}
	if p.RejectedAt != "" {
		fmt.Fprintf(a.out, "Rejected:  %s by %s: %s\n", p.RejectedAt, p.RejectedBy, p.RejectionReason)
	}
	if p.EmployeeRejectedAt != "" {
		line := fmt.Sprintf("Declined:  %s by %s", p.EmployeeRejectedAt, p.EmployeeRejectedBy)
		if p.EmployeeRejectionReason != "" {
			line += ": " + p.EmployeeRejectionReason
		}
		fmt.Fprintln(a.out, line)
	}
	if p.StartedAt != "" {
		fmt.Fprintf(a.out, "Started:   %s\n", p.StartedAt)
	}
	if p.CompletedAt != "" {
		fmt.Fprintf(a.out, "Completed: %s\n", p.CompletedAt)
	}
	fmt.Fprintf(a.out, "Progress:  %d/%d fully mastered (%d%%), %d carried forward\n",
		sum.FullyMastered, sum.Total, sum.Percent, sum.CarriedForward)
	if sum.ReadyForEvaluator && !sum.ReadyToComplete {
		fmt.Fprintln(a.out, "           mentor track complete, ready for evaluator session")
	}
	fmt.Fprintln(a.out)
	return nil
}

// Progress prints every progress record of a promotion.
func (a *PromotionAdapter) Progress(ctx context.Context, promotionID string, withHistory bool) error {
	records, err := a.evaluations.GetProgress(ctx, promotionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-9s %-9s %s\n", "TASK", "SUBTASK", "MENTOR", "EVALUATOR", "NOTE")
	fmt.Fprintln(a.out, rule)
	for _, r := range records {
		note := ""
		if r.CarriedForward {
			note = "carried forward"
		}
		fmt.Fprintf(a.out, "%-10s %-10s %s %s %s\n", r.TaskID, r.SubtaskID,
			trackLabel(r.MentorStatus), trackLabel(r.EvaluatorStatus), note)
		if withHistory {
			for _, h := range r.History {
				by := h.EvaluatorID
				if by == "" {
					by = "system"
				}
				fmt.Fprintf(a.out, "    %s %-9s %-9s %s %s\n", h.EvaluatedAt, h.Role, h.Status, by, h.Feedback)
			}
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Evaluate records a batch of assessments by the context actor.
func (a *PromotionAdapter) Evaluate(ctx context.Context, req primary.RecordEvaluationsRequest) error {
	resp, err := a.evaluations.RecordEvaluations(ctx, req)
	if err != nil {
		return err
	}

	for _, r := range resp.Records {
		status := r.MentorStatus
		if req.Role == "evaluator" {
			status = r.EvaluatorStatus
		}
		fmt.Fprintf(a.out, "✓ %s %s: %s\n", req.Role, r.SubtaskID, status)
	}
	for _, t := range resp.Transitions {
		fmt.Fprintf(a.out, "→ %s: promotion %s\n", t, req.PromotionID)
	}
	fmt.Fprintf(a.out, "Promotion %s is %s\n", req.PromotionID, StatusLabel(resp.PromotionStatus))

	if req.Role == "mentor" {
		ready, err := a.evaluations.CanRequestEvaluatorSession(ctx, req.PromotionID)
		if err != nil {
			return err
		}
		if ready && resp.PromotionStatus != "completed" {
			fmt.Fprintln(a.out, "Mentor track complete: an evaluator session can be requested")
		}
	}
	return nil
}

// Certificate prints the completion certificate of a promotion.
func (a *PromotionAdapter) Certificate(ctx context.Context, promotionID string) error {
	cert, err := a.promotions.GetCertificate(ctx, promotionID)
	if err != nil {
		return err
	}
	if cert == nil {
		fmt.Fprintf(a.out, "No certificate issued for %s\n", promotionID)
		return nil
	}
	fmt.Fprintf(a.out, "Certificate %s: %s reached %s/%s on %s\n",
		cert.ID, cert.EmployeeID, cert.JobTitleID, cert.GradeID, cert.IssuedAt)
	return nil
}
