package app

import (
	"fmt"
	"time"

	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/core/requirement"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// Timestamps cross the persistence boundary as RFC3339 strings.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return &t, nil
}

// Requirement conversions

func matrixFromRecord(r *secondary.RequirementRecord) requirement.Matrix {
	m := requirement.Matrix{
		ID:         r.ID,
		SectionID:  r.SectionID,
		JobTitleID: r.JobTitleID,
		GradeID:    r.GradeID,
	}
	for _, t := range r.Tasks {
		m.Tasks = append(m.Tasks, requirement.RequiredTask{
			TaskID:     t.TaskID,
			SubtaskIDs: append([]string(nil), t.SubtaskIDs...),
		})
	}
	return m
}

func matrixPtrFromRecord(r *secondary.RequirementRecord) *requirement.Matrix {
	if r == nil {
		return nil
	}
	m := matrixFromRecord(r)
	return &m
}

func requirementToPrimary(r *secondary.RequirementRecord) *primary.Requirement {
	out := &primary.Requirement{
		ID:         r.ID,
		SectionID:  r.SectionID,
		JobTitleID: r.JobTitleID,
		GradeID:    r.GradeID,
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
	}
	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, primary.RequiredTask{TaskID: t.TaskID, SubtaskIDs: t.SubtaskIDs})
	}
	return out
}

// Promotion conversions

func promotionFromRecord(r *secondary.PromotionRecord) (promotion.Promotion, error) {
	status, err := promotion.ParseStatus(r.Status)
	if err != nil {
		return promotion.Promotion{}, err
	}
	assignedAt, err := parseTimePtr(r.AssignedAt)
	if err != nil {
		return promotion.Promotion{}, err
	}

	p := promotion.Promotion{
		ID:                      r.ID,
		EmployeeID:              r.EmployeeID,
		ManagerID:               r.ManagerID,
		TargetJobTitleID:        r.TargetJobTitleID,
		TargetGradeID:           r.TargetGradeID,
		RequirementID:           r.RequirementID,
		Status:                  status,
		AssignedBy:              r.AssignedBy,
		ApprovedBy:              r.ApprovedBy,
		EmployeeApprovedBy:      r.EmployeeApprovedBy,
		RejectedBy:              r.RejectedBy,
		RejectionReason:         r.RejectionReason,
		EmployeeRejectedBy:      r.EmployeeRejectedBy,
		EmployeeRejectionReason: r.EmployeeRejectionReason,
	}
	if assignedAt != nil {
		p.AssignedAt = *assignedAt
	}

	stamps := []struct {
		src string
		dst **time.Time
	}{
		{r.ApprovedAt, &p.ApprovedAt},
		{r.EmployeeApprovedAt, &p.EmployeeApprovedAt},
		{r.RejectedAt, &p.RejectedAt},
		{r.EmployeeRejectedAt, &p.EmployeeRejectedAt},
		{r.StartedAt, &p.StartedAt},
		{r.CompletedAt, &p.CompletedAt},
	}
	for _, s := range stamps {
		t, err := parseTimePtr(s.src)
		if err != nil {
			return promotion.Promotion{}, err
		}
		*s.dst = t
	}

	return p, nil
}

func promotionToRecord(p promotion.Promotion) *secondary.PromotionRecord {
	return &secondary.PromotionRecord{
		ID:                      p.ID,
		EmployeeID:              p.EmployeeID,
		ManagerID:               p.ManagerID,
		TargetJobTitleID:        p.TargetJobTitleID,
		TargetGradeID:           p.TargetGradeID,
		RequirementID:           p.RequirementID,
		Status:                  string(p.Status),
		AssignedBy:              p.AssignedBy,
		AssignedAt:              formatTime(p.AssignedAt),
		ApprovedBy:              p.ApprovedBy,
		ApprovedAt:              formatTimePtr(p.ApprovedAt),
		EmployeeApprovedBy:      p.EmployeeApprovedBy,
		EmployeeApprovedAt:      formatTimePtr(p.EmployeeApprovedAt),
		RejectedBy:              p.RejectedBy,
		RejectedAt:              formatTimePtr(p.RejectedAt),
		RejectionReason:         p.RejectionReason,
		EmployeeRejectedBy:      p.EmployeeRejectedBy,
		EmployeeRejectedAt:      formatTimePtr(p.EmployeeRejectedAt),
		EmployeeRejectionReason: p.EmployeeRejectionReason,
		StartedAt:               formatTimePtr(p.StartedAt),
		CompletedAt:             formatTimePtr(p.CompletedAt),
	}
}

func promotionRecordToPrimary(r *secondary.PromotionRecord) *primary.Promotion {
	return &primary.Promotion{
		ID:                      r.ID,
		EmployeeID:              r.EmployeeID,
		ManagerID:               r.ManagerID,
		TargetJobTitleID:        r.TargetJobTitleID,
		TargetGradeID:           r.TargetGradeID,
		RequirementID:           r.RequirementID,
		Status:                  r.Status,
		AssignedBy:              r.AssignedBy,
		AssignedAt:              r.AssignedAt,
		ApprovedBy:              r.ApprovedBy,
		ApprovedAt:              r.ApprovedAt,
		EmployeeApprovedBy:      r.EmployeeApprovedBy,
		EmployeeApprovedAt:      r.EmployeeApprovedAt,
		RejectedBy:              r.RejectedBy,
		RejectedAt:              r.RejectedAt,
		RejectionReason:         r.RejectionReason,
		EmployeeRejectedBy:      r.EmployeeRejectedBy,
		EmployeeRejectedAt:      r.EmployeeRejectedAt,
		EmployeeRejectionReason: r.EmployeeRejectionReason,
		StartedAt:               r.StartedAt,
		CompletedAt:             r.CompletedAt,
	}
}

func promotionToPrimary(p promotion.Promotion) *primary.Promotion {
	return promotionRecordToPrimary(promotionToRecord(p))
}

// Progress conversions

func recordFromProgress(r *secondary.ProgressRecord) (evaluation.Record, error) {
	out := evaluation.Record{
		PromotionID:       r.PromotionID,
		EmployeeID:        r.EmployeeID,
		TaskID:            r.TaskID,
		SubtaskID:         r.SubtaskID,
		MentorID:          r.MentorID,
		MentorFeedback:    r.MentorFeedback,
		EvaluatorID:       r.EvaluatorID,
		EvaluatorFeedback: r.EvaluatorFeedback,
	}

	var err error
	if out.MentorStatus, err = evaluation.ParseStatus(r.MentorStatus); err != nil {
		return out, err
	}
	if out.EvaluatorStatus, err = evaluation.ParseStatus(r.EvaluatorStatus); err != nil {
		return out, err
	}
	if out.MentorEvaluatedAt, err = parseTimePtr(r.MentorEvaluatedAt); err != nil {
		return out, err
	}
	if out.EvaluatorEvaluatedAt, err = parseTimePtr(r.EvaluatorEvaluatedAt); err != nil {
		return out, err
	}

	for _, h := range r.History {
		role, err := evaluation.ParseRole(h.EvaluatorRole)
		if err != nil {
			return out, err
		}
		status, err := evaluation.ParseStatus(h.Status)
		if err != nil {
			return out, err
		}
		at, err := parseTimePtr(h.EvaluatedAt)
		if err != nil {
			return out, err
		}
		entry := evaluation.HistoryEntry{
			ID:          h.ID,
			EvaluatorID: h.EvaluatorID,
			Role:        role,
			Status:      status,
			Feedback:    h.Feedback,
		}
		if at != nil {
			entry.EvaluatedAt = *at
		}
		out.History = append(out.History, entry)
	}

	return out, nil
}

func recordsFromProgress(records []*secondary.ProgressRecord) ([]evaluation.Record, error) {
	out := make([]evaluation.Record, 0, len(records))
	for _, r := range records {
		rec, err := recordFromProgress(r)
		if err != nil {
			return nil, fmt.Errorf("progress record %s/%s: %w", r.PromotionID, r.SubtaskID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func progressToRecord(r evaluation.Record) *secondary.ProgressRecord {
	out := &secondary.ProgressRecord{
		PromotionID:          r.PromotionID,
		EmployeeID:           r.EmployeeID,
		TaskID:               r.TaskID,
		SubtaskID:            r.SubtaskID,
		MentorStatus:         string(r.MentorStatus),
		MentorID:             r.MentorID,
		MentorFeedback:       r.MentorFeedback,
		MentorEvaluatedAt:    formatTimePtr(r.MentorEvaluatedAt),
		EvaluatorStatus:      string(r.EvaluatorStatus),
		EvaluatorID:          r.EvaluatorID,
		EvaluatorFeedback:    r.EvaluatorFeedback,
		EvaluatorEvaluatedAt: formatTimePtr(r.EvaluatorEvaluatedAt),
	}
	for _, h := range r.History {
		out.History = append(out.History, secondary.ProgressHistoryRecord{
			ID:            h.ID,
			EvaluatorID:   h.EvaluatorID,
			EvaluatorRole: string(h.Role),
			Status:        string(h.Status),
			Feedback:      h.Feedback,
			EvaluatedAt:   formatTime(h.EvaluatedAt),
		})
	}
	return out
}

func progressToPrimary(r evaluation.Record) *primary.ProgressRecord {
	rec := progressToRecord(r)
	out := &primary.ProgressRecord{
		PromotionID:          rec.PromotionID,
		EmployeeID:           rec.EmployeeID,
		TaskID:               rec.TaskID,
		SubtaskID:            rec.SubtaskID,
		MentorStatus:         rec.MentorStatus,
		MentorID:             rec.MentorID,
		MentorFeedback:       rec.MentorFeedback,
		MentorEvaluatedAt:    rec.MentorEvaluatedAt,
		EvaluatorStatus:      rec.EvaluatorStatus,
		EvaluatorID:          rec.EvaluatorID,
		EvaluatorFeedback:    rec.EvaluatorFeedback,
		EvaluatorEvaluatedAt: rec.EvaluatorEvaluatedAt,
		FullyMastered:        r.FullyMastered(),
		CarriedForward:       r.CarriedForward(),
	}
	for _, h := range rec.History {
		out.History = append(out.History, primary.HistoryEntry{
			ID:          h.ID,
			EvaluatorID: h.EvaluatorID,
			Role:        h.EvaluatorRole,
			Status:      h.Status,
			Feedback:    h.Feedback,
			EvaluatedAt: h.EvaluatedAt,
		})
	}
	return out
}
