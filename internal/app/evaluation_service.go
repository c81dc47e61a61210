package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/ctxutil"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// EvaluationServiceImpl implements the EvaluationService interface.
type EvaluationServiceImpl struct {
	tx            secondary.Transactor
	promotionRepo secondary.PromotionRepository
	progressRepo  secondary.ProgressRepository
	lifecycle     *lifecycle
	now           func() time.Time
	newID         func() string
}

// NewEvaluationService creates a new EvaluationService with injected dependencies.
// It shares the promotion service's lifecycle so derived transitions fire the
// same effects as human ones.
func NewEvaluationService(
	tx secondary.Transactor,
	promotionRepo secondary.PromotionRepository,
	progressRepo secondary.ProgressRepository,
	promotionSvc *PromotionServiceImpl,
) *EvaluationServiceImpl {
	return &EvaluationServiceImpl{
		tx:            tx,
		promotionRepo: promotionRepo,
		progressRepo:  progressRepo,
		lifecycle:     promotionSvc.lifecycle,
		now:           promotionSvc.now,
		newID:         promotionSvc.newID,
	}
}

// RecordEvaluation writes one assessment.
func (s *EvaluationServiceImpl) RecordEvaluation(ctx context.Context, req primary.RecordEvaluationRequest) (*primary.RecordEvaluationResponse, error) {
	return s.RecordEvaluations(ctx, primary.RecordEvaluationsRequest{
		PromotionID: req.PromotionID,
		Role:        req.Role,
		Items: []primary.EvaluationItem{{
			SubtaskID: req.SubtaskID,
			Status:    req.Status,
			Feedback:  req.Feedback,
		}},
	})
}

// RecordEvaluations writes a batch of assessments atomically. Every item is
// guarded before anything is written; the derived start and complete
// transitions run in the same transaction.
func (s *EvaluationServiceImpl) RecordEvaluations(ctx context.Context, req primary.RecordEvaluationsRequest) (*primary.RecordEvaluationResponse, error) {
	actorID := ctxutil.ActorFromContext(ctx)

	role, err := evaluation.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("no evaluations to record")
	}

	statuses := make([]evaluation.Status, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for i, item := range req.Items {
		if seen[item.SubtaskID] {
			return nil, apperr.Validation("subtask %s appears more than once in the batch", item.SubtaskID)
		}
		seen[item.SubtaskID] = true

		if statuses[i], err = evaluation.ParseStatus(item.Status); err != nil {
			return nil, err
		}
	}

	var (
		saved       []evaluation.Record
		updated     promotion.Promotion
		transitions []promotion.Action
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		promotionRecord, err := s.promotionRepo.GetByID(ctx, req.PromotionID)
		if err != nil {
			return err
		}
		p, err := promotionFromRecord(promotionRecord)
		if err != nil {
			return err
		}

		progressRecords, err := s.progressRepo.ListByPromotion(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to get progress records: %w", err)
		}
		records, err := recordsFromProgress(progressRecords)
		if err != nil {
			return err
		}
		index := make(map[string]int, len(records))
		for i, r := range records {
			index[r.SubtaskID] = i
		}

		for _, item := range req.Items {
			i, ok := index[item.SubtaskID]
			if !ok {
				return apperr.NotFound("no progress record for subtask %s in promotion %s", item.SubtaskID, p.ID)
			}
			r := records[i]
			guard := evaluation.CanRecordEvaluation(evaluation.RecordEvaluationContext{
				PromotionID:       p.ID,
				PromotionStatus:   string(p.Status),
				PromotionOpen:     p.Status.OpenForEvaluation(),
				EmployeeID:        p.EmployeeID,
				SubtaskID:         r.SubtaskID,
				ActorID:           actorID,
				Role:              role,
				AssignedMentor:    r.MentorID,
				AssignedEvaluator: r.EvaluatorID,
				OtherTrackOwner:   r.OwnerOf(role.Other()),
			})
			if err := guard.Error(); err != nil {
				return err
			}
		}

		now := s.now()
		batch := make([]*secondary.ProgressRecord, 0, len(req.Items))
		leftNotStarted := false
		for n, item := range req.Items {
			i := index[item.SubtaskID]
			if records[i].StatusFor(role) == evaluation.StatusNotStarted && statuses[n] != evaluation.StatusNotStarted {
				leftNotStarted = true
			}
			records[i] = evaluation.Apply(records[i], evaluation.HistoryEntry{
				ID:          s.newID(),
				EvaluatorID: actorID,
				Role:        role,
				Status:      statuses[n],
				Feedback:    item.Feedback,
				EvaluatedAt: now,
			})
			saved = append(saved, records[i])
			batch = append(batch, progressToRecord(records[i]))
		}
		if err := s.progressRepo.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to save evaluations: %w", err)
		}

		updated, transitions, err = s.lifecycle.advance(ctx, p, leftNotStarted, records, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &primary.RecordEvaluationResponse{PromotionStatus: string(updated.Status)}
	for _, r := range saved {
		resp.Records = append(resp.Records, progressToPrimary(r))
	}
	for _, a := range transitions {
		resp.Transitions = append(resp.Transitions, string(a))
	}
	return resp, nil
}

// GetProgress returns the progress records of a promotion with history.
func (s *EvaluationServiceImpl) GetProgress(ctx context.Context, promotionID string) ([]*primary.ProgressRecord, error) {
	records, err := s.loadRecords(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	out := make([]*primary.ProgressRecord, 0, len(records))
	for _, r := range records {
		out = append(out, progressToPrimary(r))
	}
	return out, nil
}

// CanRequestEvaluatorSession reports whether every subtask has mentor mastery.
func (s *EvaluationServiceImpl) CanRequestEvaluatorSession(ctx context.Context, promotionID string) (bool, error) {
	records, err := s.loadRecords(ctx, promotionID)
	if err != nil {
		return false, err
	}
	return evaluation.MentorTrackComplete(records), nil
}

func (s *EvaluationServiceImpl) loadRecords(ctx context.Context, promotionID string) ([]evaluation.Record, error) {
	if _, err := s.promotionRepo.GetByID(ctx, promotionID); err != nil {
		return nil, err
	}

	progressRecords, err := s.progressRepo.ListByPromotion(ctx, promotionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}
	return recordsFromProgress(progressRecords)
}

var _ primary.EvaluationService = (*EvaluationServiceImpl)(nil)
