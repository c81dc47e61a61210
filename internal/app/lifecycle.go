package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ladder/internal/core/effects"
	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/progress"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/ports/secondary"
)

// lifecycle applies guarded promotion transitions and runs their effects.
// Shared by the promotion and evaluation services so the derived start and
// complete transitions follow the same path as the human ones.
type lifecycle struct {
	promotionRepo          secondary.PromotionRepository
	executor               EffectExecutor
	now                    func() time.Time
	advanceLevelOnComplete bool
}

// apply guards and applies one action, persists the promotion and executes
// the resulting effects. Must run inside the caller's transaction.
func (l *lifecycle) apply(ctx context.Context, p promotion.Promotion, action promotion.Action, actorID, reason string, unmastered int) (promotion.Promotion, error) {
	guard := promotion.CanTransition(promotion.TransitionContext{
		PromotionID: p.ID,
		Status:      p.Status,
		Action:      action,
		ActorID:     actorID,
		EmployeeID:  p.EmployeeID,
		ManagerID:   p.ManagerID,
		Reason:      reason,
		Unmastered:  unmastered,
	})
	if err := guard.Error(); err != nil {
		return p, err
	}

	result := promotion.ApplyTransition(p, action, actorID, reason, l.now())

	effs := result.Effects
	if action == promotion.ActionComplete && l.advanceLevelOnComplete {
		effs = append(effs, effects.AdvanceLevelEffect{
			EmployeeID: p.EmployeeID,
			JobTitleID: p.TargetJobTitleID,
			GradeID:    p.TargetGradeID,
		})
	}

	if err := l.promotionRepo.Update(ctx, promotionToRecord(result.Promotion)); err != nil {
		return p, fmt.Errorf("failed to update promotion: %w", err)
	}

	if err := l.executor.Execute(ctx, effs); err != nil {
		return p, err
	}

	return result.Promotion, nil
}

// advance applies the derived transitions implied by the promotion's
// progress records. leftNotStarted reports whether the write just made moved
// some track of some record off not_started.
func (l *lifecycle) advance(ctx context.Context, p promotion.Promotion, leftNotStarted bool, records []evaluation.Record, actorID string) (promotion.Promotion, []promotion.Action, error) {
	unmastered := progress.Summarize(records).Unmastered()

	actions := promotion.DerivedActions(p.Status, leftNotStarted, unmastered)
	for _, action := range actions {
		var err error
		p, err = l.apply(ctx, p, action, actorID, "", unmastered)
		if err != nil {
			return p, nil, err
		}
	}
	return p, actions, nil
}
