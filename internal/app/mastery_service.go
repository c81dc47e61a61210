package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/mastery"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/core/requirement"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// completedFetchLimit bounds concurrent progress reads per resolution.
const completedFetchLimit = 4

// MasteryServiceImpl implements the MasteryService interface.
type MasteryServiceImpl struct {
	employeeRepo    secondary.EmployeeRepository
	requirementRepo secondary.RequirementRepository
	promotionRepo   secondary.PromotionRepository
	progressRepo    secondary.ProgressRepository
}

// NewMasteryService creates a new MasteryService with injected dependencies.
func NewMasteryService(
	employeeRepo secondary.EmployeeRepository,
	requirementRepo secondary.RequirementRepository,
	promotionRepo secondary.PromotionRepository,
	progressRepo secondary.ProgressRepository,
) *MasteryServiceImpl {
	return &MasteryServiceImpl{
		employeeRepo:    employeeRepo,
		requirementRepo: requirementRepo,
		promotionRepo:   promotionRepo,
		progressRepo:    progressRepo,
	}
}

// MasteredSubtasks returns the sorted subtasks the employee has mastered.
func (s *MasteryServiceImpl) MasteredSubtasks(ctx context.Context, employeeID string) ([]string, error) {
	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	set, _, err := s.resolve(ctx, employee)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

// resolve computes the mastered set for an employee and also returns the
// matrix of their current level (nil when the level has none).
func (s *MasteryServiceImpl) resolve(ctx context.Context, employee *secondary.EmployeeRecord) (mastery.Set, *requirement.Matrix, error) {
	currentRecord, err := s.requirementRepo.GetByLevel(ctx, employee.SectionID, employee.JobTitleID, employee.GradeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current requirement: %w", err)
	}
	current := matrixPtrFromRecord(currentRecord)

	completed, err := s.promotionRepo.List(ctx, secondary.PromotionFilters{
		EmployeeID: employee.ID,
		Status:     string(promotion.StatusCompleted),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completed promotions: %w", err)
	}

	perPromotion := make([][]evaluation.Record, len(completed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(completedFetchLimit)
	for i, p := range completed {
		g.Go(func() error {
			records, err := s.progressRepo.ListByPromotion(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to get progress for promotion %s: %w", p.ID, err)
			}
			converted, err := recordsFromProgress(records)
			if err != nil {
				return err
			}
			perPromotion[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []evaluation.Record
	for _, records := range perPromotion {
		all = append(all, records...)
	}

	return mastery.Resolve(current, all), current, nil
}

var _ primary.MasteryService = (*MasteryServiceImpl)(nil)
