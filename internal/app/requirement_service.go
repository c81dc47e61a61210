package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/requirement"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// RequirementServiceImpl implements the RequirementService interface.
type RequirementServiceImpl struct {
	requirementRepo secondary.RequirementRepository
}

// NewRequirementService creates a new RequirementService with injected dependencies.
func NewRequirementService(requirementRepo secondary.RequirementRepository) *RequirementServiceImpl {
	return &RequirementServiceImpl{requirementRepo: requirementRepo}
}

// SaveRequirement validates a matrix and stores it as a new snapshot.
// When a task catalog is loaded, every task and subtask must appear in it.
func (s *RequirementServiceImpl) SaveRequirement(ctx context.Context, req primary.SaveRequirementRequest) (*primary.Requirement, error) {
	m := requirement.Matrix{
		SectionID:  strings.TrimSpace(req.SectionID),
		JobTitleID: strings.TrimSpace(req.JobTitleID),
		GradeID:    strings.TrimSpace(req.GradeID),
	}
	for _, t := range req.Tasks {
		m.Tasks = append(m.Tasks, requirement.RequiredTask{TaskID: t.TaskID, SubtaskIDs: t.SubtaskIDs})
	}

	catalog, err := s.requirementRepo.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load task catalog: %w", err)
	}
	var universe requirement.SubtaskUniverse
	if len(catalog) > 0 {
		universe = requirement.SubtaskUniverse(catalog)
	}
	if err := requirement.Validate(m, universe); err != nil {
		return nil, err
	}

	nextID, err := s.requirementRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate requirement ID: %w", err)
	}

	record := &secondary.RequirementRecord{
		ID:         nextID,
		SectionID:  m.SectionID,
		JobTitleID: m.JobTitleID,
		GradeID:    m.GradeID,
	}
	for _, t := range m.Tasks {
		record.Tasks = append(record.Tasks, secondary.RequiredTaskRecord{TaskID: t.TaskID, SubtaskIDs: t.SubtaskIDs})
	}

	if err := s.requirementRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}

	return requirementToPrimary(record), nil
}

// GetRequirement retrieves a matrix snapshot by ID.
func (s *RequirementServiceImpl) GetRequirement(ctx context.Context, requirementID string) (*primary.Requirement, error) {
	record, err := s.requirementRepo.GetByID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	return requirementToPrimary(record), nil
}

// GetRequirementForLevel retrieves the current matrix of a level.
func (s *RequirementServiceImpl) GetRequirementForLevel(ctx context.Context, sectionID, jobTitleID, gradeID string) (*primary.Requirement, error) {
	record, err := s.requirementRepo.GetByLevel(ctx, sectionID, jobTitleID, gradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	if record == nil {
		return nil, apperr.NotFound("no requirement matrix for %s/%s/%s", sectionID, jobTitleID, gradeID)
	}
	return requirementToPrimary(record), nil
}

// ListRequirements lists the current matrix of every level.
func (s *RequirementServiceImpl) ListRequirements(ctx context.Context, filters primary.RequirementFilters) ([]*primary.Requirement, error) {
	records, err := s.requirementRepo.List(ctx, secondary.RequirementFilters{
		SectionID:  filters.SectionID,
		JobTitleID: filters.JobTitleID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	out := make([]*primary.Requirement, 0, len(records))
	for _, r := range records {
		out = append(out, requirementToPrimary(r))
	}
	return out, nil
}

// DiffLevels compares the matrices of two levels. A missing from level
// diffs against nothing; a missing target is an error.
func (s *RequirementServiceImpl) DiffLevels(ctx context.Context, req primary.DiffLevelsRequest) (*primary.RequirementDiff, error) {
	targetRecord, err := s.requirementRepo.GetByLevel(ctx, req.SectionID, req.ToJobTitleID, req.ToGradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target requirement: %w", err)
	}
	if targetRecord == nil {
		return nil, apperr.NotFound("no requirement matrix for %s/%s/%s", req.SectionID, req.ToJobTitleID, req.ToGradeID)
	}

	var currentRecord *secondary.RequirementRecord
	if req.FromJobTitleID != "" && req.FromGradeID != "" {
		currentRecord, err = s.requirementRepo.GetByLevel(ctx, req.SectionID, req.FromJobTitleID, req.FromGradeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get current requirement: %w", err)
		}
	}

	current := matrixPtrFromRecord(currentRecord)
	target := matrixFromRecord(targetRecord)
	diff := requirement.Diff(current, target)

	out := &primary.RequirementDiff{
		TargetRequirementID:     target.ID,
		NewTasks:                diff.NewTasks,
		NewSubtasksByTask:       diff.NewSubtasksByTask,
		CompletedSubtasksByTask: diff.CompletedSubtasksByTask,
		HasDifferences:          requirement.HasDifferences(current, target),
	}
	if current != nil {
		out.CurrentRequirementID = current.ID
	}
	return out, nil
}

// SaveCatalog replaces the subtask universe of the given tasks.
func (s *RequirementServiceImpl) SaveCatalog(ctx context.Context, tasks []primary.CatalogTask) error {
	records := make([]*secondary.TaskCatalogRecord, 0, len(tasks))
	for _, t := range tasks {
		if strings.TrimSpace(t.TaskID) == "" {
			return apperr.Validation("catalog entry without a task ID")
		}
		if len(t.SubtaskIDs) == 0 {
			return apperr.Validation("catalog task %s has no subtasks", t.TaskID)
		}
		records = append(records, &secondary.TaskCatalogRecord{
			TaskID:     t.TaskID,
			Name:       t.Name,
			SubtaskIDs: t.SubtaskIDs,
		})
	}
	return s.requirementRepo.SaveCatalog(ctx, records)
}

var _ primary.RequirementService = (*RequirementServiceImpl)(nil)
