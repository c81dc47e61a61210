// Package primary defines the primary ports (driving adapters) for the application.
// These are the service interfaces the CLI and importer call into.
package primary

import "context"

// RequirementService defines the primary port for requirement matrices.
type RequirementService interface {
	// SaveRequirement validates a matrix and stores it as the newest version
	// of its level. Promotions already assigned keep their old snapshot.
	SaveRequirement(ctx context.Context, req SaveRequirementRequest) (*Requirement, error)

	// GetRequirement retrieves a matrix snapshot by ID.
	GetRequirement(ctx context.Context, requirementID string) (*Requirement, error)

	// GetRequirementForLevel retrieves the current matrix of a level.
	GetRequirementForLevel(ctx context.Context, sectionID, jobTitleID, gradeID string) (*Requirement, error)

	// ListRequirements lists the current matrix of every level.
	ListRequirements(ctx context.Context, filters RequirementFilters) ([]*Requirement, error)

	// DiffLevels compares the matrices of two levels in one section.
	DiffLevels(ctx context.Context, req DiffLevelsRequest) (*RequirementDiff, error)

	// SaveCatalog replaces the subtask universe of the given tasks.
	SaveCatalog(ctx context.Context, tasks []CatalogTask) error
}

// Requirement represents a requirement matrix snapshot at the port boundary.
type Requirement struct {
	ID         string
	SectionID  string
	JobTitleID string
	GradeID    string
	Version    int
	Tasks      []RequiredTask
	CreatedAt  string
}

// RequiredTask is one task of a matrix with the subtasks it requires.
type RequiredTask struct {
	TaskID     string
	SubtaskIDs []string
}

// SaveRequirementRequest contains parameters for saving a matrix.
type SaveRequirementRequest struct {
	SectionID  string
	JobTitleID string
	GradeID    string
	Tasks      []RequiredTask
}

// RequirementFilters contains filter options for listing matrices.
type RequirementFilters struct {
	SectionID  string
	JobTitleID string
}

// DiffLevelsRequest names the two levels to compare.
// An empty From level means "no current level".
type DiffLevelsRequest struct {
	SectionID      string
	FromJobTitleID string
	FromGradeID    string
	ToJobTitleID   string
	ToGradeID      string
}

// RequirementDiff is the result of comparing two matrices.
type RequirementDiff struct {
	CurrentRequirementID    string // Empty when the from level has no matrix
	TargetRequirementID     string
	NewTasks                []string
	NewSubtasksByTask       map[string][]string
	CompletedSubtasksByTask map[string][]string
	HasDifferences          bool
}

// CatalogTask lists the subtasks that belong to a task.
type CatalogTask struct {
	TaskID     string
	Name       string
	SubtaskIDs []string
}
