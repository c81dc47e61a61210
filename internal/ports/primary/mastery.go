package primary

import "context"

// MasteryService answers which subtasks an employee has already mastered.
type MasteryService interface {
	// MasteredSubtasks returns the sorted subtask IDs mastered through the
	// employee's current level or any completed promotion.
	MasteredSubtasks(ctx context.Context, employeeID string) ([]string, error)
}
