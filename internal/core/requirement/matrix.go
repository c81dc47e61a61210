// Package requirement contains the pure business logic for requirement matrices.
// A matrix lists the (task, subtask set) pairs required at one
// (section, job title, grade) level. No I/O happens here.
package requirement

import (
	"strings"

	"github.com/example/ladder/internal/apperr"
)

// RequiredTask is one task of a matrix together with the subtasks it requires.
type RequiredTask struct {
	TaskID     string
	SubtaskIDs []string
}

// Matrix is the frozen list of required tasks for a level.
type Matrix struct {
	ID         string
	SectionID  string
	JobTitleID string
	GradeID    string
	Tasks      []RequiredTask
}

// SubtaskIDs returns every required subtask in task order.
func (m Matrix) SubtaskIDs() []string {
	ids := make([]string, 0, m.SubtaskCount())
	for _, t := range m.Tasks {
		ids = append(ids, t.SubtaskIDs...)
	}
	return ids
}

// SubtaskCount returns the total number of required subtasks.
func (m Matrix) SubtaskCount() int {
	n := 0
	for _, t := range m.Tasks {
		n += len(t.SubtaskIDs)
	}
	return n
}

// Task returns the requirement for taskID, if the matrix has one.
func (m Matrix) Task(taskID string) (RequiredTask, bool) {
	for _, t := range m.Tasks {
		if t.TaskID == taskID {
			return t, true
		}
	}
	return RequiredTask{}, false
}

// TaskOf returns the task a required subtask belongs to.
func (m Matrix) TaskOf(subtaskID string) (string, bool) {
	for _, t := range m.Tasks {
		for _, s := range t.SubtaskIDs {
			if s == subtaskID {
				return t.TaskID, true
			}
		}
	}
	return "", false
}

// SubtaskUniverse maps each known task to the subtasks that belong to it.
// A nil universe disables membership checks.
type SubtaskUniverse map[string][]string

// Validate checks the structural invariants of a matrix.
// Rules:
// - Section, job title and grade must be set
// - At least one task, each with at least one subtask
// - A task appears at most once
// - A subtask appears at most once across the whole matrix
// - When a universe is given, every subtask must belong to its task
func Validate(m Matrix, universe SubtaskUniverse) error {
	if strings.TrimSpace(m.SectionID) == "" || strings.TrimSpace(m.JobTitleID) == "" || strings.TrimSpace(m.GradeID) == "" {
		return apperr.Validation("requirement matrix needs section, job title and grade")
	}
	if len(m.Tasks) == 0 {
		return apperr.Validation("requirement matrix %s/%s/%s has no tasks", m.SectionID, m.JobTitleID, m.GradeID)
	}

	seenTasks := make(map[string]bool, len(m.Tasks))
	seenSubtasks := make(map[string]string)
	for _, t := range m.Tasks {
		if strings.TrimSpace(t.TaskID) == "" {
			return apperr.Validation("requirement matrix contains a task without an ID")
		}
		if seenTasks[t.TaskID] {
			return apperr.Validation("task %s appears more than once", t.TaskID)
		}
		seenTasks[t.TaskID] = true

		if len(t.SubtaskIDs) == 0 {
			return apperr.Validation("task %s has no required subtasks", t.TaskID)
		}

		var allowed map[string]bool
		if universe != nil {
			known, ok := universe[t.TaskID]
			if !ok {
				return apperr.Validation("unknown task %s", t.TaskID)
			}
			allowed = make(map[string]bool, len(known))
			for _, s := range known {
				allowed[s] = true
			}
		}

		for _, s := range t.SubtaskIDs {
			if strings.TrimSpace(s) == "" {
				return apperr.Validation("task %s contains a subtask without an ID", t.TaskID)
			}
			if owner, dup := seenSubtasks[s]; dup {
				return apperr.Validation("subtask %s listed under both %s and %s", s, owner, t.TaskID)
			}
			seenSubtasks[s] = t.TaskID
			if allowed != nil && !allowed[s] {
				return apperr.Validation("subtask %s does not belong to task %s", s, t.TaskID)
			}
		}
	}

	return nil
}
