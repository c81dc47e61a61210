package requirement

import "sort"

// DiffResult classifies the target's required subtasks against the current
// level. Every target subtask lands in exactly one of the two maps.
type DiffResult struct {
	// NewTasks lists target tasks that the current matrix does not require at all.
	NewTasks []string
	// NewSubtasksByTask holds subtasks required only by the target.
	NewSubtasksByTask map[string][]string
	// CompletedSubtasksByTask holds subtasks required by both matrices.
	CompletedSubtasksByTask map[string][]string
}

// NewSubtasks flattens NewSubtasksByTask, sorted.
func (d DiffResult) NewSubtasks() []string {
	return flatten(d.NewSubtasksByTask)
}

// CompletedSubtasks flattens CompletedSubtasksByTask, sorted.
func (d DiffResult) CompletedSubtasks() []string {
	return flatten(d.CompletedSubtasksByTask)
}

// Diff compares a candidate target matrix with the employee's current one.
// A nil current matrix means no requirement is on file for the present level:
// every target subtask is new and every target task is a new task.
func Diff(current *Matrix, target Matrix) DiffResult {
	result := DiffResult{
		NewSubtasksByTask:       make(map[string][]string),
		CompletedSubtasksByTask: make(map[string][]string),
	}

	for _, t := range target.Tasks {
		var before map[string]bool
		inCurrent := false
		if current != nil {
			if ct, ok := current.Task(t.TaskID); ok {
				inCurrent = true
				before = make(map[string]bool, len(ct.SubtaskIDs))
				for _, s := range ct.SubtaskIDs {
					before[s] = true
				}
			}
		}

		if !inCurrent {
			result.NewTasks = append(result.NewTasks, t.TaskID)
		}

		for _, s := range t.SubtaskIDs {
			if before[s] {
				result.CompletedSubtasksByTask[t.TaskID] = append(result.CompletedSubtasksByTask[t.TaskID], s)
			} else {
				result.NewSubtasksByTask[t.TaskID] = append(result.NewSubtasksByTask[t.TaskID], s)
			}
		}
	}

	return result
}

// HasDifferences reports whether moving from current to target changes
// anything: some subtask is newly required, or the required totals differ.
func HasDifferences(current *Matrix, target Matrix) bool {
	if len(Diff(current, target).NewSubtasks()) > 0 {
		return true
	}
	currentCount := 0
	if current != nil {
		currentCount = current.SubtaskCount()
	}
	return currentCount != target.SubtaskCount()
}

func flatten(byTask map[string][]string) []string {
	var out []string
	for _, ids := range byTask {
		out = append(out, ids...)
	}
	sort.Strings(out)
	return out
}
