// Package mastery resolves which subtasks an employee is already considered
// to have mastered when a new promotion is assigned.
package mastery

import (
	"sort"

	"github.com/example/ladder/internal/core/evaluation"
	"github.com/example/ladder/internal/core/requirement"
)

// Set is a de-duplicated collection of subtask IDs.
type Set map[string]bool

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the subtasks considered mastered for an employee.
//
// Every subtask required at the employee's current level counts, whether or
// not a record exists for it. Records of completed promotions count when
// either the mentor or the evaluator recorded MASTER. That OR is a lower bar
// than FullyMastered and is only applied to promotions that are already
// closed.
//
// The result is a one-shot snapshot taken at assignment time.
func Resolve(current *requirement.Matrix, completed []evaluation.Record) Set {
	mastered := make(Set)

	if current != nil {
		for _, id := range current.SubtaskIDs() {
			mastered[id] = true
		}
	}

	for _, r := range completed {
		if r.EitherMastered() {
			mastered[r.SubtaskID] = true
		}
	}

	return mastered
}
