// Package progress folds the progress records of one promotion into the
// completion figures shown to employees, mentors and managers.
package progress

import "github.com/example/ladder/internal/core/evaluation"

// Summary aggregates one promotion's progress records.
type Summary struct {
	Total             int
	FullyMastered     int
	MentorMastered    int
	EvaluatorMastered int
	CarriedForward    int
	NotStarted        int // both tracks still at not_started
	Percent           int // FullyMastered as a whole percentage of Total

	// ReadyForEvaluator is the promotion-wide evaluator session gate:
	// every mentor status is MASTER.
	ReadyForEvaluator bool

	// ReadyToComplete holds when every record is fully mastered.
	ReadyToComplete bool
}

// Unmastered returns the number of records not yet fully mastered.
func (s Summary) Unmastered() int {
	return s.Total - s.FullyMastered
}

// Summarize folds records into a Summary.
func Summarize(records []evaluation.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.FullyMastered() {
			s.FullyMastered++
		}
		if r.MentorStatus.Mastered() {
			s.MentorMastered++
		}
		if r.EvaluatorStatus.Mastered() {
			s.EvaluatorMastered++
		}
		if r.CarriedForward() {
			s.CarriedForward++
		}
		if r.MentorStatus == evaluation.StatusNotStarted && r.EvaluatorStatus == evaluation.StatusNotStarted {
			s.NotStarted++
		}
	}

	if s.Total > 0 {
		s.Percent = s.FullyMastered * 100 / s.Total
	}
	s.ReadyForEvaluator = evaluation.MentorTrackComplete(records)
	s.ReadyToComplete = s.Total > 0 && s.FullyMastered == s.Total
	return s
}
