package evaluation

import "time"

// CarriedForwardFeedback is the feedback stamped on the synthetic history
// entry of a subtask pre-satisfied at assignment time.
const CarriedForwardFeedback = "Carried forward from previous promotion"

// HistoryEntry is one role-stamped evaluation write. History is append-only.
type HistoryEntry struct {
	ID          string
	EvaluatorID string
	Role        Role
	Status      Status
	Feedback    string
	EvaluatedAt time.Time
}

// Record tracks one required subtask of one promotion.
// Mentor and evaluator state are separate named fields so the
// fully-mastered rule stays a plain conjunction.
type Record struct {
	PromotionID string
	EmployeeID  string
	TaskID      string
	SubtaskID   string

	MentorStatus      Status
	MentorID          string
	MentorFeedback    string
	MentorEvaluatedAt *time.Time

	EvaluatorStatus      Status
	EvaluatorID          string
	EvaluatorFeedback    string
	EvaluatorEvaluatedAt *time.Time

	History []HistoryEntry
}

// NewRecord returns a record with both tracks at NOT_STARTED.
func NewRecord(promotionID, employeeID, taskID, subtaskID string) Record {
	return Record{
		PromotionID:     promotionID,
		EmployeeID:      employeeID,
		TaskID:          taskID,
		SubtaskID:       subtaskID,
		MentorStatus:    StatusNotStarted,
		EvaluatorStatus: StatusNotStarted,
	}
}

// CarriedForwardRecord returns a record pre-marked MASTER on both tracks with
// a single synthetic mentor history entry.
func CarriedForwardRecord(promotionID, employeeID, taskID, subtaskID, entryID string, now time.Time) Record {
	r := NewRecord(promotionID, employeeID, taskID, subtaskID)
	r.MentorStatus = StatusMaster
	r.EvaluatorStatus = StatusMaster
	r.MentorFeedback = CarriedForwardFeedback
	r.MentorEvaluatedAt = &now
	r.History = []HistoryEntry{{
		ID:          entryID,
		Role:        RoleMentor,
		Status:      StatusMaster,
		Feedback:    CarriedForwardFeedback,
		EvaluatedAt: now,
	}}
	return r
}

// FullyMastered reports whether both mentor and evaluator recorded MASTER.
func (r Record) FullyMastered() bool {
	return r.MentorStatus.Mastered() && r.EvaluatorStatus.Mastered()
}

// EitherMastered reports whether at least one track recorded MASTER.
// This is the looser bar used when harvesting mastery from closed promotions.
func (r Record) EitherMastered() bool {
	return r.MentorStatus.Mastered() || r.EvaluatorStatus.Mastered()
}

// CarriedForward reports whether the record was pre-satisfied at assignment.
func (r Record) CarriedForward() bool {
	return len(r.History) > 0 && r.History[0].Feedback == CarriedForwardFeedback && r.History[0].EvaluatorID == ""
}

// StatusFor returns the live status of the given track.
func (r Record) StatusFor(role Role) Status {
	if role == RoleEvaluator {
		return r.EvaluatorStatus
	}
	return r.MentorStatus
}

// OwnerOf returns the actor that claimed the given track, or "".
func (r Record) OwnerOf(role Role) string {
	if role == RoleEvaluator {
		return r.EvaluatorID
	}
	return r.MentorID
}

// Apply appends entry to the history and mirrors it onto the live fields of
// its role. The first writer of a track becomes that track's owner.
func Apply(r Record, entry HistoryEntry) Record {
	history := make([]HistoryEntry, len(r.History), len(r.History)+1)
	copy(history, r.History)
	r.History = append(history, entry)

	at := entry.EvaluatedAt
	switch entry.Role {
	case RoleMentor:
		r.MentorStatus = entry.Status
		r.MentorFeedback = entry.Feedback
		r.MentorEvaluatedAt = &at
		if r.MentorID == "" {
			r.MentorID = entry.EvaluatorID
		}
	case RoleEvaluator:
		r.EvaluatorStatus = entry.Status
		r.EvaluatorFeedback = entry.Feedback
		r.EvaluatorEvaluatedAt = &at
		if r.EvaluatorID == "" {
			r.EvaluatorID = entry.EvaluatorID
		}
	}
	return r
}

// MentorTrackComplete reports whether every record of a promotion has mentor
// MASTER. Evaluator sessions may only be requested once this holds; the gate
// is promotion-wide, not per subtask.
func MentorTrackComplete(records []Record) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if !r.MentorStatus.Mastered() {
			return false
		}
	}
	return true
}
