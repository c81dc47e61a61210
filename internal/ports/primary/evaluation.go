package primary

import "context"

// EvaluationService defines the primary port for mentor and evaluator
// assessments.
type EvaluationService interface {
	// RecordEvaluation writes one assessment. The actor comes from the context.
	RecordEvaluation(ctx context.Context, req RecordEvaluationRequest) (*RecordEvaluationResponse, error)

	// RecordEvaluations writes a batch of assessments for one promotion and
	// role. Either every item is saved or none is.
	RecordEvaluations(ctx context.Context, req RecordEvaluationsRequest) (*RecordEvaluationResponse, error)

	// GetProgress returns the progress records of a promotion with history.
	GetProgress(ctx context.Context, promotionID string) ([]*ProgressRecord, error)

	// CanRequestEvaluatorSession reports whether the mentor track is complete.
	CanRequestEvaluatorSession(ctx context.Context, promotionID string) (bool, error)
}

// RecordEvaluationRequest contains parameters for a single assessment.
type RecordEvaluationRequest struct {
	PromotionID string
	SubtaskID   string
	Role        string // mentor, evaluator
	Status      string // not_started, attempt_1, attempt_2, master
	Feedback    string
}

// RecordEvaluationsRequest contains a batch of assessments by one actor.
type RecordEvaluationsRequest struct {
	PromotionID string
	Role        string
	Items       []EvaluationItem
}

// EvaluationItem is one subtask assessment within a batch.
type EvaluationItem struct {
	SubtaskID string
	Status    string
	Feedback  string
}

// RecordEvaluationResponse reports the saved records and any lifecycle
// transitions the write triggered.
type RecordEvaluationResponse struct {
	Records         []*ProgressRecord
	PromotionStatus string
	Transitions     []string // derived actions applied, in order
}

// ProgressRecord represents a subtask's progress at the port boundary.
type ProgressRecord struct {
	PromotionID          string
	EmployeeID           string
	TaskID               string
	SubtaskID            string
	MentorStatus         string
	MentorID             string
	MentorFeedback       string
	MentorEvaluatedAt    string
	EvaluatorStatus      string
	EvaluatorID          string
	EvaluatorFeedback    string
	EvaluatorEvaluatedAt string
	FullyMastered        bool
	CarriedForward       bool
	History              []HistoryEntry
}

// HistoryEntry is one append-only assessment.
type HistoryEntry struct {
	ID          string
	EvaluatorID string
	Role        string
	Status      string
	Feedback    string
	EvaluatedAt string
}
