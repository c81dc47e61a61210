package primary

import "context"

// PromotionService defines the primary port for promotion lifecycle operations.
// Operations that act on behalf of someone read the actor from the context.
type PromotionService interface {
	// PreviewAssignment reports what assigning the target would create
	// without writing anything.
	PreviewAssignment(ctx context.Context, req AssignPromotionRequest) (*AssignmentPreview, error)

	// AssignPromotion creates a promotion and its progress records atomically.
	AssignPromotion(ctx context.Context, req AssignPromotionRequest) (*AssignPromotionResponse, error)

	// TransitionPromotion applies a lifecycle action on behalf of an actor.
	TransitionPromotion(ctx context.Context, req TransitionPromotionRequest) (*Promotion, error)

	// ApprovePromotion is the manager's approval.
	ApprovePromotion(ctx context.Context, promotionID string) (*Promotion, error)

	// RejectPromotion is the manager's rejection. A reason is required.
	RejectPromotion(ctx context.Context, promotionID, reason string) (*Promotion, error)

	// AcceptPromotion is the employee's approval.
	AcceptPromotion(ctx context.Context, promotionID string) (*Promotion, error)

	// DeclinePromotion is the employee's rejection. The reason is optional.
	DeclinePromotion(ctx context.Context, promotionID, reason string) (*Promotion, error)

	// GetPromotion retrieves a promotion by ID.
	GetPromotion(ctx context.Context, promotionID string) (*Promotion, error)

	// ListPromotions lists promotions with optional filters.
	ListPromotions(ctx context.Context, filters PromotionFilters) ([]*Promotion, error)

	// GetProgressSummary aggregates the progress records of a promotion.
	GetProgressSummary(ctx context.Context, promotionID string) (*ProgressSummary, error)

	// GetCertificate returns the certificate of a completed promotion, or nil.
	GetCertificate(ctx context.Context, promotionID string) (*Certificate, error)
}

// AssignPromotionRequest contains parameters for assigning a promotion.
type AssignPromotionRequest struct {
	EmployeeID       string
	TargetJobTitleID string
	TargetGradeID    string
	ManagerID        string // Optional: defaults to the employee's manager, then the assigner
}

// AssignmentPreview describes a would-be assignment.
type AssignmentPreview struct {
	EmployeeID           string
	CurrentRequirementID string // Empty when the current level has no matrix
	TargetRequirementID  string
	NewTasks             []string
	NewSubtasks          []string
	CarriedForward       []string
	TotalSubtasks        int
	HasDifferences       bool
	ActivePromotionID    string // Set when an active promotion would block assignment
}

// AssignPromotionResponse contains the result of assigning a promotion.
type AssignPromotionResponse struct {
	PromotionID    string
	Promotion      *Promotion
	TotalSubtasks  int
	CarriedForward []string
}

// TransitionPromotionRequest names a lifecycle action.
type TransitionPromotionRequest struct {
	PromotionID string
	Action      string // manager_approve, manager_reject, employee_approve, employee_reject
	ActorID     string // Optional, defaults to the context actor
	Reason      string
}

// Promotion represents a promotion at the port boundary.
type Promotion struct {
	ID                      string
	EmployeeID              string
	ManagerID               string
	TargetJobTitleID        string
	TargetGradeID           string
	RequirementID           string
	Status                  string
	AssignedBy              string
	AssignedAt              string
	ApprovedBy              string
	ApprovedAt              string
	EmployeeApprovedBy      string
	EmployeeApprovedAt      string
	RejectedBy              string
	RejectedAt              string
	RejectionReason         string
	EmployeeRejectedBy      string
	EmployeeRejectedAt      string
	EmployeeRejectionReason string
	StartedAt               string
	CompletedAt             string
}

// PromotionFilters contains filter options for listing promotions.
type PromotionFilters struct {
	EmployeeID string
	ManagerID  string
	Status     string
	Limit      int
}

// ProgressSummary aggregates a promotion's progress records.
type ProgressSummary struct {
	PromotionID       string
	Status            string
	Total             int
	FullyMastered     int
	MentorMastered    int
	EvaluatorMastered int
	CarriedForward    int
	NotStarted        int
	Percent           int
	ReadyForEvaluator bool
	ReadyToComplete   bool
}

// Certificate represents an issued completion certificate.
type Certificate struct {
	ID          string
	PromotionID string
	EmployeeID  string
	JobTitleID  string
	GradeID     string
	IssuedAt    string
}
