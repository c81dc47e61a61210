// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the promotion engine reaches its
// collaborators: the record store, notification delivery and certificates.
package secondary

import "context"

// Transactor runs a unit of work atomically. Repositories called with the
// context handed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RequirementRepository defines the secondary port for requirement matrices.
// Matrices are immutable snapshots: saving a level creates a new version, so
// promotions keep pointing at the snapshot they were assigned against.
type RequirementRepository interface {
	// Create persists a new matrix snapshot, assigning the next version for
	// its level. The caller supplies the ID via GetNextID.
	Create(ctx context.Context, requirement *RequirementRecord) error

	// GetByID retrieves a snapshot by its ID.
	GetByID(ctx context.Context, id string) (*RequirementRecord, error)

	// GetByLevel retrieves the newest snapshot for a level.
	// Returns nil, nil when no requirement exists for the level.
	GetByLevel(ctx context.Context, sectionID, jobTitleID, gradeID string) (*RequirementRecord, error)

	// List retrieves the newest snapshot of every level matching the filters.
	List(ctx context.Context, filters RequirementFilters) ([]*RequirementRecord, error)

	// GetNextID returns the next available requirement ID.
	GetNextID(ctx context.Context) (string, error)

	// SaveCatalog replaces the subtask universe of the given tasks.
	SaveCatalog(ctx context.Context, tasks []*TaskCatalogRecord) error

	// GetCatalog returns task ID -> subtask IDs. Empty when no catalog is loaded.
	GetCatalog(ctx context.Context) (map[string][]string, error)
}

// RequirementRecord represents a requirement matrix snapshot as stored in persistence.
type RequirementRecord struct {
	ID         string
	SectionID  string
	JobTitleID string
	GradeID    string
	Version    int
	Tasks      []RequiredTaskRecord
	CreatedAt  string
}

// RequiredTaskRecord is one ordered task row of a matrix.
type RequiredTaskRecord struct {
	TaskID     string
	SubtaskIDs []string
}

// RequirementFilters contains filter options for querying requirements.
type RequirementFilters struct {
	SectionID  string
	JobTitleID string
}

// TaskCatalogRecord lists the subtasks that belong to a task.
type TaskCatalogRecord struct {
	TaskID     string
	Name       string
	SubtaskIDs []string
}

// EmployeeRepository defines the secondary port for employee lookups.
// Employees are owned by the organisational taxonomy; the engine only reads
// them, and advances their level when a promotion completes.
type EmployeeRepository interface {
	// Save inserts or replaces an employee.
	Save(ctx context.Context, employee *EmployeeRecord) error

	// GetByID retrieves an employee by ID.
	GetByID(ctx context.Context, id string) (*EmployeeRecord, error)

	// List retrieves employees, optionally restricted to one manager.
	List(ctx context.Context, managerID string) ([]*EmployeeRecord, error)

	// UpdateLevel moves an employee to a new job title and grade.
	UpdateLevel(ctx context.Context, id, jobTitleID, gradeID string) error
}

// EmployeeRecord represents an employee as stored in persistence.
type EmployeeRecord struct {
	ID         string
	Name       string
	SectionID  string
	JobTitleID string
	GradeID    string
	ManagerID  string // Empty string means null
}

// PromotionRepository defines the secondary port for promotion persistence.
type PromotionRepository interface {
	// Create persists a new promotion. Returns an apperr.ErrInvariant error
	// when the employee already has an active promotion.
	Create(ctx context.Context, promotion *PromotionRecord) error

	// GetByID retrieves a promotion by its ID.
	GetByID(ctx context.Context, id string) (*PromotionRecord, error)

	// Update persists status and audit fields of an existing promotion.
	Update(ctx context.Context, promotion *PromotionRecord) error

	// List retrieves promotions matching the given filters.
	List(ctx context.Context, filters PromotionFilters) ([]*PromotionRecord, error)

	// GetActiveByEmployee returns the employee's active promotion, or nil, nil.
	GetActiveByEmployee(ctx context.Context, employeeID string) (*PromotionRecord, error)

	// GetNextID returns the next available promotion ID.
	GetNextID(ctx context.Context) (string, error)
}

// PromotionRecord represents a promotion as stored in persistence.
// Timestamps are RFC3339; empty strings mean null.
type PromotionRecord struct {
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

// PromotionFilters contains filter options for querying promotions.
type PromotionFilters struct {
	EmployeeID string
	ManagerID  string
	Status     string
	Limit      int
}

// ProgressRepository defines the secondary port for progress records.
// Records are keyed by (promotion ID, subtask ID) and never deleted.
type ProgressRepository interface {
	// ListByPromotion retrieves every record of a promotion with its history.
	ListByPromotion(ctx context.Context, promotionID string) ([]*ProgressRecord, error)

	// UpsertBatch writes all records atomically, updating by natural key or
	// inserting. History entries are appended by ID; existing entries are
	// left untouched, so replaying a batch is harmless.
	UpsertBatch(ctx context.Context, records []*ProgressRecord) error
}

// ProgressRecord represents a progress record as stored in persistence.
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
	History              []ProgressHistoryRecord
}

// ProgressHistoryRecord is one append-only evaluation entry.
type ProgressHistoryRecord struct {
	ID            string
	EvaluatorID   string
	EvaluatorRole string
	Status        string
	Feedback      string
	EvaluatedAt   string
}

// Notifier hands promotion events to the notification collaborator.
type Notifier interface {
	Notify(ctx context.Context, notification *NotificationRecord) error
}

// NotificationRepository is a Notifier backed by a readable outbox.
type NotificationRepository interface {
	Notifier

	// List retrieves queued notifications, newest first.
	List(ctx context.Context, filters NotificationFilters) ([]*NotificationRecord, error)
}

// NotificationRecord is the payload handed to the delivery collaborator.
type NotificationRecord struct {
	ID          string
	RecipientID string
	EventType   string
	PromotionID string
	Message     string
	CreatedAt   string
}

// NotificationFilters contains filter options for querying notifications.
type NotificationFilters struct {
	RecipientID string
	PromotionID string
}

// CertificateIssuer issues completion certificates.
type CertificateIssuer interface {
	// Issue records a certificate. Issuing twice for the same promotion is a
	// no-op; issued reports whether this call created it.
	Issue(ctx context.Context, certificate *CertificateRecord) (issued bool, err error)
}

// CertificateRepository is a CertificateIssuer that can be queried.
type CertificateRepository interface {
	CertificateIssuer

	// GetByPromotion returns the certificate of a promotion, or nil, nil.
	GetByPromotion(ctx context.Context, promotionID string) (*CertificateRecord, error)
}

// CertificateRecord represents an issued certificate.
type CertificateRecord struct {
	ID          string
	PromotionID string
	EmployeeID  string
	JobTitleID  string
	GradeID     string
	IssuedAt    string
}
