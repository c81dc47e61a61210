package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/ports/secondary"
)

// PromotionRepository implements secondary.PromotionRepository with SQLite.
type PromotionRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewPromotionRepository creates a new SQLite promotion repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewPromotionRepository(db *sql.DB, logWriter secondary.LogWriter) *PromotionRepository {
	return &PromotionRepository{db: db, logWriter: logWriter}
}

// activeStatusList must match the partial index idx_promotions_one_active.
const activeStatusList = "('pending_approval', 'pending_employee_approval', 'assigned', 'in_progress')"

const promotionSelectCols = `id, employee_id, manager_id, target_job_title_id, target_grade_id, requirement_id, status,
	assigned_by, assigned_at, approved_by, approved_at, employee_approved_by, employee_approved_at,
	rejected_by, rejected_at, rejection_reason, employee_rejected_by, employee_rejected_at, employee_rejection_reason,
	started_at, completed_at`

func scanPromotion(scanner interface{ Scan(...any) error }) (*secondary.PromotionRecord, error) {
	var (
		managerID               sql.NullString
		approvedBy              sql.NullString
		approvedAt              sql.NullString
		employeeApprovedBy      sql.NullString
		employeeApprovedAt      sql.NullString
		rejectedBy              sql.NullString
		rejectedAt              sql.NullString
		rejectionReason         sql.NullString
		employeeRejectedBy      sql.NullString
		employeeRejectedAt      sql.NullString
		employeeRejectionReason sql.NullString
		startedAt               sql.NullString
		completedAt             sql.NullString
	)

	record := &secondary.PromotionRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.EmployeeID,
		&managerID,
		&record.TargetJobTitleID,
		&record.TargetGradeID,
		&record.RequirementID,
		&record.Status,
		&record.AssignedBy,
		&record.AssignedAt,
		&approvedBy,
		&approvedAt,
		&employeeApprovedBy,
		&employeeApprovedAt,
		&rejectedBy,
		&rejectedAt,
		&rejectionReason,
		&employeeRejectedBy,
		&employeeRejectedAt,
		&employeeRejectionReason,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ManagerID = managerID.String
	record.ApprovedBy = approvedBy.String
	record.ApprovedAt = approvedAt.String
	record.EmployeeApprovedBy = employeeApprovedBy.String
	record.EmployeeApprovedAt = employeeApprovedAt.String
	record.RejectedBy = rejectedBy.String
	record.RejectedAt = rejectedAt.String
	record.RejectionReason = rejectionReason.String
	record.EmployeeRejectedBy = employeeRejectedBy.String
	record.EmployeeRejectedAt = employeeRejectedAt.String
	record.EmployeeRejectionReason = employeeRejectionReason.String
	record.StartedAt = startedAt.String
	record.CompletedAt = completedAt.String

	return record, nil
}

// Create persists a new promotion.
// A second active promotion for the same employee trips the partial unique
// index and is reported as an invariant violation.
func (r *PromotionRepository) Create(ctx context.Context, promotion *secondary.PromotionRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO promotions (id, employee_id, manager_id, target_job_title_id, target_grade_id, requirement_id, status, assigned_by, assigned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		promotion.ID,
		promotion.EmployeeID,
		nullString(promotion.ManagerID),
		promotion.TargetJobTitleID,
		promotion.TargetGradeID,
		promotion.RequirementID,
		promotion.Status,
		promotion.AssignedBy,
		promotion.AssignedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Invariant("employee %s already has an active promotion", promotion.EmployeeID)
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "promotion", promotion.ID)
	}

	return nil
}

// GetByID retrieves a promotion by its ID.
func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*secondary.PromotionRecord, error) {
	record, err := scanPromotion(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+promotionSelectCols+" FROM promotions WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("promotion %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return record, nil
}

// Update persists status and audit fields of an existing promotion.
func (r *PromotionRepository) Update(ctx context.Context, promotion *secondary.PromotionRecord) error {
	q := conn(ctx, r.db)

	var oldStatus string
	if r.logWriter != nil {
		err := q.QueryRowContext(ctx, "SELECT status FROM promotions WHERE id = ?", promotion.ID).Scan(&oldStatus)
		if err == sql.ErrNoRows {
			return apperr.NotFound("promotion %s not found", promotion.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to get promotion status: %w", err)
		}
	}

	result, err := q.ExecContext(ctx,
		`UPDATE promotions SET
			manager_id = ?,
			status = ?,
			approved_by = ?,
			approved_at = ?,
			employee_approved_by = ?,
			employee_approved_at = ?,
			rejected_by = ?,
			rejected_at = ?,
			rejection_reason = ?,
			employee_rejected_by = ?,
			employee_rejected_at = ?,
			employee_rejection_reason = ?,
			started_at = ?,
			completed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullString(promotion.ManagerID),
		promotion.Status,
		nullString(promotion.ApprovedBy),
		nullString(promotion.ApprovedAt),
		nullString(promotion.EmployeeApprovedBy),
		nullString(promotion.EmployeeApprovedAt),
		nullString(promotion.RejectedBy),
		nullString(promotion.RejectedAt),
		nullString(promotion.RejectionReason),
		nullString(promotion.EmployeeRejectedBy),
		nullString(promotion.EmployeeRejectedAt),
		nullString(promotion.EmployeeRejectionReason),
		nullString(promotion.StartedAt),
		nullString(promotion.CompletedAt),
		promotion.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("promotion %s not found", promotion.ID)
	}

	if r.logWriter != nil && oldStatus != promotion.Status {
		_ = r.logWriter.LogUpdate(ctx, "promotion", promotion.ID, "status", oldStatus, promotion.Status)
	}

	return nil
}

// List retrieves promotions matching the given filters, newest first.
func (r *PromotionRepository) List(ctx context.Context, filters secondary.PromotionFilters) ([]*secondary.PromotionRecord, error) {
	query := "SELECT " + promotionSelectCols + " FROM promotions WHERE 1=1"
	args := []any{}

	if filters.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, filters.EmployeeID)
	}

	if filters.ManagerID != "" {
		query += " AND manager_id = ?"
		args = append(args, filters.ManagerID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY assigned_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	var promotions []*secondary.PromotionRecord
	for rows.Next() {
		record, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, record)
	}

	return promotions, rows.Err()
}

// GetActiveByEmployee returns the employee's active promotion, or nil.
func (r *PromotionRepository) GetActiveByEmployee(ctx context.Context, employeeID string) (*secondary.PromotionRecord, error) {
	record, err := scanPromotion(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+promotionSelectCols+" FROM promotions WHERE employee_id = ? AND status IN "+activeStatusList,
		employeeID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active promotion: %w", err)
	}
	return record, nil
}

// GetNextID returns the next available promotion ID.
func (r *PromotionRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM promotions",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next promotion ID: %w", err)
	}

	return fmt.Sprintf("PROM-%03d", maxID+1), nil
}

var _ secondary.PromotionRepository = (*PromotionRepository)(nil)
