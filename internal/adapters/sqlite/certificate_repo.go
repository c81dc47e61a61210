package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/ports/secondary"
)

// CertificateRepository implements secondary.CertificateRepository with SQLite.
type CertificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new SQLite certificate repository.
func NewCertificateRepository(db *sql.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Issue records a certificate unless the promotion already has one.
func (r *CertificateRepository) Issue(ctx context.Context, certificate *secondary.CertificateRecord) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO certificates (id, promotion_id, employee_id, job_title_id, grade_id, issued_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(promotion_id) DO NOTHING`,
		certificate.ID,
		certificate.PromotionID,
		certificate.EmployeeID,
		certificate.JobTitleID,
		certificate.GradeID,
		certificate.IssuedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to issue certificate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// GetByPromotion returns the certificate of a promotion, or nil.
func (r *CertificateRepository) GetByPromotion(ctx context.Context, promotionID string) (*secondary.CertificateRecord, error) {
	c := &secondary.CertificateRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, promotion_id, employee_id, job_title_id, grade_id, issued_at FROM certificates WHERE promotion_id = ?",
		promotionID,
	).Scan(&c.ID, &c.PromotionID, &c.EmployeeID, &c.JobTitleID, &c.GradeID, &c.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return c, nil
}

var _ secondary.CertificateRepository = (*CertificateRepository)(nil)
