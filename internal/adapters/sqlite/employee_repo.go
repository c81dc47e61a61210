package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/ports/secondary"
)

// EmployeeRepository implements secondary.EmployeeRepository with SQLite.
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeSelectCols = "id, name, section_id, job_title_id, grade_id, manager_id"

func scanEmployee(scanner interface{ Scan(...any) error }) (*secondary.EmployeeRecord, error) {
	var managerID sql.NullString
	record := &secondary.EmployeeRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.Name,
		&record.SectionID,
		&record.JobTitleID,
		&record.GradeID,
		&managerID,
	)
	if err != nil {
		return nil, err
	}
	record.ManagerID = managerID.String
	return record, nil
}

// Save inserts or replaces an employee.
func (r *EmployeeRepository) Save(ctx context.Context, employee *secondary.EmployeeRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO employees (id, name, section_id, job_title_id, grade_id, manager_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			section_id = excluded.section_id,
			job_title_id = excluded.job_title_id,
			grade_id = excluded.grade_id,
			manager_id = excluded.manager_id,
			updated_at = CURRENT_TIMESTAMP`,
		employee.ID,
		employee.Name,
		employee.SectionID,
		employee.JobTitleID,
		employee.GradeID,
		nullString(employee.ManagerID),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*secondary.EmployeeRecord, error) {
	record, err := scanEmployee(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+employeeSelectCols+" FROM employees WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("employee %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return record, nil
}

// List retrieves employees, optionally restricted to one manager.
func (r *EmployeeRepository) List(ctx context.Context, managerID string) ([]*secondary.EmployeeRecord, error) {
	query := "SELECT " + employeeSelectCols + " FROM employees"
	args := []any{}
	if managerID != "" {
		query += " WHERE manager_id = ?"
		args = append(args, managerID)
	}
	query += " ORDER BY id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*secondary.EmployeeRecord
	for rows.Next() {
		record, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, record)
	}
	return employees, rows.Err()
}

// UpdateLevel moves an employee to a new job title and grade.
func (r *EmployeeRepository) UpdateLevel(ctx context.Context, id, jobTitleID, gradeID string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE employees SET job_title_id = ?, grade_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		jobTitleID, gradeID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee level: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("employee %s not found", id)
	}
	return nil
}

var _ secondary.EmployeeRepository = (*EmployeeRepository)(nil)
