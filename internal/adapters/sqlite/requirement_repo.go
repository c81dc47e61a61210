package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/ports/secondary"
)

// RequirementRepository implements secondary.RequirementRepository with SQLite.
type RequirementRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewRequirementRepository creates a new SQLite requirement repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewRequirementRepository(db *sql.DB, logWriter secondary.LogWriter) *RequirementRepository {
	return &RequirementRepository{db: db, logWriter: logWriter}
}

const requirementSelectCols = "id, section_id, job_title_id, grade_id, version, created_at"

func scanRequirement(scanner interface{ Scan(...any) error }) (*secondary.RequirementRecord, error) {
	var createdAt sql.NullString
	record := &secondary.RequirementRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.SectionID,
		&record.JobTitleID,
		&record.GradeID,
		&record.Version,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.String
	return record, nil
}

// Create persists a new matrix snapshot as the next version of its level.
func (r *RequirementRepository) Create(ctx context.Context, requirement *secondary.RequirementRecord) error {
	return withTx(ctx, r.db, func(ctx context.Context, q querier) error {
		var version int
		err := q.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(version), 0) FROM requirements WHERE section_id = ? AND job_title_id = ? AND grade_id = ?",
			requirement.SectionID, requirement.JobTitleID, requirement.GradeID,
		).Scan(&version)
		if err != nil {
			return fmt.Errorf("failed to get requirement version: %w", err)
		}
		requirement.Version = version + 1

		_, err = q.ExecContext(ctx,
			"INSERT INTO requirements (id, section_id, job_title_id, grade_id, version) VALUES (?, ?, ?, ?, ?)",
			requirement.ID,
			requirement.SectionID,
			requirement.JobTitleID,
			requirement.GradeID,
			requirement.Version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Invariant("requirement %s already exists", requirement.ID)
			}
			return fmt.Errorf("failed to create requirement: %w", err)
		}

		position := 0
		for taskPos, task := range requirement.Tasks {
			for _, subtaskID := range task.SubtaskIDs {
				_, err := q.ExecContext(ctx,
					"INSERT INTO requirement_subtasks (requirement_id, task_id, task_position, subtask_id, subtask_position) VALUES (?, ?, ?, ?, ?)",
					requirement.ID, task.TaskID, taskPos, subtaskID, position,
				)
				if err != nil {
					return fmt.Errorf("failed to add subtask %s to requirement: %w", subtaskID, err)
				}
				position++
			}
		}

		if r.logWriter != nil {
			_ = r.logWriter.LogCreate(ctx, "requirement", requirement.ID)
		}
		return nil
	})
}

// GetByID retrieves a snapshot by its ID.
func (r *RequirementRepository) GetByID(ctx context.Context, id string) (*secondary.RequirementRecord, error) {
	q := conn(ctx, r.db)
	record, err := scanRequirement(q.QueryRowContext(ctx,
		"SELECT "+requirementSelectCols+" FROM requirements WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("requirement %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}

	if err := r.loadTasks(ctx, q, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetByLevel retrieves the newest snapshot for a level, or nil when none exists.
func (r *RequirementRepository) GetByLevel(ctx context.Context, sectionID, jobTitleID, gradeID string) (*secondary.RequirementRecord, error) {
	q := conn(ctx, r.db)
	record, err := scanRequirement(q.QueryRowContext(ctx,
		"SELECT "+requirementSelectCols+` FROM requirements
		 WHERE section_id = ? AND job_title_id = ? AND grade_id = ?
		 ORDER BY version DESC LIMIT 1`,
		sectionID, jobTitleID, gradeID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement by level: %w", err)
	}

	if err := r.loadTasks(ctx, q, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves the newest snapshot of every level matching the filters.
func (r *RequirementRepository) List(ctx context.Context, filters secondary.RequirementFilters) ([]*secondary.RequirementRecord, error) {
	query := "SELECT " + requirementSelectCols + ` FROM requirements r
		WHERE version = (
			SELECT MAX(version) FROM requirements r2
			WHERE r2.section_id = r.section_id AND r2.job_title_id = r.job_title_id AND r2.grade_id = r.grade_id
		)`
	args := []any{}

	if filters.SectionID != "" {
		query += " AND section_id = ?"
		args = append(args, filters.SectionID)
	}

	if filters.JobTitleID != "" {
		query += " AND job_title_id = ?"
		args = append(args, filters.JobTitleID)
	}

	query += " ORDER BY section_id, job_title_id, grade_id"

	q := conn(ctx, r.db)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	var records []*secondary.RequirementRecord
	for rows.Next() {
		record, err := scanRequirement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Tasks are loaded after the cursor is closed so a single connection suffices.
	for _, record := range records {
		if err := r.loadTasks(ctx, q, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// GetNextID returns the next available requirement ID.
func (r *RequirementRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM requirements",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next requirement ID: %w", err)
	}

	return fmt.Sprintf("REQ-%03d", maxID+1), nil
}

// SaveCatalog replaces the subtask universe of each given task.
func (r *RequirementRepository) SaveCatalog(ctx context.Context, tasks []*secondary.TaskCatalogRecord) error {
	return withTx(ctx, r.db, func(ctx context.Context, q querier) error {
		for _, task := range tasks {
			if _, err := q.ExecContext(ctx, "DELETE FROM task_catalog WHERE task_id = ?", task.TaskID); err != nil {
				return fmt.Errorf("failed to clear catalog for task %s: %w", task.TaskID, err)
			}
		}
		for _, task := range tasks {
			for i, subtaskID := range task.SubtaskIDs {
				_, err := q.ExecContext(ctx,
					"INSERT INTO task_catalog (task_id, subtask_id, task_name, position) VALUES (?, ?, ?, ?)",
					task.TaskID, subtaskID, nullString(task.Name), i,
				)
				if err != nil {
					if isUniqueViolation(err) {
						return apperr.Validation("subtask %s is already catalogued under another task", subtaskID)
					}
					return fmt.Errorf("failed to save catalog: %w", err)
				}
			}
		}
		return nil
	})
}

// GetCatalog returns task ID -> ordered subtask IDs.
func (r *RequirementRepository) GetCatalog(ctx context.Context) (map[string][]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT task_id, subtask_id FROM task_catalog ORDER BY task_id, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	defer rows.Close()

	catalog := make(map[string][]string)
	for rows.Next() {
		var taskID, subtaskID string
		if err := rows.Scan(&taskID, &subtaskID); err != nil {
			return nil, fmt.Errorf("failed to scan catalog: %w", err)
		}
		catalog[taskID] = append(catalog[taskID], subtaskID)
	}
	return catalog, rows.Err()
}

func (r *RequirementRepository) loadTasks(ctx context.Context, q querier, record *secondary.RequirementRecord) error {
	rows, err := q.QueryContext(ctx,
		`SELECT task_id, subtask_id FROM requirement_subtasks
		 WHERE requirement_id = ? ORDER BY task_position, subtask_position`,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load requirement tasks: %w", err)
	}
	defer rows.Close()

	record.Tasks = nil
	for rows.Next() {
		var taskID, subtaskID string
		if err := rows.Scan(&taskID, &subtaskID); err != nil {
			return fmt.Errorf("failed to scan requirement task: %w", err)
		}
		n := len(record.Tasks)
		if n == 0 || record.Tasks[n-1].TaskID != taskID {
			record.Tasks = append(record.Tasks, secondary.RequiredTaskRecord{TaskID: taskID})
			n++
		}
		record.Tasks[n-1].SubtaskIDs = append(record.Tasks[n-1].SubtaskIDs, subtaskID)
	}
	return rows.Err()
}

var _ secondary.RequirementRepository = (*RequirementRepository)(nil)
