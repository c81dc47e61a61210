package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/ports/secondary"
)

// ProgressRepository implements secondary.ProgressRepository with SQLite.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new SQLite progress repository.
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressSelectCols = `promotion_id, employee_id, task_id, subtask_id,
	mentor_status, mentor_id, mentor_feedback, mentor_evaluated_at,
	evaluator_status, evaluator_id, evaluator_feedback, evaluator_evaluated_at`

func scanProgress(scanner interface{ Scan(...any) error }) (*secondary.ProgressRecord, error) {
	var (
		mentorID             sql.NullString
		mentorFeedback       sql.NullString
		mentorEvaluatedAt    sql.NullString
		evaluatorID          sql.NullString
		evaluatorFeedback    sql.NullString
		evaluatorEvaluatedAt sql.NullString
	)

	record := &secondary.ProgressRecord{}
	err := scanner.Scan(
		&record.PromotionID,
		&record.EmployeeID,
		&record.TaskID,
		&record.SubtaskID,
		&record.MentorStatus,
		&mentorID,
		&mentorFeedback,
		&mentorEvaluatedAt,
		&record.EvaluatorStatus,
		&evaluatorID,
		&evaluatorFeedback,
		&evaluatorEvaluatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.MentorID = mentorID.String
	record.MentorFeedback = mentorFeedback.String
	record.MentorEvaluatedAt = mentorEvaluatedAt.String
	record.EvaluatorID = evaluatorID.String
	record.EvaluatorFeedback = evaluatorFeedback.String
	record.EvaluatorEvaluatedAt = evaluatorEvaluatedAt.String

	return record, nil
}

// ListByPromotion retrieves every record of a promotion in assignment order,
// each with its history.
func (r *ProgressRepository) ListByPromotion(ctx context.Context, promotionID string) ([]*secondary.ProgressRecord, error) {
	q := conn(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		"SELECT "+progressSelectCols+" FROM progress_records WHERE promotion_id = ? ORDER BY rowid",
		promotionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}

	var records []*secondary.ProgressRecord
	bySubtask := make(map[string]*secondary.ProgressRecord)
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		records = append(records, record)
		bySubtask[record.SubtaskID] = record
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(records) == 0 {
		return records, nil
	}

	history, err := r.loadHistory(ctx, q, promotionID)
	if err != nil {
		return nil, err
	}
	for subtaskID, entries := range history {
		if record, ok := bySubtask[subtaskID]; ok {
			record.History = entries
		}
	}

	return records, nil
}

// UpsertBatch writes all records in one transaction.
func (r *ProgressRepository) UpsertBatch(ctx context.Context, records []*secondary.ProgressRecord) error {
	return withTx(ctx, r.db, func(ctx context.Context, q querier) error {
		for _, record := range records {
			_, err := q.ExecContext(ctx,
				`INSERT INTO progress_records (promotion_id, employee_id, task_id, subtask_id,
					mentor_status, mentor_id, mentor_feedback, mentor_evaluated_at,
					evaluator_status, evaluator_id, evaluator_feedback, evaluator_evaluated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(promotion_id, subtask_id) DO UPDATE SET
					mentor_status = excluded.mentor_status,
					mentor_id = excluded.mentor_id,
					mentor_feedback = excluded.mentor_feedback,
					mentor_evaluated_at = excluded.mentor_evaluated_at,
					evaluator_status = excluded.evaluator_status,
					evaluator_id = excluded.evaluator_id,
					evaluator_feedback = excluded.evaluator_feedback,
					evaluator_evaluated_at = excluded.evaluator_evaluated_at,
					updated_at = CURRENT_TIMESTAMP`,
				record.PromotionID,
				record.EmployeeID,
				record.TaskID,
				record.SubtaskID,
				record.MentorStatus,
				nullString(record.MentorID),
				nullString(record.MentorFeedback),
				nullString(record.MentorEvaluatedAt),
				record.EvaluatorStatus,
				nullString(record.EvaluatorID),
				nullString(record.EvaluatorFeedback),
				nullString(record.EvaluatorEvaluatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert progress record %s/%s: %w", record.PromotionID, record.SubtaskID, err)
			}

			for seq, entry := range record.History {
				_, err := q.ExecContext(ctx,
					`INSERT OR IGNORE INTO progress_history (id, promotion_id, subtask_id, seq, evaluator_id, evaluator_role, status, feedback, evaluated_at)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					entry.ID,
					record.PromotionID,
					record.SubtaskID,
					seq,
					nullString(entry.EvaluatorID),
					entry.EvaluatorRole,
					entry.Status,
					nullString(entry.Feedback),
					entry.EvaluatedAt,
				)
				if err != nil {
					return fmt.Errorf("failed to append progress history: %w", err)
				}
			}
		}
		return nil
	})
}

// loadHistory returns subtask ID -> ordered history for a promotion.
// An empty subtaskID loads every subtask.
func (r *ProgressRepository) loadHistory(ctx context.Context, q querier, promotionID string) (map[string][]secondary.ProgressHistoryRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT subtask_id, id, evaluator_id, evaluator_role, status, feedback, evaluated_at
		 FROM progress_history WHERE promotion_id = ? ORDER BY subtask_id, seq`,
		promotionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress history: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]secondary.ProgressHistoryRecord)
	for rows.Next() {
		var (
			sub         string
			entry       secondary.ProgressHistoryRecord
			evaluatorID sql.NullString
			feedback    sql.NullString
		)
		if err := rows.Scan(&sub, &entry.ID, &evaluatorID, &entry.EvaluatorRole, &entry.Status, &feedback, &entry.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress history: %w", err)
		}
		entry.EvaluatorID = evaluatorID.String
		entry.Feedback = feedback.String
		history[sub] = append(history[sub], entry)
	}
	return history, rows.Err()
}

var _ secondary.ProgressRepository = (*ProgressRepository)(nil)
