package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/adapters/sqlite"
	"github.com/example/ladder/internal/ports/secondary"
)

func setupProgressTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB := setupTestDB(t)
	seedRequirement(t, testDB, "REQ-001", "G2", task("TASK-A", "SUB-A2", "SUB-A1"))
	seedPromotion(t, testDB, "PROM-001", "EMP-001", "REQ-001", "assigned")
	return testDB
}

func newProgress(subtaskID string) *secondary.ProgressRecord {
	return &secondary.ProgressRecord{
		PromotionID:     "PROM-001",
		EmployeeID:      "EMP-001",
		TaskID:          "TASK-A",
		SubtaskID:       subtaskID,
		MentorStatus:    "not_started",
		EvaluatorStatus: "not_started",
	}
}

func TestProgressRepository_UpsertBatch_InsertsInOrder(t *testing.T) {
	repo := sqlite.NewProgressRepository(setupProgressTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []*secondary.ProgressRecord{
		newProgress("SUB-A2"),
		newProgress("SUB-A1"),
	}))

	records, err := repo.ListByPromotion(ctx, "PROM-001")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SUB-A2", records[0].SubtaskID)
	assert.Equal(t, "SUB-A1", records[1].SubtaskID)
	assert.Empty(t, records[0].History)
}

func TestProgressRepository_UpsertBatch_UpdatesAndAppendsHistory(t *testing.T) {
	repo := sqlite.NewProgressRepository(setupProgressTestDB(t))
	ctx := context.Background()

	record := newProgress("SUB-A1")
	require.NoError(t, repo.UpsertBatch(ctx, []*secondary.ProgressRecord{record}))

	record.MentorStatus = "attempt_1"
	record.MentorID = "EMP-MENTOR"
	record.MentorFeedback = "close"
	record.MentorEvaluatedAt = "2026-03-03T10:00:00Z"
	record.History = []secondary.ProgressHistoryRecord{{
		ID:            "H-1",
		EvaluatorID:   "EMP-MENTOR",
		EvaluatorRole: "mentor",
		Status:        "attempt_1",
		Feedback:      "close",
		EvaluatedAt:   "2026-03-03T10:00:00Z",
	}}
	require.NoError(t, repo.UpsertBatch(ctx, []*secondary.ProgressRecord{record}))

	record.MentorStatus = "master"
	record.MentorFeedback = ""
	record.History = append(record.History, secondary.ProgressHistoryRecord{
		ID:            "H-2",
		EvaluatorID:   "EMP-MENTOR",
		EvaluatorRole: "mentor",
		Status:        "master",
		EvaluatedAt:   "2026-03-04T10:00:00Z",
	})
	// Writing the same batch twice leaves a single copy of each entry.
	require.NoError(t, repo.UpsertBatch(ctx, []*secondary.ProgressRecord{record}))
	require.NoError(t, repo.UpsertBatch(ctx, []*secondary.ProgressRecord{record}))

	records, err := repo.ListByPromotion(ctx, "PROM-001")
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, "master", got.MentorStatus)
	assert.Equal(t, "EMP-MENTOR", got.MentorID)
	assert.Empty(t, got.MentorFeedback)
	assert.Equal(t, "not_started", got.EvaluatorStatus)
	require.Len(t, got.History, 2)
	assert.Equal(t, "H-1", got.History[0].ID)
	assert.Equal(t, "close", got.History[0].Feedback)
	assert.Equal(t, "H-2", got.History[1].ID)
}

func TestProgressRepository_UpsertBatch_RollsBackOnFailure(t *testing.T) {
	repo := sqlite.NewProgressRepository(setupProgressTestDB(t))
	ctx := context.Background()

	bad := newProgress("SUB-A2")
	bad.MentorStatus = "excellent"

	err := repo.UpsertBatch(ctx, []*secondary.ProgressRecord{newProgress("SUB-A1"), bad})
	require.Error(t, err)

	records, err := repo.ListByPromotion(ctx, "PROM-001")
	require.NoError(t, err)
	assert.Empty(t, records)
}
