package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/adapters/sqlite"
	"github.com/example/ladder/internal/ports/secondary"
)

func TestTransactor_RollsBackEveryRepository(t *testing.T) {
	testDB := setupTestDB(t)
	seedRequirement(t, testDB, "REQ-001", "G2", task("TASK-A", "SUB-A1"))
	tx := sqlite.NewTransactor(testDB)
	promotions := sqlite.NewPromotionRepository(testDB, nil)
	progress := sqlite.NewProgressRepository(testDB)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		err := promotions.Create(ctx, &secondary.PromotionRecord{
			ID:               "PROM-001",
			EmployeeID:       "EMP-001",
			TargetJobTitleID: "JT-TECH",
			TargetGradeID:    "G2",
			RequirementID:    "REQ-001",
			Status:           "pending_approval",
			AssignedBy:       "MGR-001",
			AssignedAt:       "2026-03-01T09:00:00Z",
		})
		require.NoError(t, err)

		err = progress.UpsertBatch(ctx, []*secondary.ProgressRecord{{
			PromotionID:     "PROM-001",
			EmployeeID:      "EMP-001",
			TaskID:          "TASK-A",
			SubtaskID:       "SUB-A1",
			MentorStatus:    "not_started",
			EvaluatorStatus: "not_started",
		}})
		require.NoError(t, err)

		// Reads inside the unit of work see its own writes.
		records, err := progress.ListByPromotion(ctx, "PROM-001")
		require.NoError(t, err)
		assert.Len(t, records, 1)

		return boom
	})
	assert.ErrorIs(t, err, boom)

	active, err := promotions.GetActiveByEmployee(ctx, "EMP-001")
	require.NoError(t, err)
	assert.Nil(t, active)

	records, err := progress.ListByPromotion(ctx, "PROM-001")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTransactor_Commits(t *testing.T) {
	testDB := setupTestDB(t)
	tx := sqlite.NewTransactor(testDB)
	employees := sqlite.NewEmployeeRepository(testDB)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		return employees.Save(ctx, &secondary.EmployeeRecord{
			ID:         "EMP-001",
			SectionID:  "SEC-OPS",
			JobTitleID: "JT-TECH",
			GradeID:    "G1",
		})
	})
	require.NoError(t, err)

	_, err = employees.GetByID(ctx, "EMP-001")
	assert.NoError(t, err)
}
