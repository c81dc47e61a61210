package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/adapters/sqlite"
	"github.com/example/ladder/internal/apperr"
)

func TestEmployeeRepository_SaveAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewEmployeeRepository(testDB)
	ctx := context.Background()

	seedEmployee(t, testDB, "EMP-001", "")
	seedEmployee(t, testDB, "EMP-002", "EMP-001")

	got, err := repo.GetByID(ctx, "EMP-002")
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", got.ManagerID)
	assert.Equal(t, "G1", got.GradeID)

	manager, err := repo.GetByID(ctx, "EMP-001")
	require.NoError(t, err)
	assert.Empty(t, manager.ManagerID)

	reports, err := repo.List(ctx, "EMP-001")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "EMP-002", reports[0].ID)
}

func TestEmployeeRepository_UpdateLevel(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewEmployeeRepository(testDB)
	ctx := context.Background()

	seedEmployee(t, testDB, "EMP-001", "")

	require.NoError(t, repo.UpdateLevel(ctx, "EMP-001", "JT-LEAD", "G2"))

	got, err := repo.GetByID(ctx, "EMP-001")
	require.NoError(t, err)
	assert.Equal(t, "JT-LEAD", got.JobTitleID)
	assert.Equal(t, "G2", got.GradeID)

	err = repo.UpdateLevel(ctx, "EMP-404", "JT-LEAD", "G2")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
