// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Use setupTestDB() and the seed* helpers instead of
// declaring tables in test files.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/adapters/sqlite"
	"github.com/example/ladder/internal/db"
	"github.com/example/ladder/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: every :memory: connection is its own
// database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "failed to open test db")
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err, "failed to create schema")

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedEmployee inserts an employee at JT-TECH/G1 in SEC-OPS.
func seedEmployee(t *testing.T, testDB *sql.DB, id, managerID string) {
	t.Helper()
	repo := sqlite.NewEmployeeRepository(testDB)
	err := repo.Save(context.Background(), &secondary.EmployeeRecord{
		ID:         id,
		Name:       "Employee " + id,
		SectionID:  "SEC-OPS",
		JobTitleID: "JT-TECH",
		GradeID:    "G1",
		ManagerID:  managerID,
	})
	require.NoError(t, err, "failed to seed employee")
}

// seedRequirement inserts a matrix snapshot for SEC-OPS/JT-TECH/<grade>.
func seedRequirement(t *testing.T, testDB *sql.DB, id, grade string, tasks ...secondary.RequiredTaskRecord) *secondary.RequirementRecord {
	t.Helper()
	record := &secondary.RequirementRecord{
		ID:         id,
		SectionID:  "SEC-OPS",
		JobTitleID: "JT-TECH",
		GradeID:    grade,
		Tasks:      tasks,
	}
	err := sqlite.NewRequirementRepository(testDB, nil).Create(context.Background(), record)
	require.NoError(t, err, "failed to seed requirement")
	return record
}

// seedPromotion inserts a promotion for employeeID against requirementID.
func seedPromotion(t *testing.T, testDB *sql.DB, id, employeeID, requirementID, status string) *secondary.PromotionRecord {
	t.Helper()
	record := &secondary.PromotionRecord{
		ID:               id,
		EmployeeID:       employeeID,
		ManagerID:        "MGR-001",
		TargetJobTitleID: "JT-TECH",
		TargetGradeID:    "G2",
		RequirementID:    requirementID,
		Status:           status,
		AssignedBy:       "MGR-001",
		AssignedAt:       "2026-03-01T09:00:00Z",
	}
	err := sqlite.NewPromotionRepository(testDB, nil).Create(context.Background(), record)
	require.NoError(t, err, "failed to seed promotion")
	return record
}

func task(id string, subtasks ...string) secondary.RequiredTaskRecord {
	return secondary.RequiredTaskRecord{TaskID: id, SubtaskIDs: subtasks}
}
