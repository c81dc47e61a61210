package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// mockAuditLogRepository implements secondary.AuditLogRepository for testing.
type mockAuditLogRepository struct {
	entries []*secondary.AuditLogRecord
	listErr error
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *secondary.AuditLogRecord) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.AuditLogRecord
	for _, e := range m.entries {
		if filters.EntityType != "" && e.EntityType != filters.EntityType {
			continue
		}
		if filters.EntityID != "" && e.EntityID != filters.EntityID {
			continue
		}
		if filters.ActorID != "" && e.ActorID != filters.ActorID {
			continue
		}
		result = append(result, e)
		if filters.Limit > 0 && len(result) == filters.Limit {
			break
		}
	}
	return result, nil
}

func TestListLogs_FiltersAndConverts(t *testing.T) {
	repo := &mockAuditLogRepository{entries: []*secondary.AuditLogRecord{
		{ID: "a1", ActorID: "MGR-001", EntityType: "promotion", EntityID: "PROM-001", Action: "create", CreatedAt: "2026-01-02T03:04:05Z"},
		{ID: "a2", ActorID: "MGR-001", EntityType: "promotion", EntityID: "PROM-001", Action: "update",
			FieldName: "status", OldValue: "pending_approval", NewValue: "pending_employee_approval"},
		{ID: "a3", ActorID: "EMP-001", EntityType: "progress", EntityID: "PROM-001/SUB-A", Action: "update"},
	}}
	service := NewLogService(repo)

	entries, err := service.ListLogs(context.Background(), primary.LogFilters{EntityID: "PROM-001"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, "2026-01-02T03:04:05Z", entries[0].CreatedAt)
	assert.Equal(t, "status", entries[1].FieldName)
	assert.Equal(t, "pending_employee_approval", entries[1].NewValue)

	entries, err = service.ListLogs(context.Background(), primary.LogFilters{ActorID: "EMP-001"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "progress", entries[0].EntityType)

	entries, err = service.ListLogs(context.Background(), primary.LogFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListLogs_RepositoryError(t *testing.T) {
	service := NewLogService(&mockAuditLogRepository{listErr: errors.New("disk gone")})

	_, err := service.ListLogs(context.Background(), primary.LogFilters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list logs")
}
