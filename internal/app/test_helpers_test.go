package app

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/ctxutil"
	"github.com/example/ladder/internal/logging"
	"github.com/example/ladder/internal/ports/secondary"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func asActor(actorID string) context.Context {
	return ctxutil.WithActorID(context.Background(), actorID)
}

// ============================================================================
// Mock Transactor
// ============================================================================

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// ============================================================================
// Mock EmployeeRepository
// ============================================================================

type mockEmployeeRepository struct {
	employees      map[string]*secondary.EmployeeRecord
	updateLevelErr error
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{employees: make(map[string]*secondary.EmployeeRecord)}
}

func (m *mockEmployeeRepository) Save(ctx context.Context, employee *secondary.EmployeeRecord) error {
	cp := *employee
	m.employees[employee.ID] = &cp
	return nil
}

func (m *mockEmployeeRepository) GetByID(ctx context.Context, id string) (*secondary.EmployeeRecord, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, apperr.NotFound("employee %s not found", id)
	}
	cp := *e
	return &cp, nil
}

func (m *mockEmployeeRepository) List(ctx context.Context, managerID string) ([]*secondary.EmployeeRecord, error) {
	var out []*secondary.EmployeeRecord
	for _, e := range m.employees {
		if managerID == "" || e.ManagerID == managerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEmployeeRepository) UpdateLevel(ctx context.Context, id, jobTitleID, gradeID string) error {
	if m.updateLevelErr != nil {
		return m.updateLevelErr
	}
	e, ok := m.employees[id]
	if !ok {
		return apperr.NotFound("employee %s not found", id)
	}
	e.JobTitleID = jobTitleID
	e.GradeID = gradeID
	return nil
}

// ============================================================================
// Mock RequirementRepository
// ============================================================================

type mockRequirementRepository struct {
	requirements []*secondary.RequirementRecord
	catalog      map[string][]string
}

func newMockRequirementRepository() *mockRequirementRepository {
	return &mockRequirementRepository{catalog: make(map[string][]string)}
}

func copyRequirement(r *secondary.RequirementRecord) *secondary.RequirementRecord {
	cp := *r
	cp.Tasks = nil
	for _, t := range r.Tasks {
		cp.Tasks = append(cp.Tasks, secondary.RequiredTaskRecord{
			TaskID:     t.TaskID,
			SubtaskIDs: append([]string(nil), t.SubtaskIDs...),
		})
	}
	return &cp
}

func (m *mockRequirementRepository) Create(ctx context.Context, requirement *secondary.RequirementRecord) error {
	version := 0
	for _, r := range m.requirements {
		if r.SectionID == requirement.SectionID && r.JobTitleID == requirement.JobTitleID && r.GradeID == requirement.GradeID && r.Version > version {
			version = r.Version
		}
	}
	requirement.Version = version + 1
	m.requirements = append(m.requirements, copyRequirement(requirement))
	return nil
}

func (m *mockRequirementRepository) GetByID(ctx context.Context, id string) (*secondary.RequirementRecord, error) {
	for _, r := range m.requirements {
		if r.ID == id {
			return copyRequirement(r), nil
		}
	}
	return nil, apperr.NotFound("requirement %s not found", id)
}

func (m *mockRequirementRepository) GetByLevel(ctx context.Context, sectionID, jobTitleID, gradeID string) (*secondary.RequirementRecord, error) {
	var latest *secondary.RequirementRecord
	for _, r := range m.requirements {
		if r.SectionID == sectionID && r.JobTitleID == jobTitleID && r.GradeID == gradeID {
			if latest == nil || r.Version > latest.Version {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyRequirement(latest), nil
}

func (m *mockRequirementRepository) List(ctx context.Context, filters secondary.RequirementFilters) ([]*secondary.RequirementRecord, error) {
	var out []*secondary.RequirementRecord
	for _, r := range m.requirements {
		if filters.SectionID != "" && r.SectionID != filters.SectionID {
			continue
		}
		if filters.JobTitleID != "" && r.JobTitleID != filters.JobTitleID {
			continue
		}
		latest, _ := m.GetByLevel(ctx, r.SectionID, r.JobTitleID, r.GradeID)
		if latest.ID == r.ID {
			out = append(out, copyRequirement(r))
		}
	}
	return out, nil
}

func (m *mockRequirementRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("REQ-%03d", len(m.requirements)+1), nil
}

func (m *mockRequirementRepository) SaveCatalog(ctx context.Context, tasks []*secondary.TaskCatalogRecord) error {
	for _, t := range tasks {
		m.catalog[t.TaskID] = append([]string(nil), t.SubtaskIDs...)
	}
	return nil
}

func (m *mockRequirementRepository) GetCatalog(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(m.catalog))
	for k, v := range m.catalog {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

// ============================================================================
// Mock PromotionRepository
// ============================================================================

type mockPromotionRepository struct {
	promotions map[string]*secondary.PromotionRecord
	updates    int
}

func newMockPromotionRepository() *mockPromotionRepository {
	return &mockPromotionRepository{promotions: make(map[string]*secondary.PromotionRecord)}
}

func (m *mockPromotionRepository) Create(ctx context.Context, p *secondary.PromotionRecord) error {
	if active, _ := m.GetActiveByEmployee(ctx, p.EmployeeID); active != nil {
		return apperr.Invariant("employee %s already has an active promotion", p.EmployeeID)
	}
	cp := *p
	m.promotions[p.ID] = &cp
	return nil
}

func (m *mockPromotionRepository) GetByID(ctx context.Context, id string) (*secondary.PromotionRecord, error) {
	p, ok := m.promotions[id]
	if !ok {
		return nil, apperr.NotFound("promotion %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPromotionRepository) Update(ctx context.Context, p *secondary.PromotionRecord) error {
	if _, ok := m.promotions[p.ID]; !ok {
		return apperr.NotFound("promotion %s not found", p.ID)
	}
	m.updates++
	cp := *p
	m.promotions[p.ID] = &cp
	return nil
}

func (m *mockPromotionRepository) List(ctx context.Context, filters secondary.PromotionFilters) ([]*secondary.PromotionRecord, error) {
	var out []*secondary.PromotionRecord
	for _, p := range m.promotions {
		if filters.EmployeeID != "" && p.EmployeeID != filters.EmployeeID {
			continue
		}
		if filters.ManagerID != "" && p.ManagerID != filters.ManagerID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (m *mockPromotionRepository) GetActiveByEmployee(ctx context.Context, employeeID string) (*secondary.PromotionRecord, error) {
	for _, p := range m.promotions {
		if p.EmployeeID == employeeID && promotion.Status(p.Status).Active() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPromotionRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("PROM-%03d", len(m.promotions)+1), nil
}

// ============================================================================
// Mock ProgressRepository
// ============================================================================

type mockProgressRepository struct {
	records   map[string][]*secondary.ProgressRecord
	upsertErr error
	upserts   int
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{records: make(map[string][]*secondary.ProgressRecord)}
}

func copyProgress(r *secondary.ProgressRecord) *secondary.ProgressRecord {
	cp := *r
	cp.History = append([]secondary.ProgressHistoryRecord(nil), r.History...)
	return &cp
}

func (m *mockProgressRepository) ListByPromotion(ctx context.Context, promotionID string) ([]*secondary.ProgressRecord, error) {
	var out []*secondary.ProgressRecord
	for _, r := range m.records[promotionID] {
		out = append(out, copyProgress(r))
	}
	return out, nil
}

func (m *mockProgressRepository) UpsertBatch(ctx context.Context, records []*secondary.ProgressRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, r := range records {
		existing := m.records[r.PromotionID]
		replaced := false
		for i, e := range existing {
			if e.SubtaskID == r.SubtaskID {
				existing[i] = copyProgress(r)
				replaced = true
			}
		}
		if !replaced {
			m.records[r.PromotionID] = append(existing, copyProgress(r))
		}
	}
	return nil
}

// ============================================================================
// Mock outbox repositories
// ============================================================================

type mockNotificationRepository struct {
	notifications []*secondary.NotificationRecord
	notifyErr     error
}

func (m *mockNotificationRepository) Notify(ctx context.Context, n *secondary.NotificationRecord) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, filters secondary.NotificationFilters) ([]*secondary.NotificationRecord, error) {
	var out []*secondary.NotificationRecord
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if filters.RecipientID != "" && n.RecipientID != filters.RecipientID {
			continue
		}
		if filters.PromotionID != "" && n.PromotionID != filters.PromotionID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// byEvent returns recipients of notifications with the given event type.
func (m *mockNotificationRepository) byEvent(eventType string) []string {
	var recipients []string
	for _, n := range m.notifications {
		if n.EventType == eventType {
			recipients = append(recipients, n.RecipientID)
		}
	}
	return recipients
}

type mockCertificateRepository struct {
	certificates map[string]*secondary.CertificateRecord
	issueCalls   int
}

func newMockCertificateRepository() *mockCertificateRepository {
	return &mockCertificateRepository{certificates: make(map[string]*secondary.CertificateRecord)}
}

func (m *mockCertificateRepository) Issue(ctx context.Context, c *secondary.CertificateRecord) (bool, error) {
	m.issueCalls++
	if _, ok := m.certificates[c.PromotionID]; ok {
		return false, nil
	}
	cp := *c
	m.certificates[c.PromotionID] = &cp
	return true, nil
}

func (m *mockCertificateRepository) GetByPromotion(ctx context.Context, promotionID string) (*secondary.CertificateRecord, error) {
	c, ok := m.certificates[promotionID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// ============================================================================
// Test environment
// ============================================================================

// testEnv wires every service against in-memory mocks. The organisation:
//
//	MGR-001 manages EMP-001 (JT-TECH/G1)
//	JT-TECH/G1 requires TASK-X{SUB-A, SUB-B}
//	JT-TECH/G2 requires TASK-X{SUB-A, SUB-B} + TASK-Y{SUB-C}
type testEnv struct {
	tx            *mockTransactor
	employees     *mockEmployeeRepository
	requirements  *mockRequirementRepository
	promotions    *mockPromotionRepository
	progress      *mockProgressRepository
	notifications *mockNotificationRepository
	certificates  *mockCertificateRepository

	mastery     *MasteryServiceImpl
	promotion   *PromotionServiceImpl
	evaluation  *EvaluationServiceImpl
	requirement *RequirementServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tx:            &mockTransactor{},
		employees:     newMockEmployeeRepository(),
		requirements:  newMockRequirementRepository(),
		promotions:    newMockPromotionRepository(),
		progress:      newMockProgressRepository(),
		notifications: &mockNotificationRepository{},
		certificates:  newMockCertificateRepository(),
	}

	ctx := context.Background()
	for _, e := range []*secondary.EmployeeRecord{
		{ID: "MGR-001", SectionID: "SEC-OPS", JobTitleID: "JT-LEAD", GradeID: "G1"},
		{ID: "EMP-001", SectionID: "SEC-OPS", JobTitleID: "JT-TECH", GradeID: "G1", ManagerID: "MGR-001"},
		{ID: "EMP-002", SectionID: "SEC-OPS", JobTitleID: "JT-TECH", GradeID: "G1"},
	} {
		_ = env.employees.Save(ctx, e)
	}
	_ = env.requirements.Create(ctx, &secondary.RequirementRecord{
		ID: "REQ-001", SectionID: "SEC-OPS", JobTitleID: "JT-TECH", GradeID: "G1",
		Tasks: []secondary.RequiredTaskRecord{{TaskID: "TASK-X", SubtaskIDs: []string{"SUB-A", "SUB-B"}}},
	})
	_ = env.requirements.Create(ctx, &secondary.RequirementRecord{
		ID: "REQ-002", SectionID: "SEC-OPS", JobTitleID: "JT-TECH", GradeID: "G2",
		Tasks: []secondary.RequiredTaskRecord{
			{TaskID: "TASK-X", SubtaskIDs: []string{"SUB-A", "SUB-B"}},
			{TaskID: "TASK-Y", SubtaskIDs: []string{"SUB-C"}},
		},
	})

	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("H-%d", seq)
	}

	executor := NewEffectExecutor(env.notifications, env.certificates, env.employees, logging.Discard())
	executor.now = func() time.Time { return testNow }

	env.mastery = NewMasteryService(env.employees, env.requirements, env.promotions, env.progress)
	env.promotion = NewPromotionService(
		env.tx, env.promotions, env.progress, env.requirements, env.employees, env.certificates,
		env.mastery, executor,
		PromotionOptions{
			AdvanceLevelOnComplete: true,
			Logger:                 logging.Discard(),
			Now:                    func() time.Time { return testNow },
			NewID:                  newID,
		},
	)
	env.evaluation = NewEvaluationService(env.tx, env.promotions, env.progress, env.promotion)
	env.requirement = NewRequirementService(env.requirements)
	return env
}

// assignToG2 assigns EMP-001 to JT-TECH/G2 as MGR-001.
func (env *testEnv) assignToG2(t *testing.T) string {
	t.Helper()
	resp, err := env.promotion.AssignPromotion(asActor("MGR-001"), primaryAssignG2())
	if err != nil {
		t.Fatalf("AssignPromotion failed: %v", err)
	}
	return resp.PromotionID
}

// assignAndAccept assigns EMP-001 to G2 and walks both approvals.
func (env *testEnv) assignAndAccept(t *testing.T) string {
	t.Helper()
	id := env.assignToG2(t)
	if _, err := env.promotion.ApprovePromotion(asActor("MGR-001"), id); err != nil {
		t.Fatalf("ApprovePromotion failed: %v", err)
	}
	if _, err := env.promotion.AcceptPromotion(asActor("EMP-001"), id); err != nil {
		t.Fatalf("AcceptPromotion failed: %v", err)
	}
	return id
}
