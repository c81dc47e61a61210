package db

import "database/sql"

// coreTablesSQL holds the requirement, employee, promotion and progress tables.
const coreTablesSQL = `
-- Task catalog (subtask universe per task, owned by the taxonomy)
CREATE TABLE IF NOT EXISTS task_catalog (
	task_id TEXT NOT NULL,
	subtask_id TEXT NOT NULL UNIQUE,
	task_name TEXT,
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (task_id, subtask_id)
);

-- Employees (read collaborator; level advances when a promotion completes)
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	section_id TEXT NOT NULL,
	job_title_id TEXT NOT NULL,
	grade_id TEXT NOT NULL,
	manager_id TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Requirement matrices (immutable snapshots, newest version wins per level)
CREATE TABLE IF NOT EXISTS requirements (
	id TEXT PRIMARY KEY,
	section_id TEXT NOT NULL,
	job_title_id TEXT NOT NULL,
	grade_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(section_id, job_title_id, grade_id, version)
);

CREATE TABLE IF NOT EXISTS requirement_subtasks (
	requirement_id TEXT NOT NULL,
	task_id TEXT NOT NULL,
	task_position INTEGER NOT NULL,
	subtask_id TEXT NOT NULL,
	subtask_position INTEGER NOT NULL,
	PRIMARY KEY (requirement_id, subtask_id),
	FOREIGN KEY (requirement_id) REFERENCES requirements(id)
);

-- Promotions (one attempt per row, never deleted)
CREATE TABLE IF NOT EXISTS promotions (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	manager_id TEXT,
	target_job_title_id TEXT NOT NULL,
	target_grade_id TEXT NOT NULL,
	requirement_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending_approval', 'pending_employee_approval', 'assigned', 'in_progress', 'completed', 'rejected')) DEFAULT 'pending_approval',
	assigned_by TEXT NOT NULL,
	assigned_at TEXT NOT NULL,
	approved_by TEXT,
	approved_at TEXT,
	employee_approved_by TEXT,
	employee_approved_at TEXT,
	rejected_by TEXT,
	rejected_at TEXT,
	rejection_reason TEXT,
	employee_rejected_by TEXT,
	employee_rejected_at TEXT,
	employee_rejection_reason TEXT,
	started_at TEXT,
	completed_at TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (requirement_id) REFERENCES requirements(id)
);

-- At most one active promotion per employee
CREATE UNIQUE INDEX IF NOT EXISTS idx_promotions_one_active
	ON promotions(employee_id)
	WHERE status IN ('pending_approval', 'pending_employee_approval', 'assigned', 'in_progress');

CREATE INDEX IF NOT EXISTS idx_promotions_employee ON promotions(employee_id, status);

-- Progress records (one per required subtask, fixed at assignment)
CREATE TABLE IF NOT EXISTS progress_records (
	promotion_id TEXT NOT NULL,
	subtask_id TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	task_id TEXT NOT NULL,
	mentor_status TEXT NOT NULL CHECK(mentor_status IN ('not_started', 'attempt_1', 'attempt_2', 'master')) DEFAULT 'not_started',
	mentor_id TEXT,
	mentor_feedback TEXT,
	mentor_evaluated_at TEXT,
	evaluator_status TEXT NOT NULL CHECK(evaluator_status IN ('not_started', 'attempt_1', 'attempt_2', 'master')) DEFAULT 'not_started',
	evaluator_id TEXT,
	evaluator_feedback TEXT,
	evaluator_evaluated_at TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (promotion_id, subtask_id),
	FOREIGN KEY (promotion_id) REFERENCES promotions(id)
);

-- Progress history (append-only)
CREATE TABLE IF NOT EXISTS progress_history (
	id TEXT PRIMARY KEY,
	promotion_id TEXT NOT NULL,
	subtask_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	evaluator_id TEXT,
	evaluator_role TEXT NOT NULL CHECK(evaluator_role IN ('mentor', 'evaluator')),
	status TEXT NOT NULL CHECK(status IN ('not_started', 'attempt_1', 'attempt_2', 'master')),
	feedback TEXT,
	evaluated_at TEXT NOT NULL,
	FOREIGN KEY (promotion_id, subtask_id) REFERENCES progress_records(promotion_id, subtask_id)
);

CREATE INDEX IF NOT EXISTS idx_progress_history_record ON progress_history(promotion_id, subtask_id, seq);
`

// outboxTablesSQL holds the tables handed to external collaborators.
const outboxTablesSQL = `
-- Notification outbox (delivery is external)
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL,
	event_type TEXT NOT NULL CHECK(event_type IN ('manager_approved', 'manager_rejected', 'employee_rejected', 'completed')),
	promotion_id TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);

-- Certificates (exactly one per completed promotion)
CREATE TABLE IF NOT EXISTS certificates (
	id TEXT PRIMARY KEY,
	promotion_id TEXT NOT NULL UNIQUE,
	employee_id TEXT NOT NULL,
	job_title_id TEXT NOT NULL,
	grade_id TEXT NOT NULL,
	issued_at TEXT NOT NULL
);
`

// auditTablesSQL holds the audit log.
const auditTablesSQL = `
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
`

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it
// through GetSchemaSQL() instead of declaring their own tables, so a column
// referenced by a repository but missing here fails immediately.
//
// When adding new tables or columns:
//  1. Add a migration in migrations.go
//  2. Update the SQL constants here
//  3. Run `make test` to verify alignment
const SchemaSQL = coreTablesSQL + outboxTablesSQL + auditTablesSQL

// InitSchema brings a database up to the current schema.
// Fresh databases get SchemaSQL directly and every migration is recorded as
// applied; existing databases run the migrations they are missing.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		if _, err := db.Exec(schemaVersionSQL); err != nil {
			return err
		}

		var existing int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='promotions'").Scan(&existing)
		if err != nil {
			return err
		}

		if existing == 0 {
			if _, err := db.Exec(SchemaSQL); err != nil {
				return err
			}
			for _, m := range migrations {
				if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
					return err
				}
			}
			return nil
		}
	}

	return RunMigrations(db)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
