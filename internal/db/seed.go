package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with a small development organisation:
// one section, two levels of one job title with their requirement matrices,
// a manager and two employees.
func SeedFixtures(database *sql.DB) error {
	catalog := []struct{ task, subtask, name string }{
		{"TASK-ONBOARD", "SUB-ONBOARD-1", "Onboarding"},
		{"TASK-ONBOARD", "SUB-ONBOARD-2", "Onboarding"},
		{"TASK-SAFETY", "SUB-SAFETY-1", "Safety"},
		{"TASK-SAFETY", "SUB-SAFETY-2", "Safety"},
		{"TASK-LEAD", "SUB-LEAD-1", "Shift leadership"},
	}
	for i, c := range catalog {
		if _, err := database.Exec(
			"INSERT INTO task_catalog (task_id, subtask_id, task_name, position) VALUES (?, ?, ?, ?)",
			c.task, c.subtask, c.name, i,
		); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	requirements := []struct {
		id, section, jobTitle, grade string
		rows                         [][2]string
	}{
		{"REQ-001", "SEC-OPS", "JT-TECH", "G1", [][2]string{
			{"TASK-ONBOARD", "SUB-ONBOARD-1"},
			{"TASK-ONBOARD", "SUB-ONBOARD-2"},
		}},
		{"REQ-002", "SEC-OPS", "JT-TECH", "G2", [][2]string{
			{"TASK-ONBOARD", "SUB-ONBOARD-1"},
			{"TASK-ONBOARD", "SUB-ONBOARD-2"},
			{"TASK-SAFETY", "SUB-SAFETY-1"},
			{"TASK-SAFETY", "SUB-SAFETY-2"},
		}},
		{"REQ-003", "SEC-OPS", "JT-LEAD", "G1", [][2]string{
			{"TASK-SAFETY", "SUB-SAFETY-1"},
			{"TASK-SAFETY", "SUB-SAFETY-2"},
			{"TASK-LEAD", "SUB-LEAD-1"},
		}},
	}
	for _, r := range requirements {
		if _, err := database.Exec(
			"INSERT INTO requirements (id, section_id, job_title_id, grade_id, version) VALUES (?, ?, ?, ?, 1)",
			r.id, r.section, r.jobTitle, r.grade,
		); err != nil {
			return fmt.Errorf("seed requirements: %w", err)
		}
		taskPos := map[string]int{}
		for i, row := range r.rows {
			pos, ok := taskPos[row[0]]
			if !ok {
				pos = len(taskPos)
				taskPos[row[0]] = pos
			}
			if _, err := database.Exec(
				"INSERT INTO requirement_subtasks (requirement_id, task_id, task_position, subtask_id, subtask_position) VALUES (?, ?, ?, ?, ?)",
				r.id, row[0], pos, row[1], i,
			); err != nil {
				return fmt.Errorf("seed requirement subtasks: %w", err)
			}
		}
	}

	employees := []struct{ id, name, jobTitle, grade, manager string }{
		{"EMP-001", "Morgan Reyes", "JT-LEAD", "G1", ""},
		{"EMP-002", "Sam Okafor", "JT-TECH", "G1", "EMP-001"},
		{"EMP-003", "Alex Lindqvist", "JT-TECH", "G1", "EMP-001"},
	}
	for _, e := range employees {
		var manager sql.NullString
		if e.manager != "" {
			manager = sql.NullString{String: e.manager, Valid: true}
		}
		if _, err := database.Exec(
			"INSERT INTO employees (id, name, section_id, job_title_id, grade_id, manager_id) VALUES (?, ?, 'SEC-OPS', ?, ?, ?)",
			e.id, e.name, e.jobTitle, e.grade, manager,
		); err != nil {
			return fmt.Errorf("seed employees: %w", err)
		}
	}

	return nil
}
