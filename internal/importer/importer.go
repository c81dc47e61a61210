// Package importer loads the organisational data the engine reads but does
// not own: the task catalog, requirement matrices and employees.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/requirement"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// Document is the YAML import format.
type Document struct {
	Catalog      []CatalogEntry     `yaml:"catalog"`
	Requirements []RequirementEntry `yaml:"requirements"`
	Employees    []EmployeeEntry    `yaml:"employees"`
}

// CatalogEntry declares the subtasks of one task.
type CatalogEntry struct {
	Task     string   `yaml:"task"`
	Name     string   `yaml:"name,omitempty"`
	Subtasks []string `yaml:"subtasks"`
}

// RequirementEntry is one level's matrix.
type RequirementEntry struct {
	Section  string      `yaml:"section"`
	JobTitle string      `yaml:"job_title"`
	Grade    string      `yaml:"grade"`
	Tasks    []TaskEntry `yaml:"tasks"`
}

// TaskEntry is one required task of a matrix.
type TaskEntry struct {
	Task     string   `yaml:"task"`
	Subtasks []string `yaml:"subtasks"`
}

// EmployeeEntry is one employee.
type EmployeeEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Section  string `yaml:"section"`
	JobTitle string `yaml:"job_title"`
	Grade    string `yaml:"grade"`
	Manager  string `yaml:"manager,omitempty"`
}

// Result counts what an import wrote.
type Result struct {
	CatalogTasks int
	Requirements []string // IDs of the snapshots created
	Employees    int
}

// Parse decodes an import document. Unknown keys are rejected so typos do
// not silently drop data.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.Validation("import document is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, apperr.Validation("decode import document: %v", err)
	}
	return &doc, nil
}

// ParseFile reads and decodes an import file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the whole document before anything is written. Matrices
// are checked against the document's catalog when it has one.
func (d *Document) Validate() error {
	var universe requirement.SubtaskUniverse
	if len(d.Catalog) > 0 {
		universe = make(requirement.SubtaskUniverse, len(d.Catalog))
		for _, c := range d.Catalog {
			if c.Task == "" {
				return apperr.Validation("catalog entry without a task ID")
			}
			if _, dup := universe[c.Task]; dup {
				return apperr.Validation("catalog task %s declared twice", c.Task)
			}
			if len(c.Subtasks) == 0 {
				return apperr.Validation("catalog task %s has no subtasks", c.Task)
			}
			universe[c.Task] = c.Subtasks
		}
	}

	levels := make(map[string]bool, len(d.Requirements))
	for _, r := range d.Requirements {
		if err := requirement.Validate(r.matrix(), universe); err != nil {
			return err
		}
		key := r.Section + "/" + r.JobTitle + "/" + r.Grade
		if levels[key] {
			return apperr.Validation("level %s appears more than once", key)
		}
		levels[key] = true
	}

	ids := make(map[string]bool, len(d.Employees))
	for _, e := range d.Employees {
		if e.ID == "" {
			return apperr.Validation("employee without an ID")
		}
		if ids[e.ID] {
			return apperr.Validation("employee %s appears more than once", e.ID)
		}
		ids[e.ID] = true
		if e.Section == "" || e.JobTitle == "" || e.Grade == "" {
			return apperr.Validation("employee %s needs section, job title and grade", e.ID)
		}
	}
	return nil
}

func (r RequirementEntry) matrix() requirement.Matrix {
	m := requirement.Matrix{SectionID: r.Section, JobTitleID: r.JobTitle, GradeID: r.Grade}
	for _, t := range r.Tasks {
		m.Tasks = append(m.Tasks, requirement.RequiredTask{TaskID: t.Task, SubtaskIDs: t.Subtasks})
	}
	return m
}

// Importer writes documents through the primary services.
type Importer struct {
	tx           secondary.Transactor
	requirements primary.RequirementService
	employees    primary.EmployeeService
}

// New creates an Importer.
func New(tx secondary.Transactor, requirements primary.RequirementService, employees primary.EmployeeService) *Importer {
	return &Importer{tx: tx, requirements: requirements, employees: employees}
}

// Import validates doc and writes catalog, matrices, then employees in one
// transaction.
func (i *Importer) Import(ctx context.Context, doc *Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := i.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = i.write(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *Importer) write(ctx context.Context, doc *Document) (*Result, error) {
	result := &Result{}
	if len(doc.Catalog) > 0 {
		tasks := make([]primary.CatalogTask, 0, len(doc.Catalog))
		for _, c := range doc.Catalog {
			tasks = append(tasks, primary.CatalogTask{TaskID: c.Task, Name: c.Name, SubtaskIDs: c.Subtasks})
		}
		if err := i.requirements.SaveCatalog(ctx, tasks); err != nil {
			return result, fmt.Errorf("import catalog: %w", err)
		}
		result.CatalogTasks = len(tasks)
	}

	for _, r := range doc.Requirements {
		req := primary.SaveRequirementRequest{SectionID: r.Section, JobTitleID: r.JobTitle, GradeID: r.Grade}
		for _, t := range r.Tasks {
			req.Tasks = append(req.Tasks, primary.RequiredTask{TaskID: t.Task, SubtaskIDs: t.Subtasks})
		}
		saved, err := i.requirements.SaveRequirement(ctx, req)
		if err != nil {
			return result, fmt.Errorf("import requirement %s/%s/%s: %w", r.Section, r.JobTitle, r.Grade, err)
		}
		result.Requirements = append(result.Requirements, saved.ID)
	}

	for _, e := range doc.Employees {
		err := i.employees.SaveEmployee(ctx, primary.Employee{
			ID:         e.ID,
			Name:       e.Name,
			SectionID:  e.Section,
			JobTitleID: e.JobTitle,
			GradeID:    e.Grade,
			ManagerID:  e.Manager,
		})
		if err != nil {
			return result, fmt.Errorf("import employee %s: %w", e.ID, err)
		}
		result.Employees++
	}

	return result, nil
}
