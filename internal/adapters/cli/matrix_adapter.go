package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/example/ladder/internal/ports/primary"
)

// MatrixAdapter translates CLI operations to RequirementService and
// MasteryService calls.
type MatrixAdapter struct {
	requirements primary.RequirementService
	mastery      primary.MasteryService
	out          io.Writer
}

// NewMatrixAdapter creates a new MatrixAdapter.
func NewMatrixAdapter(requirements primary.RequirementService, mastery primary.MasteryService, out io.Writer) *MatrixAdapter {
	return &MatrixAdapter{requirements: requirements, mastery: mastery, out: out}
}

// Show prints the current matrix of a level.
func (a *MatrixAdapter) Show(ctx context.Context, sectionID, jobTitleID, gradeID string) error {
	r, err := a.requirements.GetRequirementForLevel(ctx, sectionID, jobTitleID, gradeID)
	if err != nil {
		return err
	}
	a.printMatrix(r)
	return nil
}

// ShowByID prints a specific matrix snapshot.
func (a *MatrixAdapter) ShowByID(ctx context.Context, requirementID string) error {
	r, err := a.requirements.GetRequirement(ctx, requirementID)
	if err != nil {
		return err
	}
	a.printMatrix(r)
	return nil
}

func (a *MatrixAdapter) printMatrix(r *primary.Requirement) {
	fmt.Fprintf(a.out, "\nMatrix %s: %s/%s/%s (version %d)\n", r.ID, r.SectionID, r.JobTitleID, r.GradeID, r.Version)
	fmt.Fprintln(a.out, rule)
	total := 0
	for _, t := range r.Tasks {
		fmt.Fprintf(a.out, "%-12s %s\n", t.TaskID, strings.Join(t.SubtaskIDs, ", "))
		total += len(t.SubtaskIDs)
	}
	fmt.Fprintf(a.out, "\n%d task(s), %d subtask(s)\n\n", len(r.Tasks), total)
}

// List lists the current matrix of every level.
func (a *MatrixAdapter) List(ctx context.Context, filters primary.RequirementFilters) error {
	list, err := a.requirements.ListRequirements(ctx, filters)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No requirement matrices found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-10s %-6s %-8s %s\n", "ID", "SECTION", "JOB", "GRADE", "VERSION", "SUBTASKS")
	fmt.Fprintln(a.out, rule)
	for _, r := range list {
		n := 0
		for _, t := range r.Tasks {
			n += len(t.SubtaskIDs)
		}
		fmt.Fprintf(a.out, "%-10s %-10s %-10s %-6s %-8d %d\n", r.ID, r.SectionID, r.JobTitleID, r.GradeID, r.Version, n)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Diff prints what moving between two levels newly requires.
func (a *MatrixAdapter) Diff(ctx context.Context, req primary.DiffLevelsRequest) error {
	d, err := a.requirements.DiffLevels(ctx, req)
	if err != nil {
		return err
	}

	from := "(nothing)"
	if d.CurrentRequirementID != "" {
		from = fmt.Sprintf("%s/%s (%s)", req.FromJobTitleID, req.FromGradeID, d.CurrentRequirementID)
	}
	fmt.Fprintf(a.out, "\nDiff %s → %s/%s (%s)\n", from, req.ToJobTitleID, req.ToGradeID, d.TargetRequirementID)
	fmt.Fprintln(a.out, rule)

	newTask := make(map[string]bool, len(d.NewTasks))
	for _, t := range d.NewTasks {
		newTask[t] = true
	}
	for _, task := range sortedKeys(d.NewSubtasksByTask) {
		marker := ""
		if newTask[task] {
			marker = color.New(color.FgCyan).Sprint(" [new task]")
		}
		fmt.Fprintf(a.out, "%s %-12s %s%s\n", color.New(color.FgGreen).Sprint("+"), task,
			strings.Join(d.NewSubtasksByTask[task], ", "), marker)
	}
	for _, task := range sortedKeys(d.CompletedSubtasksByTask) {
		fmt.Fprintf(a.out, "= %-12s %s\n", task, strings.Join(d.CompletedSubtasksByTask[task], ", "))
	}
	if !d.HasDifferences {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("No differences: a promotion between these levels would be refused"))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Mastery prints the subtasks an employee has already mastered.
func (a *MatrixAdapter) Mastery(ctx context.Context, employeeID string) error {
	mastered, err := a.mastery.MasteredSubtasks(ctx, employeeID)
	if err != nil {
		return err
	}
	if len(mastered) == 0 {
		fmt.Fprintf(a.out, "%s has no mastered subtasks\n", employeeID)
		return nil
	}
	fmt.Fprintf(a.out, "%s has mastered %d subtask(s):\n", employeeID, len(mastered))
	for _, s := range mastered {
		fmt.Fprintf(a.out, "  %s\n", s)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
