package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Inspect requirement matrices",
	Long:  "Show, list and compare the requirement matrices of job title and grade levels",
}

var matrixShowCmd = &cobra.Command{
	Use:   "show [JOB-TITLE/GRADE]",
	Short: "Show the current matrix of a level, or a snapshot by --id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		id, _ := cmd.Flags().GetString("id")
		section, _ := cmd.Flags().GetString("section")

		if id != "" {
			return wire.MatrixAdapter().ShowByID(ctx, id)
		}
		if len(args) == 0 {
			return fmt.Errorf("pass a level (JOB-TITLE/GRADE) or --id")
		}
		jobTitleID, gradeID, err := parseLevel(args[0])
		if err != nil {
			return err
		}
		return wire.MatrixAdapter().Show(ctx, section, jobTitleID, gradeID)
	},
}

var matrixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current matrix of every level",
	RunE: func(cmd *cobra.Command, args []string) error {
		section, _ := cmd.Flags().GetString("section")
		jobTitle, _ := cmd.Flags().GetString("job-title")

		return wire.MatrixAdapter().List(NewContext(), primary.RequirementFilters{
			SectionID:  section,
			JobTitleID: jobTitle,
		})
	},
}

var matrixDiffCmd = &cobra.Command{
	Use:   "diff [FROM-JOB/GRADE] TO-JOB/GRADE",
	Short: "Show what moving between two levels newly requires",
	Long: `Classify every subtask of the target level as new or already required.
With a single argument the target is compared against nothing.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, _ := cmd.Flags().GetString("section")
		req := primary.DiffLevelsRequest{SectionID: section}

		var err error
		to := args[len(args)-1]
		if req.ToJobTitleID, req.ToGradeID, err = parseLevel(to); err != nil {
			return err
		}
		if len(args) == 2 {
			if req.FromJobTitleID, req.FromGradeID, err = parseLevel(args[0]); err != nil {
				return err
			}
		}
		return wire.MatrixAdapter().Diff(NewContext(), req)
	},
}

var masteryCmd = &cobra.Command{
	Use:   "mastery <employee-id>",
	Short: "List the subtasks an employee has already mastered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MatrixAdapter().Mastery(NewContext(), args[0])
	},
}

// MatrixCmd returns the matrix command
func MatrixCmd() *cobra.Command {
	for _, c := range []*cobra.Command{matrixShowCmd, matrixListCmd, matrixDiffCmd} {
		c.Flags().StringP("section", "s", "", "Organisational section ID")
	}
	matrixShowCmd.Flags().String("id", "", "Show a specific matrix snapshot")
	matrixShowCmd.MarkFlagsMutuallyExclusive("id", "section")
	matrixListCmd.Flags().StringP("job-title", "j", "", "Filter by job title")
	_ = matrixDiffCmd.MarkFlagRequired("section")

	matrixCmd.AddCommand(matrixShowCmd)
	matrixCmd.AddCommand(matrixListCmd)
	matrixCmd.AddCommand(matrixDiffCmd)

	return matrixCmd
}

// MasteryCmd returns the mastery command
func MasteryCmd() *cobra.Command {
	return masteryCmd
}
