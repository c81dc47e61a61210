package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <promotion-id> SUBTASK=STATUS...",
	Short: "Record mentor or evaluator assessments",
	Long: `Record one or more assessments for a promotion as a single batch.
Either every item is stored or none is.

Statuses: not_started, attempt_1, attempt_2, master

Examples:
  ladder evaluate PROM-001 SUB-A=attempt_1 --role mentor
  ladder evaluate PROM-001 SUB-A=master SUB-B=master --role evaluator -f "solid"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireActor(); err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		feedback, _ := cmd.Flags().GetString("feedback")

		items, err := parseItems(args[1:], feedback)
		if err != nil {
			return err
		}
		return wire.PromotionAdapter().Evaluate(NewContext(), primary.RecordEvaluationsRequest{
			PromotionID: args[0],
			Role:        role,
			Items:       items,
		})
	},
}

// parseItems turns SUBTASK=STATUS arguments into batch items sharing one
// feedback text.
func parseItems(args []string, feedback string) ([]primary.EvaluationItem, error) {
	items := make([]primary.EvaluationItem, 0, len(args))
	for _, arg := range args {
		subtask, status, ok := strings.Cut(arg, "=")
		if !ok || subtask == "" || status == "" {
			return nil, fmt.Errorf("invalid assessment %q: expected SUBTASK=STATUS", arg)
		}
		items = append(items, primary.EvaluationItem{
			SubtaskID: subtask,
			Status:    strings.ToLower(status),
			Feedback:  feedback,
		})
	}
	return items, nil
}

// EvaluateCmd returns the evaluate command
func EvaluateCmd() *cobra.Command {
	evaluateCmd.Flags().String("role", "", "Assessment role: mentor or evaluator")
	evaluateCmd.Flags().StringP("feedback", "f", "", "Feedback applied to every item")
	_ = evaluateCmd.MarkFlagRequired("role")
	return evaluateCmd
}

// CanEvaluateCmd returns the can-evaluate command
func CanEvaluateCmd() *cobra.Command {
	return canEvaluateCmd
}
