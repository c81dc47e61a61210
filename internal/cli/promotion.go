package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var promotionCmd = &cobra.Command{
	Use:     "promotion",
	Aliases: []string{"promo"},
	Short:   "Assign and drive promotions",
	Long: `Assign employees to a higher level and move promotions through
manager and employee approval. Starting and completing are driven by
evaluations, not by hand.`,
}

var promotionPreviewCmd = &cobra.Command{
	Use:   "preview <employee-id> <JOB-TITLE/GRADE>",
	Short: "Show what an assignment would require without creating it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := assignRequest(cmd, args)
		if err != nil {
			return err
		}
		return wire.PromotionAdapter().Preview(NewContext(), req)
	},
}

var promotionAssignCmd = &cobra.Command{
	Use:   "assign <employee-id> <JOB-TITLE/GRADE>",
	Short: "Assign an employee to a target level",
	Long: `Create a promotion against the current matrix of the target level.
Subtasks the employee already mastered are carried forward as complete.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireActor(); err != nil {
			return err
		}
		req, err := assignRequest(cmd, args)
		if err != nil {
			return err
		}
		return wire.PromotionAdapter().Assign(NewContext(), req)
	},
}

func assignRequest(cmd *cobra.Command, args []string) (primary.AssignPromotionRequest, error) {
	jobTitleID, gradeID, err := parseLevel(args[1])
	if err != nil {
		return primary.AssignPromotionRequest{}, err
	}
	managerID, _ := cmd.Flags().GetString("manager")
	return primary.AssignPromotionRequest{
		EmployeeID:       args[0],
		TargetJobTitleID: jobTitleID,
		TargetGradeID:    gradeID,
		ManagerID:        managerID,
	}, nil
}

// transitionCmd builds one of the approve/reject/accept/decline commands.
func transitionCmd(use, short, action string, reasonRequired bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <promotion-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireActor(); err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			return wire.PromotionAdapter().Transition(NewContext(), primary.TransitionPromotionRequest{
				PromotionID: args[0],
				Action:      action,
				Reason:      reason,
			})
		},
	}
	if reasonRequired {
		cmd.Flags().StringP("reason", "r", "", "Why the promotion is rejected")
		_ = cmd.MarkFlagRequired("reason")
	} else if action == "employee_reject" {
		cmd.Flags().StringP("reason", "r", "", "Why the promotion is declined (optional)")
	}
	return cmd
}

var promotionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List promotions",
	RunE: func(cmd *cobra.Command, args []string) error {
		employee, _ := cmd.Flags().GetString("employee")
		manager, _ := cmd.Flags().GetString("manager")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		return wire.PromotionAdapter().List(NewContext(), primary.PromotionFilters{
			EmployeeID: employee,
			ManagerID:  manager,
			Status:     status,
			Limit:      limit,
		})
	},
}

var promotionShowCmd = &cobra.Command{
	Use:   "show <promotion-id>",
	Short: "Show promotion details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.PromotionAdapter().Show(NewContext(), args[0])
	},
}

var promotionProgressCmd = &cobra.Command{
	Use:   "progress <promotion-id>",
	Short: "Show per-subtask mentor and evaluator progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, _ := cmd.Flags().GetBool("history")
		return wire.PromotionAdapter().Progress(NewContext(), args[0], history)
	},
}

var promotionCertificateCmd = &cobra.Command{
	Use:   "certificate <promotion-id>",
	Short: "Show the completion certificate of a promotion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.PromotionAdapter().Certificate(NewContext(), args[0])
	},
}

// PromotionCmd returns the promotion command
func PromotionCmd() *cobra.Command {
	for _, c := range []*cobra.Command{promotionPreviewCmd, promotionAssignCmd} {
		c.Flags().StringP("manager", "m", "", "Manager responsible for approval (defaults to the employee's manager)")
	}

	promotionListCmd.Flags().StringP("employee", "e", "", "Filter by employee")
	promotionListCmd.Flags().StringP("manager", "m", "", "Filter by manager")
	promotionListCmd.Flags().String("status", "", "Filter by status")
	promotionListCmd.Flags().IntP("limit", "n", 0, "Maximum number of promotions")
	promotionProgressCmd.Flags().Bool("history", false, "Include evaluation history")

	promotionCmd.AddCommand(promotionPreviewCmd)
	promotionCmd.AddCommand(promotionAssignCmd)
	promotionCmd.AddCommand(transitionCmd("approve", "Approve as manager", "manager_approve", false))
	promotionCmd.AddCommand(transitionCmd("reject", "Reject as manager", "manager_reject", true))
	promotionCmd.AddCommand(transitionCmd("accept", "Accept as the promoted employee", "employee_approve", false))
	promotionCmd.AddCommand(transitionCmd("decline", "Decline as the promoted employee", "employee_reject", false))
	promotionCmd.AddCommand(promotionListCmd)
	promotionCmd.AddCommand(promotionShowCmd)
	promotionCmd.AddCommand(promotionProgressCmd)
	promotionCmd.AddCommand(promotionCertificateCmd)

	return promotionCmd
}

// can-evaluate is a quick yes/no for scheduling evaluator sessions.
var canEvaluateCmd = &cobra.Command{
	Use:   "can-evaluate <promotion-id>",
	Short: "Report whether evaluator sessions may be requested",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := wire.EvaluationService().CanRequestEvaluatorSession(NewContext(), args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("✓ %s: mentor track complete, evaluator sessions may be requested\n", args[0])
		} else {
			fmt.Printf("✗ %s: mentor track not complete yet\n", args[0])
		}
		return nil
	},
}
