package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/cli"
	"github.com/example/ladder/internal/version"
)

func main() {
	var actorFlag, dbFlag string

	rootCmd := &cobra.Command{
		Use:     "ladder",
		Short:   "Ladder - promotion lifecycle and requirement matrices",
		Version: version.String(),
		Long: `Ladder assigns employees to a target job title and grade, tracks mentor
and evaluator assessments of every required subtask, and completes the
promotion once both tracks reach mastery.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.Bootstrap(actorFlag, dbFlag)
		},
	}
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Employee ID acting on this invocation")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path (overrides config)")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	// Matrices and mastery
	rootCmd.AddCommand(cli.MatrixCmd())
	rootCmd.AddCommand(cli.MasteryCmd())
	rootCmd.AddCommand(cli.EmployeeCmd())

	// Promotion lifecycle
	rootCmd.AddCommand(cli.PromotionCmd())
	rootCmd.AddCommand(cli.EvaluateCmd())
	rootCmd.AddCommand(cli.CanEvaluateCmd())
	rootCmd.AddCommand(cli.NotificationCmd())
	rootCmd.AddCommand(cli.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
