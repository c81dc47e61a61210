package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var employeeCmd = &cobra.Command{
	Use:     "employee",
	Aliases: []string{"emp"},
	Short:   "Browse the employee directory",
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, _ := cmd.Flags().GetString("manager")

		employees, err := wire.EmployeeService().ListEmployees(NewContext(), manager)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		if len(employees) == 0 {
			fmt.Println("No employees found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tMANAGER")
		for _, e := range employees {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, employeeLevel(e), dash(e.ManagerID))
		}
		return w.Flush()
	},
}

var employeeShowCmd = &cobra.Command{
	Use:   "show <employee-id>",
	Short: "Show an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		e, err := wire.EmployeeService().GetEmployee(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", e.ID, e.Name)
		fmt.Printf("  Level:   %s\n", employeeLevel(e))
		fmt.Printf("  Manager: %s\n", dash(e.ManagerID))

		active, err := wire.PromotionService().ListPromotions(ctx, primary.PromotionFilters{EmployeeID: e.ID, Limit: 1})
		if err != nil {
			return err
		}
		if len(active) > 0 {
			p := active[0]
			fmt.Printf("  Latest promotion: %s → %s/%s (%s)\n", p.ID, p.TargetJobTitleID, p.TargetGradeID, p.Status)
		}
		return nil
	},
}

func employeeLevel(e *primary.Employee) string {
	return fmt.Sprintf("%s %s/%s", e.SectionID, e.JobTitleID, e.GradeID)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// EmployeeCmd returns the employee command
func EmployeeCmd() *cobra.Command {
	employeeListCmd.Flags().StringP("manager", "m", "", "Only this manager's reports")

	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeShowCmd)
	return employeeCmd
}
