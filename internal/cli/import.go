package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/db"
	"github.com/example/ladder/internal/importer"
	"github.com/example/ladder/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load task catalog, requirement matrices and employees",
		Long: `Load organisational data from a YAML document with top-level
catalog, requirements and employees keys. The whole document is validated
before anything is written; matrices become new versions of their level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			doc, err := importer.ParseFile(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			if dryRun {
				fmt.Printf("✓ %s is valid: %d catalog task(s), %d matrix(es), %d employee(s)\n",
					args[0], len(doc.Catalog), len(doc.Requirements), len(doc.Employees))
				return nil
			}

			result, err := wire.Importer().Import(NewContext(), doc)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Imported %d catalog task(s), %d matrix(es), %d employee(s)\n",
				result.CatalogTasks, len(result.Requirements), result.Employees)
			if len(result.Requirements) > 0 {
				fmt.Printf("  Matrices: %s\n", strings.Join(result.Requirements, ", "))
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Validate without writing")
	return cmd
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development fixtures into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.SeedFixtures(wire.Database()); err != nil {
				return err
			}
			fmt.Println("✓ Development fixtures loaded")
			return nil
		},
	}
}
