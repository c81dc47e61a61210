package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/config"
	"github.com/example/ladder/internal/db"
	"github.com/example/ladder/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the ladder database and project config",
		Long: `Initialize the ladder database with the required schema and write
.ladder/config.yaml in the current directory (unless one exists).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg := wire.Config()

			path := filepath.Join(dir, config.Dir, "config.yaml")
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("✓ Config already present at %s\n", path)
			} else {
				written, err := config.Save(dir, cfg)
				if err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", written)
			}

			fmt.Printf("Initializing ladder database at %s\n", cfg.DBPath)
			version, err := db.CurrentVersion(wire.Database())
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Printf("✓ Database ready (schema version %d)\n", version)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  ladder import org.yaml")
			fmt.Println("  ladder promotion preview EMP-001 JT-TECH/G2")

			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing .ladder/config.yaml")
	return cmd
}
