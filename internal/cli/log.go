package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log [entity-id]",
	Short: "View the audit trail",
	Long:  "Show audit log entries, optionally for one promotion, requirement or employee",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, _ := cmd.Flags().GetString("type")
		actorID, _ := cmd.Flags().GetString("by")
		limit, _ := cmd.Flags().GetInt("limit")

		filters := primary.LogFilters{
			EntityType: entityType,
			ActorID:    actorID,
			Limit:      limit,
		}
		if len(args) > 0 {
			filters.EntityID = args[0]
		}

		entries, err := wire.LogService().ListLogs(NewContext(), filters)
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}
		printLogEntries(entries)
		return nil
	},
}

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	logCmd.Flags().String("type", "", "Filter by entity type (promotion, requirement, employee, progress)")
	logCmd.Flags().String("by", "", "Filter by actor")
	logCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries")
	return logCmd
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	fmt.Printf("Found %d log entries:\n\n", len(entries))

	// Oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(entries[i])
	}
}

func printLogEntry(entry *primary.LogEntry) {
	actor := entry.ActorID
	if actor == "" {
		actor = "-"
	}

	fmt.Printf("%s | %-10s | %s %s | %s/%s",
		formatTimestamp(entry.CreatedAt),
		actor,
		actionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}
	fmt.Println()
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
