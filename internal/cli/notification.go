package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/wire"
)

var notificationCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show queued promotion notifications",
	Long: `Show notifications queued for delivery, newest first.
Without --to, the current actor's notifications are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, _ := cmd.Flags().GetString("to")
		promotion, _ := cmd.Flags().GetString("promotion")
		all, _ := cmd.Flags().GetBool("all")
		if recipient == "" && !all {
			recipient = GetActorID()
		}

		notifications, err := wire.NotificationService().ListNotifications(NewContext(), primary.NotificationFilters{
			RecipientID: recipient,
			PromotionID: promotion,
		})
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		if len(notifications) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		for _, n := range notifications {
			fmt.Printf("%s  %s  %-18s %s\n",
				formatTimestamp(n.CreatedAt),
				color.New(color.Bold).Sprint(n.RecipientID),
				color.New(color.FgCyan).Sprint(n.EventType),
				n.Message)
		}
		return nil
	},
}

// NotificationCmd returns the notifications command
func NotificationCmd() *cobra.Command {
	notificationCmd.Flags().String("to", "", "Recipient employee ID")
	notificationCmd.Flags().StringP("promotion", "p", "", "Only notifications about this promotion")
	notificationCmd.Flags().Bool("all", false, "Show every recipient")
	return notificationCmd
}
