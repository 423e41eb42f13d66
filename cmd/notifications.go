package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tradewatch/internal/bootstrap"
	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/errs"
	"tradewatch/internal/usecase/alerts"
	syncuc "tradewatch/internal/usecase/sync"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect alert notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's notifications, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		items, err := alertSvc.Notifications(ctx, userID, limit)
		if err != nil {
			logging.Error(ctx, "list notifications failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list notifications")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no notifications"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			read := "unread"
			if item.ReadAt != nil {
				read = "read"
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s [%s] %s (%s)\n",
				item.PublicID,
				read,
				item.Message,
				humanize.Time(item.CreatedAt),
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var notificationsMarkReadCmd = &cobra.Command{
	Use:   "mark-read",
	Short: "Mark a notification as read",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		publicID, _ := cmd.Flags().GetString("notification")

		if err := alertSvc.MarkNotificationRead(ctx, userID, publicID); err != nil {
			logging.Error(ctx, "mark notification read failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "mark notification read")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "marked read: %s\n", publicID); err != nil {
			return errs.Wrap(err, "write mark-read output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsMarkReadCmd)

	notificationsCmd.PersistentFlags().String("user", "", "User id")
	_ = notificationsCmd.MarkPersistentFlagRequired("user")

	notificationsListCmd.Flags().Int("limit", 50, "Maximum notifications to list")

	notificationsMarkReadCmd.Flags().String("notification", "", "Notification id")
	_ = notificationsMarkReadCmd.MarkFlagRequired("notification")
}
