package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/model"
)

// NewNotificationsCommand creates the notifications command group.
func NewNotificationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read the notification feed",
	}

	cmd.AddCommand(newNotificationsListCommand(rootOpts))
	cmd.AddCommand(newNotificationsReadCommand(rootOpts))

	return cmd
}

func newNotificationsListCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List notifications, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			notifications := s.eng.ListNotifications(userID)
			if unreadOnly {
				kept := notifications[:0]
				for _, n := range notifications {
					if !n.Read {
						kept = append(kept, n)
					}
				}
				notifications = kept
			}
			if len(notifications) == 0 {
				return out.Success("No notifications.", notifications)
			}
			lines := make([]string, len(notifications))
			for i, n := range notifications {
				lines[i] = formatNotification(n)
			}
			return out.Success(strings.Join(lines, "\n"), notifications)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "only this member's notifications")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")

	return cmd
}

func newNotificationsReadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "read <notification-id>",
		Short:         "Mark a notification as read",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := s.eng.MarkNotificationRead(ctx, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Marked %s read", args[0]), map[string]string{"id": args[0]})
		},
	}
	return cmd
}

func formatNotification(n model.Notification) string {
	marker := " "
	if !n.Read {
		marker = "*"
	}
	return fmt.Sprintf("%s %s  %s  [%s] %s", marker, n.ID, n.Date.Format("2006-01-02 15:04"), n.Type, n.Message)
}
