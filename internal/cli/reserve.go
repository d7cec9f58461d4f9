package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/model"
)

// NewReserveCommand creates the reserve command.
func NewReserveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reserve <book-id> <user-id>",
		Short: "Join the waiting queue for a borrowed book",
		Long: `Join the waiting queue for a borrowed book. Reservations are served
first come, first served. When the book comes back, the member at the head
of the queue gets a 48-hour hold to collect it.`,
		Args:          cobra.ExactArgs(2),
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
			res, err := s.eng.ReserveBook(ctx, args[0], args[1])
			if err != nil {
				return out.Fail(err)
			}
			queue := s.eng.PendingQueue(res.BookID)
			text := fmt.Sprintf("Reserved: %s holds position %d for %s", res.ID, queuePosition(queue, res.ID), res.BookID)
			return out.Success(text, res)
		},
	}

	cmd.AddCommand(newReserveListCommand(rootOpts))
	cmd.AddCommand(newReserveQueueCommand(rootOpts))
	return cmd
}

func newReserveListCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List reservations",
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
			reservations := s.eng.ListReservations(userID)
			return out.Success(formatReservationTable(reservations), reservations)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "only this member's reservations")
	return cmd
}

func newReserveQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "queue <book-id>",
		Short:         "Show a book's pending queue in service order",
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
			queue := s.eng.PendingQueue(args[0])
			if len(queue) == 0 {
				return out.Success("Queue is empty.", queue)
			}
			lines := make([]string, len(queue))
			for i, r := range queue {
				lines[i] = fmt.Sprintf("%d. %s  %s  since %s", i+1, r.ID, r.UserID, r.CreatedAt.Format(dateLayout))
			}
			return out.Success(strings.Join(lines, "\n"), queue)
		},
	}
	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <reservation-id>",
		Short: "Cancel a pending reservation",
		Long: `Cancel a pending reservation. A reservation already on hold cannot be
cancelled; it runs out on its own if the book is not collected.`,
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
			if err := s.eng.CancelReservation(ctx, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Cancelled %s", args[0]), map[string]string{"id": args[0]})
		},
	}
	return cmd
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire overrun holds and promote the next waiters",
		Long: `Expire holds whose 48-hour collection window has passed and promote the
next member in each queue. Every command runs this sweep on startup, so an
explicit sweep is only needed to age out holds without another operation.`,
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
			return out.Success(fmt.Sprintf("Expired %d reservation(s)", s.swept), map[string]int{"expired": s.swept})
		},
	}
	return cmd
}

func queuePosition(queue []model.Reservation, reservationID string) int {
	for i, r := range queue {
		if r.ID == reservationID {
			return i + 1
		}
	}
	return len(queue)
}

func formatReservationTable(reservations []model.Reservation) string {
	if len(reservations) == 0 {
		return "No reservations."
	}
	lines := make([]string, len(reservations))
	for i, r := range reservations {
		expiry := ""
		if r.Status == model.ReservationNotified {
			expiry = "  expires " + r.ExpiresAt().Format("2006-01-02 15:04")
		}
		lines[i] = fmt.Sprintf("%s  %s  %s  %s%s", r.ID, r.BookID, r.UserID, r.Status, expiry)
	}
	return strings.Join(lines, "\n")
}
