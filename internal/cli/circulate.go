package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/engine"
	"biblio/internal/model"
)

const dateLayout = "2006-01-02"

// NewBorrowCommand creates the borrow command.
func NewBorrowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrow <book-id> <user-id>",
		Short: "Lend a book to a member",
		Long: `Lend a book to a member. The due date follows the member's tier: 14
days for students, 30 for faculty, 7 for guests. A reserved book can only
be borrowed by the member holding the active reservation.

Example:
  biblio borrow BK-001 STU-001`,
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
			borrow, err := s.eng.BorrowBook(ctx, args[0], args[1])
			if err != nil {
				return out.Fail(err)
			}
			text := fmt.Sprintf("Borrowed: %s lent %s to %s, due %s",
				borrow.ID, borrow.BookID, borrow.UserID, borrow.DueOn.Format(dateLayout))
			return out.Success(text, borrow)
		},
	}

	cmd.AddCommand(newBorrowListCommand(rootOpts))
	return cmd
}

func newBorrowListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter engine.BorrowFilter

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List borrow records",
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
			borrows := s.eng.ListBorrows(filter)
			if len(borrows) == 0 {
				return out.Success("No borrows.", borrows)
			}
			lines := make([]string, len(borrows))
			for i, b := range borrows {
				lines[i] = formatBorrow(b)
			}
			return out.Success(strings.Join(lines, "\n"), borrows)
		},
	}

	cmd.Flags().StringVar(&filter.UserID, "user", "", "only this member's borrows")
	cmd.Flags().BoolVar(&filter.OpenOnly, "open", false, "only borrows not yet returned")
	cmd.Flags().BoolVar(&filter.OverdueOnly, "overdue", false, "only open borrows past their due date")

	return cmd
}

// NewReturnCommand creates the return command.
func NewReturnCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "return <borrow-id>",
		Short: "Return a borrowed book",
		Long: `Return a borrowed book. An overdue return adds a fine to the member's
balance at the tier's daily rate. If other members are waiting, the book
goes on hold for the next in line instead of back on the shelf.`,
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
			summary, err := s.eng.ReturnBook(ctx, args[0])
			if err != nil {
				return out.Fail(err)
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "Returned: %s (%s)", summary.Borrow.ID, summary.Borrow.BookID)
			if summary.OverdueDays > 0 {
				fmt.Fprintf(&sb, "\n%d days overdue, fine %d added to %s",
					summary.OverdueDays, summary.Fine, summary.Borrow.UserID)
			}
			if summary.Promoted != nil {
				fmt.Fprintf(&sb, "\nOn hold for %s (reservation %s, 48h window)",
					summary.Promoted.UserID, summary.Promoted.ID)
			}
			return out.Success(sb.String(), summary)
		},
	}
	return cmd
}

func formatBorrow(b model.Borrow) string {
	state := "open"
	if b.ReturnedOn != nil {
		state = "returned " + b.ReturnedOn.Format(dateLayout)
	}
	return fmt.Sprintf("%s  %s -> %s  out %s due %s  %s",
		b.ID, b.BookID, b.UserID, b.BorrowedOn.Format(dateLayout), b.DueOn.Format(dateLayout), state)
}
