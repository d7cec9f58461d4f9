package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewFineCommand creates the fine command group.
func NewFineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fine",
		Short: "Preview and settle fines",
	}

	cmd.AddCommand(newFinePreviewCommand(rootOpts))
	cmd.AddCommand(newFinePayCommand(rootOpts))

	return cmd
}

func newFinePreviewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <borrow-id>",
		Short: "Show the fine an open borrow would incur if returned now",
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
			fine := s.eng.PreviewFine(args[0])
			return out.Success(fmt.Sprintf("Fine if returned today: %d", fine),
				map[string]any{"borrow_id": args[0], "fine": fine})
		},
	}
	return cmd
}

func newFinePayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <user-id> <amount>",
		Short: "Pay down a member's fine balance",
		Long: `Pay down a member's fine balance. The amount must be positive; paying
more than is owed clears the balance.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", args[1]), err)
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := s.eng.PayFine(ctx, args[0], amount); err != nil {
				return out.Fail(err)
			}
			user, _ := s.eng.GetUser(args[0])
			return out.Success(fmt.Sprintf("Paid %d; %s now owes %d", amount, user.ID, user.UnpaidFines), user)
		},
	}
	return cmd
}
