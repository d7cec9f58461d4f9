package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/engine"
	"biblio/internal/model"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage members",
	}

	cmd.AddCommand(newUserAddCommand(rootOpts))
	cmd.AddCommand(newUserUpdateCommand(rootOpts))
	cmd.AddCommand(newUserDeleteCommand(rootOpts))
	cmd.AddCommand(newUserGetCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))

	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	var params engine.UserParams
	var tier string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		Long: `Register a member. The membership tier decides the loan period, the
borrow limit, and the daily fine rate. The assigned ID carries a tier
prefix (STU-, FCL-, GST-) unless --id is given.

Example:
  biblio user add --name "Amara Silva" --tier STUDENT`,
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

			params.Tier = model.MembershipTier(strings.ToUpper(tier))
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			user, err := s.eng.AddUser(ctx, params)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Added %s: %s (%s)", user.ID, user.Name, user.Tier), user)
		},
	}

	cmd.Flags().StringVar(&params.ID, "id", "", "explicit user ID (default: next per-tier ID)")
	cmd.Flags().StringVar(&params.Name, "name", "", "member name (required)")
	cmd.Flags().StringVar(&params.Email, "email", "", "email address")
	cmd.Flags().StringVar(&params.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&tier, "tier", "", "membership tier: STUDENT, FACULTY, or GUEST (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("tier")

	return cmd
}

func newUserUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var params engine.UserParams
	var tier string

	cmd := &cobra.Command{
		Use:           "update <user-id>",
		Short:         "Update a member's details",
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

			params.ID = args[0]
			params.Tier = model.MembershipTier(strings.ToUpper(tier))
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			user, err := s.eng.UpdateUser(ctx, params)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Updated %s: %s (%s)", user.ID, user.Name, user.Tier), user)
		},
	}

	cmd.Flags().StringVar(&params.Name, "name", "", "member name (required)")
	cmd.Flags().StringVar(&params.Email, "email", "", "email address")
	cmd.Flags().StringVar(&params.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&tier, "tier", "", "membership tier: STUDENT, FACULTY, or GUEST (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("tier")

	return cmd
}

func newUserDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "delete <user-id>",
		Short:         "Delete a member (refused while books are out)",
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
			if err := s.eng.DeleteUser(ctx, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Deleted %s", args[0]), map[string]string{"id": args[0]})
		},
	}
	return cmd
}

func newUserGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <user-id>",
		Short:         "Show one member",
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
			user, ok := s.eng.GetUser(args[0])
			if !ok {
				return out.Fail(&engine.Error{Code: engine.CodeNotFound, Message: "user not found", Entity: args[0]})
			}
			return out.Success(formatUser(user), user)
		},
	}
	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List all members",
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
			users := s.eng.ListUsers()
			if len(users) == 0 {
				return out.Success("No members.", users)
			}
			lines := make([]string, len(users))
			for i, u := range users {
				lines[i] = formatUser(u)
			}
			return out.Success(strings.Join(lines, "\n"), users)
		},
	}
	return cmd
}

func formatUser(u model.User) string {
	return fmt.Sprintf("%s  %-25s %-8s borrows=%d fines=%d", u.ID, u.Name, u.Tier, u.CurrentBorrows, u.UnpaidFines)
}
