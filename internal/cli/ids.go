package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/model"
)

// NewIDsCommand creates the ids command.
func NewIDsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Show the next ID in each category",
		Long: `Show the ID each category would assign next, without assigning it.
Useful for scripting a known ID before an add.`,
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

			ids := s.eng.IDs()
			next := map[string]string{
				"book":         ids.PeekBookID(),
				"student":      ids.PeekUserID(model.TierStudent),
				"faculty":      ids.PeekUserID(model.TierFaculty),
				"guest":        ids.PeekUserID(model.TierGuest),
				"borrow":       ids.PeekBorrowID(),
				"reservation":  ids.PeekReservationID(),
				"notification": ids.PeekNotificationID(),
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			order := []string{"book", "student", "faculty", "guest", "borrow", "reservation", "notification"}
			lines := make([]string, len(order))
			for i, k := range order {
				lines[i] = fmt.Sprintf("%-13s %s", k, next[k])
			}
			return out.Success(strings.Join(lines, "\n"), next)
		},
	}
	return cmd
}
