package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/report"
)

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Circulation reports",
		Long: `Circulation reports over the current snapshot. Each report prints a
table; --export writes it to a file instead, as CSV for .csv paths and
JSON otherwise.`,
	}

	cmd.AddCommand(newReportMostBorrowedCommand(rootOpts))
	cmd.AddCommand(newReportActiveBorrowersCommand(rootOpts))
	cmd.AddCommand(newReportOverdueCommand(rootOpts))

	return cmd
}

func newReportMostBorrowedCommand(rootOpts *RootOptions) *cobra.Command {
	var topN int
	var export string

	cmd := &cobra.Command{
		Use:           "most-borrowed",
		Short:         "Books ranked by lifetime borrow count",
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

			svc := report.NewService(s.eng, nil)
			books := svc.MostBorrowed(configuredTopN(topN))

			if export != "" {
				return exportReport(export, books, func(w io.Writer) error {
					return report.WriteMostBorrowedCSV(w, books)
				})
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if len(books) == 0 {
				return out.Success("No books.", books)
			}
			lines := make([]string, len(books))
			for i, b := range books {
				lines[i] = fmt.Sprintf("%2d. %s  %-30q %-20s %d", i+1, b.ID, b.Title, b.Author, b.BorrowCount)
			}
			return out.Success(strings.Join(lines, "\n"), books)
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "number of rows (default from config, else 10)")
	cmd.Flags().StringVar(&export, "export", "", "write the report to this file instead of stdout")

	return cmd
}

func newReportActiveBorrowersCommand(rootOpts *RootOptions) *cobra.Command {
	var topN int
	var export string

	cmd := &cobra.Command{
		Use:           "active-borrowers",
		Short:         "Members ranked by books currently out",
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

			svc := report.NewService(s.eng, nil)
			users := svc.ActiveBorrowers(configuredTopN(topN))

			if export != "" {
				return exportReport(export, users, func(w io.Writer) error {
					return report.WriteActiveBorrowersCSV(w, users)
				})
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if len(users) == 0 {
				return out.Success("No members.", users)
			}
			lines := make([]string, len(users))
			for i, u := range users {
				lines[i] = fmt.Sprintf("%2d. %s  %-25s %-8s %d", i+1, u.ID, u.Name, u.Tier, u.CurrentBorrows)
			}
			return out.Success(strings.Join(lines, "\n"), users)
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "number of rows (default from config, else 10)")
	cmd.Flags().StringVar(&export, "export", "", "write the report to this file instead of stdout")

	return cmd
}

func newReportOverdueCommand(rootOpts *RootOptions) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:           "overdue",
		Short:         "Open borrows past their due date",
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

			svc := report.NewService(s.eng, nil)
			rows := svc.Overdue()

			if export != "" {
				return exportReport(export, rows, func(w io.Writer) error {
					return report.WriteOverdueCSV(w, rows)
				})
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if len(rows) == 0 {
				return out.Success("Nothing overdue.", rows)
			}
			lines := make([]string, len(rows))
			for i, r := range rows {
				lines[i] = fmt.Sprintf("%s  %-30q %-25s due %s  %d day(s)",
					r.BorrowID, r.BookTitle, r.Borrower, r.DueOn.Format(dateLayout), r.OverdueDays)
			}
			return out.Success(strings.Join(lines, "\n"), rows)
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "write the report to this file instead of stdout")

	return cmd
}

// exportReport writes a report to path, choosing CSV for .csv paths and
// JSON for everything else.
func exportReport(path string, v any, writeCSV func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "create export file", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		err = writeCSV(f)
	} else {
		err = report.WriteJSON(f, v)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}
	return nil
}
