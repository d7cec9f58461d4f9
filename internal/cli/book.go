package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"biblio/internal/engine"
	"biblio/internal/model"
)

// NewBookCommand creates the book command group.
func NewBookCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the catalog",
	}

	cmd.AddCommand(newBookAddCommand(rootOpts))
	cmd.AddCommand(newBookUpdateCommand(rootOpts))
	cmd.AddCommand(newBookDeleteCommand(rootOpts))
	cmd.AddCommand(newBookGetCommand(rootOpts))
	cmd.AddCommand(newBookListCommand(rootOpts))
	cmd.AddCommand(newBookSearchCommand(rootOpts))

	return cmd
}

func newBookAddCommand(rootOpts *RootOptions) *cobra.Command {
	var params engine.BookParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Long: `Add a book to the catalog. The book starts out available. An ID is
assigned automatically unless --id is given.

Example:
  biblio book add --title "Dune" --author "Frank Herbert" --category "Sci-Fi"`,
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
			book, err := s.eng.AddBook(ctx, params)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Added %s: %q by %s", book.ID, book.Title, book.Author), book)
		},
	}

	cmd.Flags().StringVar(&params.ID, "id", "", "explicit book ID (default: next BK-NNN)")
	cmd.Flags().StringVar(&params.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&params.Author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&params.Category, "category", "", "category")
	cmd.Flags().StringVar(&params.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&params.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&params.Edition, "edition", "", "edition")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func newBookUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var params engine.BookParams

	cmd := &cobra.Command{
		Use:           "update <book-id>",
		Short:         "Update a book's metadata",
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
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			book, err := s.eng.UpdateBook(ctx, params)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Updated %s: %q by %s", book.ID, book.Title, book.Author), book)
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&params.Author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&params.Category, "category", "", "category")
	cmd.Flags().StringVar(&params.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&params.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&params.Edition, "edition", "", "edition")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func newBookDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "delete <book-id>",
		Short:         "Delete a book (refused while borrowed or reserved)",
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
			if err := s.eng.DeleteBook(ctx, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Deleted %s", args[0]), map[string]string{"id": args[0]})
		},
	}
	return cmd
}

func newBookGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <book-id>",
		Short:         "Show one book",
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
			book, ok := s.eng.GetBook(args[0])
			if !ok {
				return out.Fail(&engine.Error{Code: engine.CodeNotFound, Message: "book not found", Entity: args[0]})
			}
			return out.Success(formatBook(book), book)
		},
	}
	return cmd
}

func newBookListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List all books",
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
			books := s.eng.ListBooks()
			return out.Success(formatBookTable(books), books)
		},
	}
	return cmd
}

func newBookSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title, author, or category",
		Long: `Search books by substring match against title, author, and category.
Matching is case-insensitive and Unicode-normalized.`,
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
			books := s.eng.SearchBooks(args[0])
			return out.Success(formatBookTable(books), books)
		},
	}
	return cmd
}

func formatBook(b model.Book) string {
	return fmt.Sprintf("%s  %-30q %-20s %-10s borrows=%d", b.ID, b.Title, b.Author, b.Status, b.BorrowCount)
}

func formatBookTable(books []model.Book) string {
	if len(books) == 0 {
		return "No books."
	}
	var sb strings.Builder
	for i, b := range books {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(formatBook(b))
	}
	return sb.String()
}
