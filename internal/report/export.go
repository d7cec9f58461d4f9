package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"biblio/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteMostBorrowedCSV writes the most-borrowed report as CSV.
func WriteMostBorrowedCSV(w io.Writer, books []model.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Book ID", "Title", "Author", "Borrow Count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range books {
		row := []string{b.ID, b.Title, b.Author, strconv.Itoa(b.BorrowCount)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActiveBorrowersCSV writes the active-borrowers report as CSV.
func WriteActiveBorrowersCSV(w io.Writer, users []model.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"User ID", "Name", "Membership Type", "Current Borrows"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, u := range users {
		row := []string{u.ID, u.Name, string(u.Tier), strconv.Itoa(u.CurrentBorrows)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", u.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOverdueCSV writes the overdue report as CSV.
func WriteOverdueCSV(w io.Writer, rows []OverdueRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Borrow ID", "Book Title", "Borrower", "Due Date", "Overdue Days"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.BorrowID,
			r.BookTitle,
			r.Borrower,
			r.DueOn.Format("2006-01-02"),
			strconv.FormatInt(r.OverdueDays, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.BorrowID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes any report payload as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
