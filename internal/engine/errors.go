package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expected failure results. Callers branch on the code
// to present a specific message; the codes are stable strings so they also
// appear unchanged in JSON output and scenario transcripts.
type ErrorCode string

const (
	// CodeNotFound - a referenced book, user, borrow, or reservation does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeDuplicateID - an explicit identifier is already taken.
	CodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// CodeInvalidInput - malformed input (empty required field, bad tier, non-positive amount).
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeLimitExceeded - the user is at their tier's borrow limit.
	CodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"

	// CodeFineLimitExceeded - the user's unpaid fines are at or above the ceiling.
	CodeFineLimitExceeded ErrorCode = "FINE_LIMIT_EXCEEDED"

	// CodeBookUnavailable - the book is borrowed, or reserved for someone else.
	CodeBookUnavailable ErrorCode = "BOOK_UNAVAILABLE"

	// CodeReservationExpired - the caller's notified reservation lapsed; the
	// queue has been advanced as part of reporting this.
	CodeReservationExpired ErrorCode = "RESERVATION_EXPIRED"

	// CodeBookAvailable - reservation rejected because the book is available;
	// the caller should borrow instead.
	CodeBookAvailable ErrorCode = "BOOK_AVAILABLE"

	// CodeAlreadyBorrowed - the user already holds an open borrow of this book.
	CodeAlreadyBorrowed ErrorCode = "ALREADY_BORROWED"

	// CodeAlreadyReturned - the borrow record is already closed.
	CodeAlreadyReturned ErrorCode = "ALREADY_RETURNED"

	// CodeNotPending - only a pending reservation may be cancelled.
	CodeNotPending ErrorCode = "NOT_PENDING"

	// CodeBookInUse - a book with an open borrow or live reservation cannot be deleted.
	CodeBookInUse ErrorCode = "BOOK_IN_USE"

	// CodeHasOpenBorrows - a user with open borrows cannot be deleted.
	CodeHasOpenBorrows ErrorCode = "HAS_OPEN_BORROWS"

	// CodeCheckpointFailed - the mutation applied in memory but the
	// persistence checkpoint failed. Durability is degraded; state is not
	// rolled back.
	CodeCheckpointFailed ErrorCode = "CHECKPOINT_FAILED"
)

// Error is a typed failure result. Business rejections carry a Code and the
// identifier of the entity involved; infrastructure failures additionally
// wrap the underlying error.
type Error struct {
	Code    ErrorCode
	Message string
	Entity  string // identifier of the entity involved, when there is one
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Code, e.Message, e.Entity, e.Err)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Entity)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the failure code from an error chain. Returns "" for nil
// and for errors that are not engine failures.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given failure code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsNotFound reports whether err is an entity-not-found failure.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsCheckpointFailure reports whether err means the mutation applied but the
// persistence checkpoint did not.
func IsCheckpointFailure(err error) bool { return HasCode(err, CodeCheckpointFailed) }

func notFound(kind, id string) *Error {
	return &Error{Code: CodeNotFound, Message: kind + " not found", Entity: id}
}

func failure(code ErrorCode, message, entity string) *Error {
	return &Error{Code: code, Message: message, Entity: entity}
}
