package model

import (
	"errors"
	"fmt"
)

// TransitionEvent is an input to the availability state machine.
type TransitionEvent string

const (
	EventBorrow  TransitionEvent = "borrow"
	EventReturn  TransitionEvent = "return"
	EventReserve TransitionEvent = "reserve"
)

// Raw-transition rejections. The engine maps these onto its failure codes.
var (
	ErrAlreadyBorrowed   = errors.New("book is already borrowed")
	ErrAlreadyReserved   = errors.New("book is already reserved")
	ErrInvalidTransition = errors.New("invalid availability transition")
)

// Transition applies the raw availability state machine and returns the next
// state. The table is keyed by (state, event):
//
//	Available + borrow  → Borrowed
//	Available + reserve → Reserved (the workflow layer rejects this path and
//	                      redirects callers to borrow; the raw transition
//	                      stays legal here)
//	Borrowed  + return  → Available (the engine moves the book straight to
//	                      Reserved when it promotes a pending reservation)
//	Borrowed  + borrow  → ErrAlreadyBorrowed
//	Reserved  + borrow  → Borrowed (hold-window eligibility is checked by the
//	                      engine before the transition is requested)
//	Reserved  + reserve → ErrAlreadyReserved
//
// Any other pair is ErrInvalidTransition. A book only ever occupies one of
// the three states; the state and the book's Status field change together.
func Transition(status AvailabilityStatus, event TransitionEvent) (AvailabilityStatus, error) {
	switch status {
	case StatusAvailable:
		switch event {
		case EventBorrow:
			return StatusBorrowed, nil
		case EventReserve:
			return StatusReserved, nil
		}
	case StatusBorrowed:
		switch event {
		case EventBorrow:
			return status, ErrAlreadyBorrowed
		case EventReturn:
			return StatusAvailable, nil
		}
	case StatusReserved:
		switch event {
		case EventBorrow:
			return StatusBorrowed, nil
		case EventReserve:
			return status, ErrAlreadyReserved
		}
	}
	return status, fmt.Errorf("%w: %s + %s", ErrInvalidTransition, status, event)
}
