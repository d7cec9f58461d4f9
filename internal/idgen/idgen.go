// Package idgen allocates the structured identifiers used across the ledger:
// BK-001 for books, STU-/FCL-/GST-001 for users by tier, BR-0001 for borrows,
// RES-0001 for reservations, NTF-0001 for notifications.
//
// Each category has its own monotonic counter, seeded at load time from the
// highest identifier already present in the snapshot. Peek returns the next
// identifier without consuming it (for UI pre-fill); Next allocates it.
package idgen

import (
	"fmt"
	"strconv"
	"strings"

	"biblio/internal/model"
)

type category int

const (
	catBook category = iota
	catStudent
	catFaculty
	catGuest
	catBorrow
	catReservation
	catNotification
	numCategories
)

var formats = [numCategories]struct {
	prefix string
	width  int
}{
	catBook:         {"BK-", 3},
	catStudent:      {"STU-", 3},
	catFaculty:      {"FCL-", 3},
	catGuest:        {"GST-", 3},
	catBorrow:       {"BR-", 4},
	catReservation:  {"RES-", 4},
	catNotification: {"NTF-", 4},
}

// Generator owns the per-category counters. It is not safe for concurrent
// use; the engine serializes access along with everything else.
type Generator struct {
	next [numCategories]int
}

// New returns a generator with every counter at 1.
func New() *Generator {
	g := &Generator{}
	for i := range g.next {
		g.next[i] = 1
	}
	return g
}

// Seed resumes every counter past the highest identifier present in the
// snapshot. Identifiers that do not parse are ignored, matching the original
// system's lenient load.
func (g *Generator) Seed(snap model.Snapshot) {
	for _, b := range snap.Books {
		g.observe(catBook, b.ID)
	}
	for _, u := range snap.Users {
		g.observe(catStudent, u.ID)
		g.observe(catFaculty, u.ID)
		g.observe(catGuest, u.ID)
	}
	for _, b := range snap.Borrows {
		g.observe(catBorrow, b.ID)
	}
	for _, r := range snap.Reservations {
		g.observe(catReservation, r.ID)
	}
	for _, n := range snap.Notifications {
		g.observe(catNotification, n.ID)
	}
}

func (g *Generator) observe(c category, id string) {
	f := formats[c]
	if !strings.HasPrefix(id, f.prefix) {
		return
	}
	n, err := strconv.Atoi(id[len(f.prefix):])
	if err != nil || n < g.next[c] {
		return
	}
	g.next[c] = n + 1
}

func (g *Generator) format(c category) string {
	f := formats[c]
	return fmt.Sprintf("%s%0*d", f.prefix, f.width, g.next[c])
}

func (g *Generator) take(c category) string {
	id := g.format(c)
	g.next[c]++
	return id
}

func userCategory(tier model.MembershipTier) category {
	switch tier {
	case model.TierFaculty:
		return catFaculty
	case model.TierGuest:
		return catGuest
	default:
		return catStudent
	}
}

// PeekBookID returns the next book identifier without allocating it.
func (g *Generator) PeekBookID() string { return g.format(catBook) }

// NextBookID allocates the next book identifier.
func (g *Generator) NextBookID() string { return g.take(catBook) }

// PeekUserID returns the next identifier for the tier without allocating it.
func (g *Generator) PeekUserID(tier model.MembershipTier) string {
	return g.format(userCategory(tier))
}

// NextUserID allocates the next identifier for the tier.
func (g *Generator) NextUserID(tier model.MembershipTier) string {
	return g.take(userCategory(tier))
}

// PeekBorrowID returns the next borrow identifier without allocating it.
func (g *Generator) PeekBorrowID() string { return g.format(catBorrow) }

// NextBorrowID allocates the next borrow identifier.
func (g *Generator) NextBorrowID() string { return g.take(catBorrow) }

// PeekReservationID returns the next reservation identifier without
// allocating it.
func (g *Generator) PeekReservationID() string { return g.format(catReservation) }

// NextReservationID allocates the next reservation identifier.
func (g *Generator) NextReservationID() string { return g.take(catReservation) }

// PeekNotificationID returns the next notification identifier without
// allocating it.
func (g *Generator) PeekNotificationID() string { return g.format(catNotification) }

// NextNotificationID allocates the next notification identifier.
func (g *Generator) NextNotificationID() string { return g.take(catNotification) }
