package model

// TierLimits carries the per-tier lending constants. The original system
// expressed these as a subtype per tier; a lookup table is the whole of it.
type TierLimits struct {
	// LoanDays is the loan period: due date = borrow date + LoanDays.
	LoanDays int
	// BorrowLimit caps a user's concurrently open borrows.
	BorrowLimit int
	// FinePerDay is the fine rate in currency units per overdue day.
	FinePerDay int64
}

// MaxUnpaidLimit is the fine ceiling: a user at or above this unpaid balance
// cannot borrow.
const MaxUnpaidLimit int64 = 1000

var tierTable = map[MembershipTier]TierLimits{
	TierStudent: {LoanDays: 14, BorrowLimit: 5, FinePerDay: 50},
	TierFaculty: {LoanDays: 30, BorrowLimit: 10, FinePerDay: 20},
	TierGuest:   {LoanDays: 7, BorrowLimit: 2, FinePerDay: 100},
}

// LimitsFor returns the tier constants. Unknown tiers fall back to Student,
// matching the original system's default branch.
func LimitsFor(tier MembershipTier) TierLimits {
	if l, ok := tierTable[tier]; ok {
		return l
	}
	return tierTable[TierStudent]
}

// ValidTier reports whether tier names a known membership tier.
func ValidTier(tier MembershipTier) bool {
	_, ok := tierTable[tier]
	return ok
}

// Fine computes the fine for a number of overdue days under a tier's rate.
// Zero when not overdue. Pure; accrual happens once, at return time.
func Fine(tier MembershipTier, overdueDays int64) int64 {
	if overdueDays <= 0 {
		return 0
	}
	return overdueDays * LimitsFor(tier).FinePerDay
}
