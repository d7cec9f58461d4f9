package harness

import "biblio/internal/model"

// evaluateChecks validates the final state against the scenario's checks.
// Failures are accumulated on the result rather than aborting, so one run
// reports every broken check.
func (h *Harness) evaluateChecks(checks []Check, result *Result) {
	for i, check := range checks {
		switch check.Kind {
		case CheckBookStatus:
			book, ok := h.eng.GetBook(check.Book)
			if !ok {
				result.AddError("checks[%d]: book %s not found", i, check.Book)
				continue
			}
			if string(book.Status) != check.Status {
				result.AddError("checks[%d]: book %s status = %s, want %s",
					i, check.Book, book.Status, check.Status)
			}

		case CheckUserState:
			user, ok := h.eng.GetUser(check.User)
			if !ok {
				result.AddError("checks[%d]: user %s not found", i, check.User)
				continue
			}
			if check.Borrows != nil && user.CurrentBorrows != *check.Borrows {
				result.AddError("checks[%d]: user %s borrows = %d, want %d",
					i, check.User, user.CurrentBorrows, *check.Borrows)
			}
			if check.Fines != nil && user.UnpaidFines != *check.Fines {
				result.AddError("checks[%d]: user %s fines = %d, want %d",
					i, check.User, user.UnpaidFines, *check.Fines)
			}

		case CheckReservationStatus:
			found := false
			for _, r := range h.eng.ListReservations("") {
				if r.ID == check.Reservation {
					found = true
					if string(r.Status) != check.Status {
						result.AddError("checks[%d]: reservation %s status = %s, want %s",
							i, check.Reservation, r.Status, check.Status)
					}
					break
				}
			}
			if !found {
				result.AddError("checks[%d]: reservation %s not found", i, check.Reservation)
			}

		case CheckQueueOrder:
			queue := h.eng.PendingQueue(check.Book)
			if !sameQueue(queue, check.Users) {
				got := make([]string, len(queue))
				for j, r := range queue {
					got[j] = r.UserID
				}
				result.AddError("checks[%d]: book %s queue = %v, want %v",
					i, check.Book, got, check.Users)
			}

		case CheckNotificationCount:
			count := 0
			for _, n := range h.eng.ListNotifications(check.User) {
				if check.Type == "" || string(n.Type) == check.Type {
					count++
				}
			}
			if count != check.Count {
				result.AddError("checks[%d]: user %s has %d %s notification(s), want %d",
					i, check.User, count, check.Type, check.Count)
			}
		}
	}
}

func sameQueue(queue []model.Reservation, users []string) bool {
	if len(queue) != len(users) {
		return false
	}
	for i, r := range queue {
		if r.UserID != users[i] {
			return false
		}
	}
	return true
}
