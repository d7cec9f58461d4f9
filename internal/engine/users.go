package engine

import (
	"context"
	"log/slog"
	"strings"

	"biblio/internal/model"
)

// UserParams carries the caller-supplied fields for a new or updated user.
// As with books, ID is optional on add: pre-filled from PeekUserID or left
// empty for the engine to allocate.
type UserParams struct {
	ID    string
	Name  string
	Email string
	Phone string
	Tier  model.MembershipTier
}

// AddUser registers a new member with a zero borrow count and no fines.
func (e *Engine) AddUser(ctx context.Context, p UserParams) (model.User, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.User{}, failure(CodeInvalidInput, "name is required", p.ID)
	}
	if !model.ValidTier(p.Tier) {
		return model.User{}, failure(CodeInvalidInput, "unknown membership tier: "+string(p.Tier), p.ID)
	}

	id := p.ID
	if id == "" {
		id = e.ids.NextUserID(p.Tier)
	} else if _, exists := e.users[id]; exists {
		return model.User{}, failure(CodeDuplicateID, "user id already in use", id)
	}

	token := e.tokens.Generate()
	user := model.User{
		ID:    id,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Tier:  p.Tier,
	}
	e.users[id] = &user

	slog.Info("user added", "token", token, "user", id, "tier", string(p.Tier))

	result := user
	return result, e.commit(ctx, "add user", token)
}

// UpdateUser replaces a user's descriptive fields and tier. Borrow count and
// fine balance are owned by the lending transitions.
func (e *Engine) UpdateUser(ctx context.Context, p UserParams) (model.User, error) {
	user, ok := e.users[p.ID]
	if !ok {
		return model.User{}, notFound("user", p.ID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return model.User{}, failure(CodeInvalidInput, "name is required", p.ID)
	}
	if !model.ValidTier(p.Tier) {
		return model.User{}, failure(CodeInvalidInput, "unknown membership tier: "+string(p.Tier), p.ID)
	}

	token := e.tokens.Generate()
	user.Name = p.Name
	user.Email = p.Email
	user.Phone = p.Phone
	user.Tier = p.Tier

	slog.Info("user updated", "token", token, "user", p.ID)

	result := *user
	return result, e.commit(ctx, "update user", token)
}

// DeleteUser removes a member. Rejected while the user has open borrows.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	if _, ok := e.users[userID]; !ok {
		return notFound("user", userID)
	}
	for _, b := range e.borrows {
		if b.UserID == userID && b.Open() {
			return failure(CodeHasOpenBorrows, "user has open borrows", userID)
		}
	}

	token := e.tokens.Generate()
	delete(e.users, userID)

	slog.Info("user deleted", "token", token, "user", userID)
	return e.commit(ctx, "delete user", token)
}

// PayFine reduces a user's unpaid balance. The balance never goes negative;
// overpayment settles it at zero.
func (e *Engine) PayFine(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return failure(CodeInvalidInput, "payment amount must be positive", userID)
	}
	user, ok := e.users[userID]
	if !ok {
		return notFound("user", userID)
	}

	token := e.tokens.Generate()
	user.UnpaidFines -= amount
	if user.UnpaidFines < 0 {
		user.UnpaidFines = 0
	}

	slog.Info("fine paid", "token", token, "user", userID, "amount", amount, "balance", user.UnpaidFines)
	return e.commit(ctx, "pay fine", token)
}
