package engine

import (
	"context"
	"log/slog"

	"biblio/internal/model"
)

// notify appends a notification record for the user. The registry is the
// single source of truth for in-app delivery; there is no live link between
// books and subscribed users.
func (e *Engine) notify(userID string, typ model.NotificationType, message, token string) model.Notification {
	n := model.Notification{
		ID:      e.ids.NextNotificationID(),
		UserID:  userID,
		Type:    typ,
		Message: message,
		Date:    e.clock.Now(),
	}
	e.notifications[n.ID] = &n

	slog.Info("notification recorded",
		"token", token,
		"notification", n.ID,
		"user", userID,
		"type", string(typ),
	)
	return n
}

// MarkNotificationRead flags a notification as seen.
func (e *Engine) MarkNotificationRead(ctx context.Context, notificationID string) error {
	n, ok := e.notifications[notificationID]
	if !ok {
		return notFound("notification", notificationID)
	}
	if n.Read {
		return nil
	}

	token := e.tokens.Generate()
	n.Read = true
	return e.commit(ctx, "mark notification read", token)
}
