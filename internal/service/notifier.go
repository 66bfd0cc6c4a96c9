package service

import "github.com/Charltoon/Memory-Archive/internal/domain"

// Notifier pushes realtime notifications to a user. ws.Hub implements it.
type Notifier interface {
	Notify(userID string, n *domain.Notification)
}

// notify skips nil notifiers and self-notifications
func notify(n Notifier, recipientID string, event *domain.Notification) {
	if n == nil || recipientID == "" || recipientID == event.Actor.ID {
		return
	}
	n.Notify(recipientID, event)
}
