package core

import (
	"net/mail"
	"strings"
)

type (
	// Notification is a message the platform sends to a person when a workflow advances.
	Notification struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	// Notifier is any service that can deliver notifications.
	Notifier interface {
		// Notify delivers messages concurrently
		Notify(messages ...*Notification)
	}
)

func (n *Notification) HasRecipients() bool {
	return len(n.To) > 0
}

func (n *Notification) HasContent() bool {
	return strings.TrimSpace(n.Subject) != "" || strings.TrimSpace(n.Body) != ""
}
