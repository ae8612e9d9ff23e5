// Package notifications reacts to domain events delivered by the message broker.
package notifications

import (
	"encoding/json"
	"fmt"

	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2/log"
)

// Queue and routing key the subscriber notifier listens on.
const (
	SubscriberQueue = "foodgram.notifications.subscriber"
	SubscriberTopic = services.EventSubscriptionCreated
)

// Sender delivers an email.
type Sender interface {
	SendMail(toEmail, subject, body string) error
}

// SubscriberNotifier emails an author when someone subscribes to them.
type SubscriberNotifier struct {
	sender Sender
}

// NewSubscriberNotifier creates a new SubscriberNotifier.
func NewSubscriberNotifier(sender Sender) *SubscriberNotifier {
	return &SubscriberNotifier{sender: sender}
}

// Handle processes one subscription.created message body.
func (n *SubscriberNotifier) Handle(body []byte) error {
	var event struct {
		Type string                     `json:"type"`
		Data services.SubscriptionEvent `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode subscription event: %w", err)
	}
	if event.Type != services.EventSubscriptionCreated {
		log.Debugf("ignoring %s event", event.Type)
		return nil
	}
	if event.Data.AuthorEmail == "" {
		return fmt.Errorf("subscription event for author %d has no email", event.Data.AuthorID)
	}

	subject := "You have a new subscriber"
	text := fmt.Sprintf("Hello %s,\n\n%s subscribed to your recipes.\n",
		event.Data.AuthorUsername, event.Data.SubscriberUsername)
	if err := n.sender.SendMail(event.Data.AuthorEmail, subject, text); err != nil {
		return err
	}
	log.Infof("notified author id=%d about subscriber id=%d", event.Data.AuthorID, event.Data.SubscriberID)
	return nil
}
