package services

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routing keys of published domain events.
const (
	EventRecipeCreated       = "recipe.created"
	EventRecipeDeleted       = "recipe.deleted"
	EventSubscriptionCreated = "subscription.created"
)

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Event is the envelope of every published message.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// RecipeEvent is the payload of recipe.created and recipe.deleted.
type RecipeEvent struct {
	RecipeID uint   `json:"recipe_id"`
	AuthorID uint   `json:"author_id"`
	Name     string `json:"name"`
}

// SubscriptionEvent is the payload of subscription.created.
type SubscriptionEvent struct {
	SubscriberID       uint   `json:"subscriber_id"`
	SubscriberUsername string `json:"subscriber_username"`
	AuthorID           uint   `json:"author_id"`
	AuthorEmail        string `json:"author_email"`
	AuthorUsername     string `json:"author_username"`
}

// publish sends an event after the triggering write committed. Delivery is best effort:
// failures are logged and never undo the write.
func publish(ctx context.Context, p EventPublisher, eventType string, data interface{}) {
	if p == nil {
		log.Debugf("event %s skipped: no publisher configured", eventType)
		return
	}
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := p.Publish(ctx, eventType, event); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
