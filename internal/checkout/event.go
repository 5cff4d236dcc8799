package checkout

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	pkgpubsub "github.com/farmfreshconnect/farmfresh-backend/pkg/pubsub"
)

// OrderCreatedEvent announces the orders produced by a single checkout.
type OrderCreatedEvent struct {
	BuyerID    uuid.UUID   `json:"buyer_id"`
	OrderIDs   []uuid.UUID `json:"order_ids"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher emits checkout events after the transaction commits.
// Delivery is best effort.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
}

type pubsubPublisher struct {
	publisher *pubsub.Publisher
}

// NewPubSubPublisher emits order events on the configured orders topic.
func NewPubSubPublisher(client *pkgpubsub.Client) EventPublisher {
	return &pubsubPublisher{publisher: client.OrdersPublisher()}
}

func (p *pubsubPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": "order.created",
		},
	})
	_, err = result.Get(ctx)
	return err
}

// NoopPublisher drops events. Used when Pub/Sub is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, OrderCreatedEvent) error {
	return nil
}
