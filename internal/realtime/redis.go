package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBroker delivers row-change events over Redis pub/sub. One channel per
// table and owner keeps the server-side filter: subscribers only ever see
// their own rows.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker creates a new RedisBroker.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

var _ Broker = (*RedisBroker)(nil)

func channelName(table, userID string) string {
	return fmt.Sprintf("rt:%s:%s", table, userID)
}

// Publish sends an event to the owner's channel for the event's table.
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelName(event.Table, event.UserID), payload).Err()
}

// Subscribe opens a stream of events for one table and owner. The stream ends
// when the context is cancelled or Close is called.
func (b *RedisBroker) Subscribe(ctx context.Context, table, userID string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelName(table, userID))

	// Force the subscription onto the wire before returning so callers do not
	// miss events published right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("realtime: dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return NewSubscription(events, func() { pubsub.Close() }), nil
}
