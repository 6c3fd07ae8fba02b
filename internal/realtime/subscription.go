package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"

	"kamba-santa-backend/internal/common/logger"
)

// Subscription is a live change feed for a single pub/sub channel. Consumers
// read notifications from Events and must call Close when done; Close stops
// delivery and releases the server-side listener.
type Subscription struct {
	pubsub *redis.PubSub
	events chan string
	cancel context.CancelFunc
}

// Events yields one payload per published change notification. The channel is
// closed after Close is called or the subscription context ends.
func (s *Subscription) Events() <-chan string {
	return s.events
}

// Close cancels the subscription.
func (s *Subscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// Hub creates change-feed subscriptions on top of Redis pub/sub.
type Hub struct {
	client *redis.Client
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{client: client}
}

// Publish emits a change notification; failures are logged, not propagated,
// since notifications are best-effort.
func (h *Hub) Publish(ctx context.Context, channel, payload string) {
	if err := h.client.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Warn().Err(err).Str("channel", channel).Msg("Failed to publish change notification")
	}
}

// Subscribe opens a change feed on the given channel.
func (h *Hub) Subscribe(ctx context.Context, channel string) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := h.client.Subscribe(ctx, channel)

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan string, 16),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case sub.events <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub
}

// Channel names for the change feeds.
func GroupChannel(groupID string) string {
	return "events:group:" + groupID
}

func MemberGroupsChannel(userID string) string {
	return "events:user:" + userID + ":groups"
}

func ChatChannel(groupID string) string {
	return "events:chat:" + groupID
}

const PublicGroupsChannel = "events:groups:public"
