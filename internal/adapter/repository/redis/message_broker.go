package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/yapli/internal/domain"
)

const (
	roomChannelPrefix = "yapli:room:"
	subscriberBuffer  = 16
)

// MessageBroker fans room messages out through Redis Pub/Sub so readers
// connected to any server instance receive them.
type MessageBroker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewMessageBroker creates a new Redis-backed message broker.
func NewMessageBroker(client *redis.Client, logger *slog.Logger) *MessageBroker {
	return &MessageBroker{
		client: client,
		logger: logger.With("component", "redis_message_broker"),
	}
}

func roomChannel(roomURL string) string {
	return roomChannelPrefix + roomURL
}

// Publish sends msg to every subscriber of the room.
func (b *MessageBroker) Publish(ctx context.Context, roomURL string, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := b.client.Publish(ctx, roomChannel(roomURL), payload).Err(); err != nil {
		if isNetworkError(err) {
			b.logger.Warn("redis unavailable, message not broadcast", "room_url", roomURL, "message_id", msg.ID)
		}
		return fmt.Errorf("failed to PUBLISH to redis: %w", err)
	}
	return nil
}

// Subscribe returns a channel of messages published to the room. The channel
// is closed once cancel is called, ctx ends or the subscription drops.
func (b *MessageBroker) Subscribe(ctx context.Context, roomURL string) (<-chan domain.Message, func(), error) {
	sub := b.client.Subscribe(ctx, roomChannel(roomURL))

	// Wait for the subscription to be confirmed so no publish is missed
	// between the caller's return and the first receive.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to SUBSCRIBE to redis: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan domain.Message, subscriberBuffer)

	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				msg, err := decodeMessage(m.Payload)
				if err != nil {
					b.logger.Warn("failed to unmarshal message from channel, skipping", "channel", m.Channel, "error", err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

func decodeMessage(payload string) (domain.Message, error) {
	var msg domain.Message
	err := json.Unmarshal([]byte(payload), &msg)
	return msg, err
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed)
}
