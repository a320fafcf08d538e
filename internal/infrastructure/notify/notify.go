// Package notify delivers committed wishlist activity to interested users.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// Publisher sends a JSON-encodable message to a pub/sub channel
type Publisher interface {
	Publish(ctx context.Context, channel string, value interface{}) (int64, error)
}

// Message is the payload published for every activity event
type Message struct {
	WishlistID uint                   `json:"wishlist_id"`
	Entry      wishlist.ActivityEntry `json:"entry"`
	Recipients []uint                 `json:"recipients"`
}

// RedisPublisher publishes events on a redis channel. Subscribers filter on
// the recipient list.
type RedisPublisher struct {
	publisher Publisher
	topic     string
}

// NewRedisPublisher creates a notifier publishing to topic
func NewRedisPublisher(publisher Publisher, topic string) *RedisPublisher {
	return &RedisPublisher{publisher: publisher, topic: topic}
}

// Notify implements wishlist.Notifier
func (n *RedisPublisher) Notify(ctx context.Context, event wishlist.Event) error {
	if len(event.Recipients) == 0 {
		return nil
	}

	msg := Message{
		WishlistID: event.Entry.WishlistID,
		Entry:      event.Entry,
		Recipients: event.Recipients,
	}
	if _, err := n.publisher.Publish(ctx, n.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s activity: %w", event.Entry.Verb, err)
	}
	return nil
}

// LogNotifier writes events to the log. It is the delivery channel used when
// redis is disabled.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements wishlist.Notifier
func (n *LogNotifier) Notify(_ context.Context, event wishlist.Event) error {
	n.logger.WithFields(logrus.Fields{
		"wishlist_id": event.Entry.WishlistID,
		"actor_id":    event.Entry.ActorID,
		"verb":        event.Entry.Verb,
		"recipients":  event.Recipients,
	}).Debug("Notifying wishlist members")
	return nil
}

// Multi fans an event out to every notifier and joins their errors
type Multi []wishlist.Notifier

// Notify implements wishlist.Notifier
func (m Multi) Notify(ctx context.Context, event wishlist.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
