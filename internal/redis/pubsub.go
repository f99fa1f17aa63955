package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Mugdhazope/hemut-qna/internal/metrics"
)

// eventsChannel carries serialized broadcast envelopes between instances.
const eventsChannel = "qna:events"

// PubSub provides cross-instance broadcast via Redis Pub/Sub. Envelopes are
// published as opaque bytes; every subscribed instance forwards them to its
// local connection registry.
type PubSub struct {
	rdb *goredis.Client
}

// NewPubSub creates a PubSub on an existing client.
func NewPubSub(client *goredis.Client) *PubSub {
	return &PubSub{rdb: client}
}

// Publish sends a broadcast envelope to every subscribed instance.
func (ps *PubSub) Publish(ctx context.Context, data []byte) error {
	if err := ps.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		return err
	}
	metrics.PubSubEventsPublished.Inc()
	return nil
}

// Subscription is an active events subscription. Ch yields raw envelopes
// until Close is called or the context is cancelled.
type Subscription struct {
	sub    *goredis.PubSub
	Ch     <-chan []byte
	cancel context.CancelFunc
}

// Close unsubscribes and stops the pump goroutine.
func (s *Subscription) Close() {
	s.cancel()
	_ = s.sub.Close()
}

// Subscribe starts listening for broadcast envelopes from other instances.
func (ps *PubSub) Subscribe(ctx context.Context) *Subscription {
	sub := ps.rdb.Subscribe(ctx, eventsChannel)

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []byte, 64)

	go func() {
		defer close(ch)
		msgCh := sub.Channel()
		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				metrics.PubSubEventsReceived.Inc()
				select {
				case ch <- []byte(msg.Payload):
				default:
					// Drop if the receiver is slow; viewers will catch up on
					// the next mutation.
					slog.Warn("Dropping pubsub envelope: receiver is slow")
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{
		sub:    sub,
		Ch:     ch,
		cancel: cancel,
	}
}
