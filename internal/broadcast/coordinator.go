package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
	"github.com/Mugdhazope/hemut-qna/internal/metrics"
)

// Publisher carries envelopes to other instances. Implemented by the Redis
// Pub/Sub adapter; nil when running a single instance.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Coordinator composes domain events into broadcast envelopes and hands them
// to the connection registry. Fan-out is best-effort: a failure here never
// fails the mutating request that triggered it.
type Coordinator struct {
	sink      domain.EventSink
	publisher Publisher
}

// NewCoordinator creates a coordinator delivering to sink. publisher may be
// nil; when set, envelopes are routed through it and delivered locally via
// Deliver on receipt (so a multi-instance deployment does not double-send).
func NewCoordinator(sink domain.EventSink, publisher Publisher) *Coordinator {
	return &Coordinator{sink: sink, publisher: publisher}
}

// QuestionCreated broadcasts a new_question envelope for a freshly stored question.
func (c *Coordinator) QuestionCreated(ctx context.Context, q *domain.Question) {
	c.emit(ctx, domain.EventNewQuestion, q)
}

// QuestionUpdated broadcasts a question_updated envelope carrying the full
// post-mutation question as re-read from the store.
func (c *Coordinator) QuestionUpdated(ctx context.Context, q *domain.Question) {
	c.emit(ctx, domain.EventQuestionUpdated, q)
}

// Deliver pushes an envelope received from the cross-instance transport to
// the local viewers.
func (c *Coordinator) Deliver(data []byte) {
	c.sink.Broadcast(data)
}

func (c *Coordinator) emit(ctx context.Context, eventType string, q *domain.Question) {
	envelope := domain.Event{Type: eventType, Data: NewQuestionPayload(q)}
	data, err := json.Marshal(envelope)
	if err != nil {
		slog.Error("Failed to marshal broadcast envelope", "event_type", eventType, "error", err)
		return
	}

	metrics.BroadcastsTotal.WithLabelValues(eventType).Inc()

	if c.publisher != nil {
		err := c.publisher.Publish(ctx, data)
		if err == nil {
			return
		}
		// Degrade to local-only delivery rather than losing the event.
		slog.Error("Pub/Sub publish failed, delivering locally", "event_type", eventType, "error", err)
	}

	c.sink.Broadcast(data)
}
