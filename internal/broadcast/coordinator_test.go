package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
)

type captureSink struct {
	payloads [][]byte
}

func (s *captureSink) Broadcast(data []byte) {
	s.payloads = append(s.payloads, data)
}

type capturePublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, data)
	return nil
}

func sampleQuestion() *domain.Question {
	return &domain.Question{
		ID:        "q-123",
		Author:    "Alice",
		Message:   "Is this open Sunday?",
		Status:    domain.StatusPending,
		CreatedAt: time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC),
		Answers:   nil,
	}
}

func TestCoordinator_QuestionCreatedEnvelope(t *testing.T) {
	sink := &captureSink{}
	coordinator := NewCoordinator(sink, nil)

	coordinator.QuestionCreated(context.Background(), sampleQuestion())

	require.Len(t, sink.payloads, 1, "exactly one broadcast per mutation")

	var envelope struct {
		Type string          `json:"type"`
		Data QuestionPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sink.payloads[0], &envelope))

	assert.Equal(t, "new_question", envelope.Type)
	assert.Equal(t, "q-123", envelope.Data.ID)
	assert.Equal(t, "Alice", envelope.Data.Author)
	assert.Equal(t, "pending", envelope.Data.Status)
	assert.Equal(t, "2025-03-01T12:30:45Z", envelope.Data.CreatedAt)
}

func TestCoordinator_AnswersAlwaysAnArray(t *testing.T) {
	sink := &captureSink{}
	coordinator := NewCoordinator(sink, nil)

	coordinator.QuestionCreated(context.Background(), sampleQuestion())

	require.Len(t, sink.payloads, 1)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(sink.payloads[0], &raw))
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["data"], &data))

	assert.JSONEq(t, `[]`, string(data["answers"]), "answers must serialize as [], not null")
}

func TestCoordinator_QuestionUpdatedRendersAnswers(t *testing.T) {
	sink := &captureSink{}
	coordinator := NewCoordinator(sink, nil)

	q := sampleQuestion()
	q.Status = domain.StatusAnswered
	q.Answers = []domain.Answer{
		{Author: "Bob", Content: "Yes", CreatedAt: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)},
		{Author: "Carol", Content: "Until noon", CreatedAt: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)},
	}

	coordinator.QuestionUpdated(context.Background(), q)

	require.Len(t, sink.payloads, 1)

	var envelope struct {
		Type string          `json:"type"`
		Data QuestionPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sink.payloads[0], &envelope))

	assert.Equal(t, "question_updated", envelope.Type)
	assert.Equal(t, "answered", envelope.Data.Status)
	require.Len(t, envelope.Data.Answers, 2)
	assert.Equal(t, "Bob", envelope.Data.Answers[0].Author)
	assert.Equal(t, "2025-03-01T13:00:00Z", envelope.Data.Answers[0].CreatedAt)
	assert.Equal(t, "Carol", envelope.Data.Answers[1].Author)
}

func TestCoordinator_PublisherRoutesAroundLocalSink(t *testing.T) {
	sink := &captureSink{}
	publisher := &capturePublisher{}
	coordinator := NewCoordinator(sink, publisher)

	coordinator.QuestionCreated(context.Background(), sampleQuestion())

	// With a transport configured the envelope goes out through Pub/Sub only;
	// local delivery happens when the subscription loop calls Deliver.
	assert.Len(t, publisher.payloads, 1)
	assert.Empty(t, sink.payloads)

	coordinator.Deliver(publisher.payloads[0])
	assert.Len(t, sink.payloads, 1)
	assert.Equal(t, publisher.payloads[0], sink.payloads[0])
}

func TestCoordinator_PublishFailureFallsBackLocally(t *testing.T) {
	sink := &captureSink{}
	publisher := &capturePublisher{err: fmt.Errorf("connection refused")}
	coordinator := NewCoordinator(sink, publisher)

	coordinator.QuestionCreated(context.Background(), sampleQuestion())

	assert.Empty(t, publisher.payloads)
	require.Len(t, sink.payloads, 1, "event must not be lost when the transport is down")
}
