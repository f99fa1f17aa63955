// Package metrics defines the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry metrics
var (
	// RegistryConnectedClients tracks the number of live viewer connections
	RegistryConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_connected_clients",
			Help: "Number of currently connected viewer WebSocket clients",
		},
	)

	// RegistrySlowClientsEvicted counts clients dropped because their send buffer filled
	RegistrySlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_slow_clients_evicted_total",
			Help: "Total clients evicted for failing to keep up with broadcasts",
		},
	)

	// RegistryPingFailures counts keepalive pings that failed to send
	RegistryPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_ping_failures_total",
			Help: "Total WebSocket ping failures",
		},
	)

	// RegistryMessageSendDuration tracks per-message WebSocket write latency
	RegistryMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registry_message_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
)

// Broadcast metrics
var (
	// BroadcastsTotal counts broadcast envelopes by event type
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total broadcast events emitted by event type",
		},
		[]string{"type"},
	)

	// PubSubEventsPublished counts envelopes published to Redis Pub/Sub
	PubSubEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pubsub_events_published_total",
			Help: "Total broadcast envelopes published to Redis Pub/Sub",
		},
	)

	// PubSubEventsReceived counts envelopes received from Redis Pub/Sub
	PubSubEventsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pubsub_events_received_total",
			Help: "Total broadcast envelopes received from Redis Pub/Sub",
		},
	)
)

// Question metrics
var (
	// QuestionsSubmitted counts accepted question submissions
	QuestionsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questions_submitted_total",
			Help: "Total questions accepted",
		},
	)

	// AnswersAdded counts accepted answers
	AnswersAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "answers_added_total",
			Help: "Total answers appended to questions",
		},
	)

	// StatusChanges counts status transitions by target status
	StatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_status_changes_total",
			Help: "Total question status changes by new status",
		},
		[]string{"status"},
	)
)
