// Package redis provides the optional Redis adapters: client setup and the
// Pub/Sub transport that carries broadcast envelopes between instances.
package redis
