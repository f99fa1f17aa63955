// Package server wires the HTTP surface: question submission and listing,
// answering, admin status changes, account registration and login, the
// WebSocket feed, and the health/metrics endpoints.
package server
