package websocket

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Mugdhazope/hemut-qna/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// registryCmd is the command interface for the Registry actor.
type registryCmd interface{ isRegistryCmd() }

type baseRegistryCmd struct{}

func (baseRegistryCmd) isRegistryCmd() {}

type registerCmd struct {
	baseRegistryCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseRegistryCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseRegistryCmd
	data []byte
}

type clientCountCmd struct {
	baseRegistryCmd
	replyChannel chan int
}

type stopCmd struct {
	baseRegistryCmd
}

// Registry tracks every live viewer connection and fans broadcast payloads
// out to all of them. A single goroutine owns the connection map; all public
// methods go through the command channel, so register, unregister and
// broadcast are safe under full concurrency.
type Registry struct {
	cmdCh      chan registryCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// NewRegistry creates a registry and starts its actor goroutine.
// maxClients caps concurrent viewer connections (prevents resource exhaustion).
func NewRegistry(maxClients int, clock clockwork.Clock) *Registry {
	r := &Registry{
		cmdCh:      make(chan registryCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go r.run()
	return r
}

// Register adds a connection to the active set. Every call yields a distinct
// tracked entry; there is no deduplication. Returns an error only when the
// registry is at capacity, in which case the connection is closed.
func (r *Registry) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	r.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := r.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection from the active set. Idempotent: removing
// a connection that is not tracked is a no-op.
func (r *Registry) Unregister(conn *websocket.Conn) {
	r.cmdCh <- unregisterCmd{connection: conn}
}

// Broadcast delivers data to every currently registered connection.
// Delivery failures are isolated per connection and never surface to the
// caller; failed connections are evicted after the fan-out loop.
func (r *Registry) Broadcast(data []byte) {
	r.cmdCh <- broadcastCmd{data: data}
}

// ClientCount returns the number of live connections. Returns -1 if the
// command times out.
func (r *Registry) ClientCount() int {
	replyCh := make(chan int, 1)
	r.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := r.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the registry, closing every connection with a close frame.
// Blocks until the actor goroutine has exited or the stop timeout is reached.
func (r *Registry) Stop() {
	r.cmdCh <- stopCmd{}

	timer := r.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-r.done:
		slog.Info("Registry stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Registry stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (r *Registry) run() {
	defer close(r.done)

	for cmd := range r.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			r.handleRegister(c)
		case unregisterCmd:
			r.handleUnregister(c.connection)
		case broadcastCmd:
			r.handleBroadcast(c.data)
		case clientCountCmd:
			c.replyChannel <- len(r.clients)
		case stopCmd:
			r.handleStop()
			return
		default:
			slog.Warn("Registry received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (r *Registry) handleRegister(c registerCmd) {
	if len(r.clients) >= r.maxClients {
		slog.Warn("Rejecting viewer: max clients reached", "max_clients", r.maxClients)
		_ = c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients (%d) reached", r.maxClients)
		return
	}

	r.clients[c.connection] = newClientWriter(c.connection, r.clock)
	metrics.RegistryConnectedClients.Set(float64(len(r.clients)))

	slog.Debug("Viewer registered", "total_clients", len(r.clients))
	c.errorChannel <- nil
}

func (r *Registry) handleUnregister(conn *websocket.Conn) {
	cw, exists := r.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(r.clients, conn)
	metrics.RegistryConnectedClients.Set(float64(len(r.clients)))

	slog.Debug("Viewer unregistered", "remaining_clients", len(r.clients))
}

func (r *Registry) handleBroadcast(data []byte) {
	// Collect failures during iteration, evict after: no mutation of the
	// client map while fanning out.
	var failed []*websocket.Conn
	for conn, writer := range r.clients {
		select {
		case writer.sendChannel <- data:
		default:
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		slog.Warn("Disconnecting slow viewer")
		metrics.RegistrySlowClientsEvicted.Inc()
		r.handleUnregister(conn)
	}
}

func (r *Registry) handleStop() {
	slog.Info("Registry shutting down", "clients", len(r.clients))

	for conn, cw := range r.clients {
		cw.stopGraceful("Server shutting down")
		delete(r.clients, conn)
	}
	metrics.RegistryConnectedClients.Set(0)
}
