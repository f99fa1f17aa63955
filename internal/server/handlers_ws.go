package server

import (
	"fmt"
	"log/slog"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Viewers embed the feed from arbitrary origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.registry.Register(conn); err != nil {
		slog.Warn("Rejected WebSocket connection", "error", err)
		return nil
	}

	// Read pump — the feed is receive-only, so inbound frames are discarded;
	// blocks until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.registry.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}
