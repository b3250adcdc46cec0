package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/myze/momentum/internal/refresh"
	"github.com/myze/momentum/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// SnapshotFeed exposes the latest snapshot plus push subscriptions.
type SnapshotFeed interface {
	SnapshotProvider
	Subscribe() (<-chan *refresh.Snapshot, func())
}

// WSHandler pushes each fresh snapshot to connected widgets, replacing
// client-side polling.
type WSHandler struct {
	feed     SnapshotFeed
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(feed SnapshotFeed, log *logger.Logger) *WSHandler {
	return &WSHandler{
		feed:   feed,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The widget is embedded on third-party pages.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and streams snapshots until the client
// goes away.
// GET /momentum/ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Widget connected")

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	// Drain reads so close/pong frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Late joiners get the current snapshot immediately.
	if snap := h.feed.Snapshot(); snap != nil {
		if err := h.write(conn, snap); err != nil {
			return
		}
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case snap := <-updates:
			if err := h.write(conn, snap); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, snap *refresh.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(snap); err != nil {
		h.logger.WithError(err).Debug("Websocket write failed")
		return err
	}
	return nil
}
