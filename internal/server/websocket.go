package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/grindworks/grindstone/internal/game"
	"github.com/grindworks/grindstone/internal/logger"
)

const (
	// eventBuffer sizes the per-connection event channel. A slow reader
	// drops events rather than stalling the game loop.
	eventBuffer = 64

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

type wsEvent struct {
	Type game.EventType `json:"type"`
	Data any            `json:"data"`
}

// handleWebSocket upgrades the connection and streams the caller's game
// events as JSON messages until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	session, err := s.registry.Get(account.ID)
	if err != nil {
		logger.Error("Failed to load game session", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.config.HTTP.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket rejected, origin not allowed",
					"origin", origin, "host", r.Host, "client_ip", getRealIP(r))
			}
			return allowed
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	events := make(chan wsEvent, eventBuffer)
	unsubscribe := session.Subscribe(func(e game.Event) {
		select {
		case events <- wsEvent{Type: e.Type, Data: e.Data}:
		default:
			// reader is behind, drop rather than block the tick
		}
	})

	logger.Info("WebSocket connected", "account_id", account.ID, "client_ip", getRealIP(r))
	go s.writeEvents(conn, events)
	s.readUntilClose(conn)

	unsubscribe()
	close(events)
	logger.Info("WebSocket disconnected", "account_id", account.ID)
}

// writeEvents pumps queued events and pings to the client. Exits when the
// channel closes or a write fails.
func (s *Server) writeEvents(conn *websocket.Conn, events <-chan wsEvent) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer conn.Close()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readUntilClose drains client frames so pong handling and close frames are
// processed. Returns when the connection drops.
func (s *Server) readUntilClose(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
