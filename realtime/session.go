package realtime

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tnqbao/gau-object-gallery/infra"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	sendBufferSize = 256
)

// Session is one subscriber connection.
type Session struct {
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	logger *infra.LoggerClient

	// last hub sequence seen at registration
	joinedAt uint64
}

func NewSession(hub *Hub, conn *websocket.Conn, logger *infra.LoggerClient) *Session {
	return newSession(hub, conn, logger, sendBufferSize)
}

func newSession(hub *Hub, conn *websocket.Conn, logger *infra.LoggerClient, bufferSize int) *Session {
	return &Session{
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, bufferSize),
		logger: logger,
	}
}

// ReadPump discards inbound frames and keeps the read deadline alive on pong.
func (s *Session) ReadPump() {
	ctx := context.Background()
	defer func() {
		s.hub.Unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.WarningWithContextf(ctx, "[Realtime] Failed to set read deadline: %v", err)
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.WarningWithContextf(ctx, "[Realtime] Session read error: %v", err)
			}
			return
		}
	}
}

// WritePump delivers queued events and pings until the hub closes send.
func (s *Session) WritePump() {
	ctx := context.Background()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.WarningWithContextf(ctx, "[Realtime] Session write error: %v", err)
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
