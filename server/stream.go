package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendQueue  = 32
)

// client is one websocket connection. All writes happen in writePump; the
// handler goroutine only reads.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.DebugContext(r.Context(), "websocket upgrade failed",
			slog.Any("error", err))

		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueue)}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()
		c.writePump(ctx, s)
	}()

	s.readPump(ctx, c)

	close(c.send)
	<-done
}

func (s *server) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(s.maxBody)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnContext(ctx, "websocket read failed",
					slog.Any("error", err))
			}

			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		var reply []byte

		out, err := s.evaluate(ctx, msg)
		if err != nil {
			reply, _ = json.Marshal(errorResponse{Error: err.Error()})
		} else if reply, err = json.Marshal(out); err != nil {
			reply, _ = json.Marshal(errorResponse{Error: err.Error()})
		}

		select {
		case c.send <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) writePump(ctx context.Context, s *server) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.WarnContext(ctx, "websocket write failed",
					slog.Any("error", err))

				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				return
			}
		}
	}
}
