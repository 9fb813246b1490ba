package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// InboundFunc handles a text frame sent by the peer. Returning an error only
// logs it; the connection stays open.
type InboundFunc func(ctx context.Context, payload []byte) error

// NewUpgrader builds an upgrader that accepts the given origins. An empty
// list or "*" accepts every origin; requests without an Origin header are
// always accepted since mobile clients do not send one.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
			return ok
		},
	}
}

// Client pumps JSON frames from a channel to one websocket connection
type Client struct {
	conn    *websocket.Conn
	logger  zerolog.Logger
	inbound InboundFunc
}

// NewClient wraps an upgraded connection. inbound may be nil, in which case
// peer frames are read and dropped.
func NewClient(conn *websocket.Conn, logger zerolog.Logger, inbound InboundFunc) *Client {
	return &Client{
		conn:    conn,
		logger:  logger,
		inbound: inbound,
	}
}

// Run writes every value received on frames as a JSON text frame until the
// peer disconnects, frames is closed or ctx is cancelled. cancel is called
// when the peer goes away so producers bound to the same context stop.
func (c *Client) Run(ctx context.Context, cancel context.CancelFunc, frames <-chan any) {
	go c.readPump(ctx, cancel)
	c.writePump(ctx, frames)
	cancel()
}

// readPump reads until the connection fails, then cancels the session
func (c *Client) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logger.Info().Msg("WebSocket closed normally")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			default:
				c.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			return
		}

		if c.inbound == nil {
			continue
		}
		message = bytes.TrimSpace(bytes.ReplaceAll(message, newline, space))
		if len(message) == 0 {
			continue
		}
		if err := c.inbound(ctx, message); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to handle client frame")
		}
	}
}

// writePump owns every write on the connection
func (c *Client) writePump(ctx context.Context, frames <-chan any) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame, ok := <-frames:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				c.logger.Error().Err(err).Msg("Failed to marshal websocket frame")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
