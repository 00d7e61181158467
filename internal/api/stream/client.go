package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

const maxInboundBytes = 4096

// Config tunes websocket keep-alive and buffering.
type Config struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func (c Config) normalize() Config {
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	return c
}

// Client is one authenticated websocket connection. Outbound payloads are
// written by a single goroutine, one text frame per payload.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	config Config
	logger logger.Interface

	send      chan []byte
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, userID string, config Config, log logger.Interface) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		config: config,
		logger: log,
		send:   make(chan []byte, config.SendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// UserID returns the authenticated user.
func (c *Client) UserID() string { return c.userID }

// IsOpen reports whether Close has not been called yet.
func (c *Client) IsOpen() bool { return !c.closed.Load() }

// Send queues payload without blocking.
func (c *Client) Send(payload []byte) error {
	if c.closed.Load() {
		return errors.New(errors.DeliveryError, "connection closed", "connection")
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errors.New(errors.DeliveryError, "connection closed", "connection")
	default:
		return errors.New(errors.DeliveryError, "send buffer full", "connection")
	}
}

// Close sends a close frame and releases the socket. Only the first call
// has an effect.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		deadline := time.Now().Add(c.config.WriteWait)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.conn.Close()
	})
}

// readPump discards inbound frames and keeps the read deadline alive on
// pongs. It returns when the peer goes away.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && c.IsOpen() {
				c.logger.Warn("websocket read failed",
					logger.Field{Key: "connection", Value: c.id},
					logger.Field{Key: "error", Value: err.Error()},
				)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}
