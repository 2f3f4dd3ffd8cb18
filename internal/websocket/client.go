package websocket

import (
	"errors"
	"sync"
	"time"

	apperrors "whiteboard/internal/errors"
	"whiteboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type ClientConfig struct {
	SendBuffer     int
	MaxMessageSize int64
}

// Client is one authenticated WebSocket session.
type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	registry  *Registry
	router    *Router
	cfg       ClientConfig
}

func NewClient(conn *websocket.Conn, registry *Registry, router *Router, cfg ClientConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Client{
		id:       uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
		registry: registry,
		router:   router,
		cfg:      cfg,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues data without blocking. It fails once the client is closed or
// when its buffer is full.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return apperrors.ErrStaleConnection
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return apperrors.ErrStaleConnection
	default:
		return apperrors.ErrSlowConsumer
	}
}

// Close stops delivery. The write pump sends a close frame and shuts the
// socket, which ends the read pump and triggers teardown.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// ReadPump handles inbound frames in arrival order until the socket fails,
// then tears the session down.
func (c *Client) ReadPump() {
	defer func() {
		c.Close()
		rooms := c.registry.Unregister(c)
		c.conn.Close()
		logger.WithFields(logrus.Fields{"conn_id": c.id, "rooms": rooms}).Info("Connection closed")
	}()

	if c.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			return
		}

		if err := c.router.Handle(c, message); err != nil {
			c.logHandleError(err)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Client) logHandleError(err error) {
	entry := logger.WithFields(logrus.Fields{"conn_id": c.id}).WithError(err)
	switch {
	case errors.Is(err, apperrors.ErrStaleConnection):
		entry.Debug("Dropped message from stale connection")
	case errors.Is(err, apperrors.ErrMalformedMessage), errors.Is(err, apperrors.ErrNotMember):
		entry.Warn("Dropped message")
	case errors.Is(err, apperrors.ErrPersistence):
		entry.Error("Store unavailable while handling message")
	default:
		entry.Error("Message handling failed")
	}
}
