package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kstepanov/dormhub/internal/model"
)

const (
	// writeWait bounds a single notification write.
	writeWait = 10 * time.Second

	// readLimit caps inbound frames; the channel is server-to-client only.
	readLimit = 512
)

// Client adapts a websocket connection to the Subscriber interface.
type Client struct {
	conn *websocket.Conn

	// mu serializes writes; concurrent broadcasts may target the same conn.
	mu sync.Mutex
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one notification as a JSON text frame.
func (c *Client) Send(n model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(n)
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// ReadLoop blocks until the peer disconnects, then unsubscribes the client.
// Viewers never send application data; the read pump only detects closure.
func (c *Client) ReadLoop(h *Hub) {
	defer func() {
		h.Unsubscribe(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
