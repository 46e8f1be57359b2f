package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one joined connection: the transport handle, the room it
// belongs to, and its assigned codename. Destroyed on transport close.
type Client struct {
	ID       string
	Codename string

	conn *connWrapper
	send chan []byte // buffered to avoid dead-locks on slow clients
	room *Room
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: newConnWrapper(conn),
		send: make(chan []byte, 64),
	}
}

// Room returns the room this client was admitted to.
func (c *Client) Room() *Room { return c.room }

// ReadPump consumes inbound frames until the transport closes, then runs
// disconnect cleanup. Malformed frames are dropped without effect.
func (c *Client) ReadPump(reg *Registry) {
	defer func() {
		reg.Leave(c)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(reg.maxFrameBytes)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				reg.logger.Debugf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		frame, ok := ParseFrame(raw)
		if !ok {
			continue
		}

		if frame.Type == FrameDestroy {
			reg.ManualDestroy(c.room.Name())
			continue
		}

		reg.Relay(c, frame)
	}
}

// WritePump drains the send queue onto the transport and keeps the
// connection alive with pings. Exits when the queue is closed or a write
// fails.
func (c *Client) WritePump(reg *Registry) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteClose(websocket.CloseNormalClosure, "")
				return
			}
			if err := c.conn.WriteMessage(payload); err != nil {
				reg.logger.Debugf("ws write error (client %s): %v", c.ID, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return
			}
		}
	}
}
