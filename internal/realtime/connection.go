package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection lifecycle states. Transitions only move forward:
// Connecting -> Authenticated -> Joined -> Disconnected.
type connState int32

const (
	stateConnecting connState = iota
	stateAuthenticated
	stateJoined
	stateDisconnected
)

// Timing parameters for the websocket pumps.
const (
	// writeWait is the time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// pingPeriod is the interval between pings. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; clients only send pongs.
	maxMessageSize = 512

	// sendBufferSize is the per-connection outbound queue. A connection
	// that falls this far behind is dropped rather than blocking the hub.
	sendBufferSize = 64
)

// connection is one live websocket scoped to an authenticated user.
type connection struct {
	hub    *Hub
	ws     *websocket.Conn
	userID uuid.UUID
	room   string

	// send is the outbound queue. It is never closed: teardown is
	// signalled through done so concurrent enqueues can never hit a
	// closed channel.
	send chan []byte
	done chan struct{}

	state  atomic.Int32
	once   sync.Once
	logger *slog.Logger
}

func newConnection(hub *Hub, ws *websocket.Conn, userID uuid.UUID, logger *slog.Logger) *connection {
	c := &connection{
		hub:    hub,
		ws:     ws,
		userID: userID,
		room:   RoomForUser(userID),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("user_id", userID.String())),
	}
	c.state.Store(int32(stateAuthenticated))
	return c
}

// Room implements receiver.
func (c *connection) Room() string {
	return c.room
}

// TrySend implements receiver. It never blocks; a full buffer reports
// failure so the hub can drop the connection. Safe to call concurrently
// with Disconnect: the queue itself is never closed.
func (c *connection) TrySend(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Disconnect implements receiver. Idempotent; the first call transitions
// the connection to its terminal state and signals done, which ends the
// write pump and closes the socket. Frames still queued are discarded,
// consistent with at-most-once delivery.
func (c *connection) Disconnect() {
	c.once.Do(func() {
		c.state.Store(int32(stateDisconnected))
		close(c.done)
	})
}

// run joins the connection to the hub and starts both pumps. It is called
// once by the handler after authentication succeeds.
func (c *connection) run() {
	if !c.hub.register(c) {
		// Hub already shut down.
		c.Disconnect()
		_ = c.ws.Close()
		return
	}
	c.state.Store(int32(stateJoined))

	go c.writePump()
	go c.readPump()
}

// writePump drains the outbound queue to the websocket and keeps the
// connection alive with periodic pings. It exits when done is signalled
// or a write fails, closing the socket either way.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			// Disconnect was called; tell the peer we are going away.
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("write failed, dropping connection",
					slog.String("error", err.Error()))
				c.teardown()
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.teardown()
				return
			}
		}
	}
}

// readPump consumes inbound frames. Clients do not send application
// messages; the pump exists to process control frames and to detect the
// peer going away, at which point the connection is torn down.
func (c *connection) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.teardown()
			return
		}
	}
}

// teardown removes the connection from the hub and finalizes it.
func (c *connection) teardown() {
	c.hub.unregister(c)
	c.Disconnect()
}
