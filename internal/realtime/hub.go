package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// receiver is the delivery target the hub fans out to. It is implemented
// by *connection; tests register their own receivers.
type receiver interface {
	// Room returns the private room the receiver belongs to.
	Room() string

	// TrySend enqueues an already-encoded frame without blocking.
	// Returns false when the receiver cannot keep up.
	TrySend(frame []byte) bool

	// Disconnect tears the receiver down. Called by the hub when the
	// receiver falls behind or the hub shuts down.
	Disconnect()
}

// Hub maps live connections to per-user rooms and fans events out to them.
// The membership maps are the only shared mutable state in the realtime
// layer; they are mutated on connect/disconnect and read on every emit,
// guarded by a single RWMutex.
type Hub struct {
	mu     sync.RWMutex
	conns  map[receiver]struct{}
	rooms  map[string]map[receiver]struct{}
	closed bool
	logger *slog.Logger
}

// Ensure Hub implements the Publisher contract.
var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub. The hub is ready for use immediately and
// must be torn down with Shutdown.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:  make(map[receiver]struct{}),
		rooms:  make(map[string]map[receiver]struct{}),
		logger: logger.With(slog.String("component", "realtime_hub")),
	}
}

// register adds a connection to the hub and joins it to its room.
// Returns false if the hub has already been shut down.
func (h *Hub) register(r receiver) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.conns[r] = struct{}{}
	room := r.Room()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[receiver]struct{})
	}
	h.rooms[room][r] = struct{}{}

	h.logger.Debug("connection joined",
		slog.String("room", room),
		slog.Int("connections", len(h.conns)))
	return true
}

// unregister removes a connection from the hub and its room.
// Safe to call more than once for the same connection.
func (h *Hub) unregister(r receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[r]; !ok {
		return
	}

	delete(h.conns, r)
	room := r.Room()
	if members, ok := h.rooms[room]; ok {
		delete(members, r)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	h.logger.Debug("connection left",
		slog.String("room", room),
		slog.Int("connections", len(h.conns)))
}

// BroadcastAll delivers the event to every joined connection regardless of
// room. Used for task created/updated/deleted events, since any participant
// may need to reconcile. Delivery problems are logged, never returned.
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]receiver, 0, len(h.conns))
	for r := range h.conns {
		targets = append(targets, r)
	}
	h.mu.RUnlock()

	h.deliver(event, frame, targets)
}

// NotifyUser delivers the event only to connections in the given user's
// room. Notifying a user with no live connections is a silent no-op.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, payload interface{}) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	room := RoomForUser(userID)
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]receiver, 0, len(members))
	for r := range members {
		targets = append(targets, r)
	}
	h.mu.RUnlock()

	h.deliver(event, frame, targets)
}

func (h *Hub) encode(event string, payload interface{}) ([]byte, bool) {
	envelope, err := NewEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event payload",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return nil, false
	}

	frame, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to encode event envelope",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return nil, false
	}
	return frame, true
}

// deliver pushes the frame to each target without blocking. A receiver
// whose buffer is full is disconnected instead of stalling the emit path;
// it can reconnect and re-fetch the task list to catch up.
func (h *Hub) deliver(event string, frame []byte, targets []receiver) {
	dropped := 0
	for _, r := range targets {
		if !r.TrySend(frame) {
			h.unregister(r)
			r.Disconnect()
			dropped++
		}
	}

	h.logger.Debug("event delivered",
		slog.String("event", event),
		slog.Int("receivers", len(targets)-dropped),
		slog.Int("dropped", dropped))
}

// Shutdown disconnects every live connection and refuses new ones.
// It returns once all connections have been told to close or the context
// is done.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	targets := make([]receiver, 0, len(h.conns))
	for r := range h.conns {
		targets = append(targets, r)
	}
	h.conns = make(map[receiver]struct{})
	h.rooms = make(map[string]map[receiver]struct{})
	h.mu.Unlock()

	for _, r := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Disconnect()
	}

	h.logger.Info("hub shut down", slog.Int("closed_connections", len(targets)))
	return nil
}

// ConnectionCount reports the number of joined connections. Used by tests
// and the health endpoint.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
