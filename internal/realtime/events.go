package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event names exchanged over the realtime channel.
const (
	// EventTaskCreated carries the full task payload.
	EventTaskCreated = "task:created"

	// EventTaskUpdated carries the full task payload.
	EventTaskUpdated = "task:updated"

	// EventTaskDeleted carries only the deleted task's ID.
	EventTaskDeleted = "task:deleted"

	// EventTaskAssigned carries the full task payload and is delivered only
	// to the assignee's room. Clients still filter by assignee identity.
	EventTaskAssigned = "task:assigned"
)

// Envelope is the wire format for every realtime message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope wraps the given payload in an Envelope.
func NewEnvelope(event string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

// DeletedPayload is the payload of a task:deleted event.
type DeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

// Publisher is the contract the task service uses to push events to live
// connections. Implementations never report delivery failures upward;
// publishing to zero connections is a normal, silent no-op.
type Publisher interface {
	// BroadcastAll delivers the event to every joined connection,
	// regardless of room.
	BroadcastAll(event string, payload interface{})

	// NotifyUser delivers the event only to connections in the given
	// user's private room.
	NotifyUser(userID uuid.UUID, event string, payload interface{})
}

// RoomForUser returns the private room name for a user identity.
func RoomForUser(userID uuid.UUID) string {
	return "user:" + userID.String()
}
