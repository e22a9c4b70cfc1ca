package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "chat.turn.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used for both publishing and
// reconstructing events off the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnCompleted is emitted once per fully persisted chat turn.
func NewTurnCompleted(sessionId, userId uuid.UUID, firstTurn bool, prompt string) BaseEvent {
	return BaseEvent{
		Type: "chat.turn.completed",
		Data: map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"user_id":         userId.String(),
			"first_turn":      firstTurn,
			"prompt":          prompt,
		},
		OccurredAt: time.Now(),
	}
}
