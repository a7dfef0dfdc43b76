package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "GENERATION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used for both publishing and
// reconstructing consumed events.
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

// Session lifecycle event types.
const (
	TypeSessionCreated      = "generation.session_created"
	TypeGenerationCompleted = "generation.completed"
	TypeGenerationPartial   = "generation.partial"
	TypeGenerationStep      = "generation.step"
	TypeModuleRegenerated   = "generation.module_regenerated"
)

// NewSessionEvent builds a lifecycle event for one idea session.
func NewSessionEvent(eventType string, sessionID, userID uuid.UUID, extra map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"session_id": sessionID.String(),
		"user_id":    userID.String(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
