package events

import "time"

// Event is the contract every bus message satisfies.
type Event interface {
	// EventType returns the code for this event (e.g. "SESSION_UPDATED").
	EventType() string

	// Payload returns the data carried by the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event implementation for ad-hoc payloads.
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

// NewSessionUpdated builds the event emitted after every session
// persist. The payload carries identifiers only; consumers re-read the
// session so they never fan out stale state.
func NewSessionUpdated(sessionId, userId, state string) BaseEvent {
	return BaseEvent{
		Type: "SESSION_UPDATED",
		Data: map[string]interface{}{
			"session_id":    sessionId,
			"user_id":       userId,
			"current_state": state,
		},
		OccurredAt: time.Now(),
	}
}
