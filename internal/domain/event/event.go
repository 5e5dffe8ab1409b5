// Package event defines the domain events a workflow transition emits.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event records one committed workflow transition. Events are immutable
// once published.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApplicationID int64                  `json:"application_id"`
	ActorID       int64                  `json:"actor_id"`
	ActorRole     string                 `json:"actor_role"`
	FromStatus    string                 `json:"from_status"`
	ToStatus      string                 `json:"to_status"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}

// New creates a new domain event with a generated ID and timestamp
func New(eventType Type, applicationID, actorID int64, actorRole, fromStatus, toStatus string) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		ActorID:       actorID,
		ActorRole:     actorRole,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		Timestamp:     time.Now(),
	}
}

// WithPayload returns a copy of the event with an added payload entry
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	clone := *e
	clone.Payload = payload
	return &clone
}

// PayloadString retrieves a string value from the payload
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// PayloadFloat retrieves a float64 value from the payload
func (e *Event) PayloadFloat(key string) float64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0
}
