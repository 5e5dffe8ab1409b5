package entity

import "time"

// TransitionRecord is one row of an application's audit trail, written
// after a workflow transition commits.
type TransitionRecord struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	EventType     string    `json:"event_type"`
	ActorID       int64     `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	CreatedAt     time.Time `json:"created_at"`
}
