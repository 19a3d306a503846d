// Package view defines the analytics event emitted when a place is resolved.
package view

import (
	"time"

	"github.com/google/uuid"
)

// Event records one caller viewing one place.
type Event struct {
	ID       string    `json:"id"`
	CallerID string    `json:"callerId"`
	PlaceID  string    `json:"placeId"`
	At       time.Time `json:"at"`
}

// NewEvent creates an event with a random id.
func NewEvent(callerID, placeID string, at time.Time) Event {
	return Event{
		ID:       uuid.NewString(),
		CallerID: callerID,
		PlaceID:  placeID,
		At:       at.UTC(),
	}
}

// Fields flattens the event for stream sinks.
func (e Event) Fields() map[string]string {
	return map[string]string{
		"id":        e.ID,
		"caller_id": e.CallerID,
		"place_id":  e.PlaceID,
		"at":        e.At.Format(time.RFC3339Nano),
	}
}
