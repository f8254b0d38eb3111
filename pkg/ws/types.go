// Package ws defines the gallery events pushed to WebSocket subscribers.
package ws

import "time"

// Event types
const (
	EventImageCreated     = "image.created"
	EventImageUpdated     = "image.updated"
	EventCharacterDeleted = "character.deleted"
)

// Event is one gallery change notification.
type Event struct {
	Type        string    `json:"type"`
	CharacterID string    `json:"characterId,omitempty"`
	Payload     any       `json:"payload"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher accepts events for delivery to subscribers. Implementations must not block.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
