package payloads

import (
	"time"

	"github.com/google/uuid"
)

// EventType — тип события о работе
type EventType string

const (
	ArtworkCreated EventType = "artwork.created"
	ArtworkDeleted EventType = "artwork.deleted"
	ArtworkRated   EventType = "artwork.rated"
	ArtworkFlagged EventType = "artwork.flagged"
)

// ArtworkEvent — сообщение, которое сервер кладёт в RabbitMQ, а воркер читает.
type ArtworkEvent struct {
	Type       EventType `json:"type"`
	ArtworkID  uuid.UUID `json:"artwork_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	ImageKey   string    `json:"image_key,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Flagged    bool      `json:"flagged,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewArtworkEvent заполняет время события.
func NewArtworkEvent(t EventType, artworkID, ownerID uuid.UUID) ArtworkEvent {
	return ArtworkEvent{
		Type:       t,
		ArtworkID:  artworkID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
}
