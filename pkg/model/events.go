package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the reply published for a venue request received over NATS.
// Payload carries the venue response unchanged; Error is set instead when the
// request could not be served.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Venue         string          `json:"venue"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// NewEnvelope builds an envelope with a fresh ID. A zero correlationID is
// replaced by a new one.
func NewEnvelope(venue, eventType string, correlationID uuid.UUID) *Envelope {
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}
	return &Envelope{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		Venue:         venue,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
	}
}
