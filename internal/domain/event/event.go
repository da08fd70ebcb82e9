package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event. ResourceID is the primary entity the
// event is about (project, milestone, invoice, payment or file id).
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	ResourceID    int64          `json:"resource_id"`
	Payload       map[string]any `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}

// New creates a new domain event with generated ID and timestamp
func New(eventType Type, resourceID int64, payload map[string]any) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ResourceID:    resourceID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to a correlation chain
func NewWithCorrelation(eventType Type, resourceID int64, payload map[string]any, correlationID string) *Event {
	evt := New(eventType, resourceID, payload)
	evt.CorrelationID = correlationID
	return evt
}

// PayloadString retrieves a string value from the payload
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// PayloadInt retrieves an int64 value from the payload, accepting the
// numeric types JSON round-trips produce.
func (e *Event) PayloadInt(key string) int64 {
	val, ok := e.Payload[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
