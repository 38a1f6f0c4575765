package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "learning-service"
	EventVersion = "1.0"

	TypeCertificateIssued = "certificate.issued"
)

// Event is the JSON envelope written to the message bus
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data into an envelope stamped with a fresh id and time
func NewEvent(eventType string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event data: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

// DecodeData unmarshals the event payload into v
func (e *Event) DecodeData(v interface{}) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s event data: %w", e.Type, err)
	}
	return nil
}

// EventPublisher publishes envelopes to a topic
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}
