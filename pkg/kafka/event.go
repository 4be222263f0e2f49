package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is stamped on every envelope. Envelopes carrying a newer
// version are invalid.
const EnvelopeVersion = 1

// ErrInvalidEvent is returned for envelopes missing their type or aggregate.
var ErrInvalidEvent = errors.New("kafka: invalid event")

// Aggregate identifies the entity an event is about. Its ID is the message
// key, so events about one aggregate stay ordered.
type Aggregate struct {
	ID   string
	Type string
}

// Event is the JSON envelope of every published message.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EventOption sets an optional envelope field.
type EventOption func(*Event)

// CorrelatedWith tags the event with a request correlation id. An empty id
// is ignored.
func CorrelatedWith(id string) EventOption {
	return func(e *Event) {
		if id != "" {
			e.CorrelationID = id
		}
	}
}

// WithMetadata adds one metadata entry. An empty value is ignored.
func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		if value == "" {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}

// NewEvent wraps data in an envelope emitted by source, with a fresh id and
// the current time.
func NewEvent(source, eventType string, agg Aggregate, data any, opts ...EventOption) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	e := &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   agg.ID,
		AggregateType: agg.Type,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) validate() error {
	switch {
	case e.EventType == "":
		return fmt.Errorf("%w: missing event type", ErrInvalidEvent)
	case e.AggregateID == "":
		return fmt.Errorf("%w: missing aggregate id", ErrInvalidEvent)
	case e.Version > EnvelopeVersion:
		return fmt.Errorf("%w: unsupported envelope version %d", ErrInvalidEvent, e.Version)
	}
	return nil
}

// Encode returns the JSON form of the envelope.
func (e *Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.EventID, err)
	}
	return b, nil
}
