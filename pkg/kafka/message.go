package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is the transport-neutral event envelope. Key selects the
// partition (booking events key by reference so per-booking ordering holds).
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header keys stamped on every event.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// NewMessage builds an event message with a JSON-encoded payload and the
// standard headers.
func NewMessage(key, eventType, source string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	now := time.Now().UTC()
	return Message{
		Key:       key,
		Value:     value,
		Timestamp: now,
		Headers: map[string]string{
			HeaderEventID:   uuid.NewString(),
			HeaderEventType: eventType,
			HeaderSource:    source,
			HeaderTimestamp: now.Format(time.RFC3339),
		},
	}, nil
}

// DecodeValue decodes the message payload into v.
func (m *Message) DecodeValue(v any) error {
	return json.Unmarshal(m.Value, v)
}

// EventType returns the event-type header.
func (m *Message) EventType() string {
	return m.Headers[HeaderEventType]
}

// MessageHandler processes one consumed message. A nil return commits the
// offset; an error triggers the consumer's retry policy.
type MessageHandler func(ctx context.Context, msg Message) error
