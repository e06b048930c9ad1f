package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AppointmentCreated EventType = "appointment.created"
	TokenAssigned      EventType = "token.assigned"
	LabTestCompleted   EventType = "labtest.completed"
)

// Event is the envelope written to the broker. Payload holds the record the
// event is about.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func New(eventType EventType, payload interface{}, at time.Time) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at,
		Payload:    raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Parse reads an envelope off the wire.
func Parse(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
