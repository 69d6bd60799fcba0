package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

// Event types
const (
	// EventScanRequested asks the service to parse MRZ text delivered over the bus.
	EventScanRequested = "mrz.scan.requested"
	EventScanCompleted = "mrz.scan.completed"
	EventScanFailed    = "mrz.scan.failed"
)

// Exchange names
const (
	ExchangeMRZEvents = "mrz.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// ScanRequestedEvent carries MRZ text to parse. Either Lines or Text is set.
type ScanRequestedEvent struct {
	RequestID    string   `json:"request_id"`
	Lines        []string `json:"lines,omitempty"`
	Text         string   `json:"text,omitempty"`
	DocumentType string   `json:"document_type,omitempty"`
	RequestedBy  string   `json:"requested_by,omitempty"`
}

// ScanCompletedEvent is published when a scan produced an MRZ record
type ScanCompletedEvent struct {
	JobID        string       `json:"job_id"`
	RequestID    string       `json:"request_id,omitempty"`
	DocumentType string       `json:"document_type"`
	Accuracy     string       `json:"accuracy"`
	Document     mrz.Document `json:"document"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// ScanFailedEvent is published when no MRZ could be read
type ScanFailedEvent struct {
	JobID     string `json:"job_id"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
