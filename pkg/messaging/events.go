package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	EventConversionCompleted = "dtr.conversion.completed"
	EventConversionFailed    = "dtr.conversion.failed"
)

// Exchange names
const (
	ExchangeDTREvents = "dtr.events"
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

// ConversionCompletedEvent is published when a punch log is converted to a report
type ConversionCompletedEvent struct {
	ConversionID   string    `json:"conversion_id"`
	SourceFilename string    `json:"source_filename"`
	OutputPath     string    `json:"output_path"`
	ActiveMonth    string    `json:"active_month"`
	EmployeeCount  int       `json:"employee_count"`
	EventCount     int       `json:"event_count"`
	DroppedRows    int       `json:"dropped_rows"`
	ConvertedAt    time.Time `json:"converted_at"`
}

// ConversionFailedEvent is published when a punch log cannot be converted
type ConversionFailedEvent struct {
	SourceFilename string `json:"source_filename"`
	Code           string `json:"code"`
	Reason         string `json:"reason"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
