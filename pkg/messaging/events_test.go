package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := ConversionCompletedEvent{
		ConversionID:   "b7c9d1f0-0000-0000-0000-000000000001",
		SourceFilename: "jan.dat",
		OutputPath:     "/out/jan-DTR-2025-01.xlsx",
		ActiveMonth:    "2025-01",
		EmployeeCount:  3,
		EventCount:     42,
		DroppedRows:    1,
		ConvertedAt:    time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}

	event, err := NewEvent(EventConversionCompleted, "dtr-service", "req-123", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventConversionCompleted, event.Type)
	assert.Equal(t, "dtr-service", event.Source)
	assert.Equal(t, "req-123", event.CorrelationID)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 5*time.Second)

	var decoded ConversionCompletedEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent(EventConversionFailed, "dtr-service", "", make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalData_FailedEvent(t *testing.T) {
	event, err := NewEvent(EventConversionFailed, "dtr-service", "", ConversionFailedEvent{
		SourceFilename: "noise.dat",
		Code:           "EMPTY_DATASET",
		Reason:         "noise.dat: no parsable punch events",
	})
	require.NoError(t, err)

	var decoded ConversionFailedEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, "EMPTY_DATASET", decoded.Code)
	assert.Equal(t, "noise.dat", decoded.SourceFilename)
}

func TestGenerateEventID(t *testing.T) {
	id := GenerateEventID()
	assert.NotEmpty(t, id)
	assert.Contains(t, id, "-")
}
