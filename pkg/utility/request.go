package utility

import (
	"github.com/google/uuid"
)

type RequestID = uuid.UUID

// NewRequestID returns a time ordered id used to correlate log lines of one
// outbound round trip.
func NewRequestID() RequestID {
	return uuid.Must(uuid.NewV7())
}
