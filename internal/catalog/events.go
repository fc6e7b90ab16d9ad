package catalog

import (
	"encoding/json"
	"time"
)

const EventSearchPerformed = "SearchPerformed"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type SearchPerformedPayload struct {
	Query   string `json:"query"`
	Format  string `json:"format"`
	Results int    `json:"results"`
	UserID  int64  `json:"user_id"`
}
