package analytics

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventInvalid    EventType = "invalid_query"
	EventFailed     EventType = "failed_query"
)

// QueryEvent describes one evaluation. Hits counts printed documents, after
// metadata misses were dropped.
type QueryEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Groups    int       `json:"groups"`
	Discarded int       `json:"discarded_groups"`
	Ranked    int       `json:"ranked"`
	Hits      int       `json:"hits"`
	LatencyUs int64     `json:"latency_us"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewQueryEvent stamps an event with a fresh id and the current time.
func NewQueryEvent(typ EventType, query string) QueryEvent {
	return QueryEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Query:     query,
		Timestamp: time.Now().UTC(),
	}
}
