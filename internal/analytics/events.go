// Package analytics collects translation-request events, publishes them to
// Kafka, and aggregates them into service statistics.
package analytics

import "time"

type EventType string

const (
	EventTranslate  EventType = "translate"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
)

// TranslateEvent describes one translation request.
type TranslateEvent struct {
	Type         EventType `json:"type"`
	Sentence     string    `json:"sentence"`
	TopCommand   string    `json:"top_command,omitempty"`
	TopScore     float64   `json:"top_score"`
	TotalParses  int       `json:"total_parses"`
	Returned     int       `json:"returned"`
	CellsVisited int       `json:"cells_visited"`
	LatencyMs    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}
