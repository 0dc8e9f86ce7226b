// Package queue is a Redis-backed job queue with delayed retries and a
// dead-letter list. The pipeline uses it for work that must not run on
// the hot path: report precomputation after a session seals, and
// archival of aggregated log batches.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueConfig tunes worker count and retry behavior.
type QueueConfig struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// Message is one unit of queued work. Payload round-trips through JSON,
// so handlers receive json.RawMessage and decode with ParsePayload.
type Message struct {
	ID        string
	Type      string
	Payload   interface{}
	Attempts  int
	Timestamp time.Time
}

// ParsePayload decodes a handler payload into T. It accepts the typed
// value (same-process enqueue) or the JSON forms a Redis round-trip
// produces.
func ParsePayload[T any](payload interface{}) (*T, error) {
	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		var result T
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return &result, nil
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("re-encode payload: %w", err)
		}
		var result T
		if err := json.Unmarshal(b, &result); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}
