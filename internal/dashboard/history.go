package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"fundingboard/internal/poller"
)

// fetchRecord is the serialisable representation of one completed fetch
// attempt shown in the dashboard's history view.
type fetchRecord struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs float64   `json:"duration_ms"`
	Markets    int       `json:"markets"`
	Error      string    `json:"error,omitempty"`
}

// historyStore retains a bounded collection of the most recent fetch attempts.
// It is safe for concurrent use.
type historyStore struct {
	mu      sync.RWMutex
	items   []fetchRecord
	limit   int
	enabled atomic.Bool
}

func newHistoryStore(limit int) *historyStore {
	if limit <= 0 {
		limit = 200
	}
	hs := &historyStore{limit: limit}
	hs.enabled.Store(true)
	return hs
}

func (s *historyStore) record(result poller.Result) {
	if !s.enabled.Load() {
		return
	}

	record := fetchRecord{
		ID:         result.ID,
		Trigger:    string(result.Trigger),
		Timestamp:  result.Started,
		DurationMs: float64(result.Duration.Nanoseconds()) / 1e6,
		Markets:    result.Markets,
		Error:      result.Err,
	}

	s.mu.Lock()
	s.items = append(s.items, record)
	if len(s.items) > s.limit {
		// keep the most recent entries only
		s.items = append([]fetchRecord(nil), s.items[len(s.items)-s.limit:]...)
	}
	s.mu.Unlock()
}

func (s *historyStore) snapshot() []fetchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]fetchRecord, len(s.items))
	copy(out, s.items)
	return out
}

func (s *historyStore) close() {
	s.enabled.Store(false)
}
