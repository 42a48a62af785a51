package quota

import (
	"sync"
	"time"
)

// usageRecord holds the counters for a single client identity. Each record
// carries its own mutex so concurrent requests for different identities never
// contend with each other; the read-check-reset-increment sequence for one
// identity is indivisible under the record lock.
type usageRecord struct {
	mu            sync.Mutex
	dailyCount    int
	windowStart   time.Time
	conversations map[string]int
}

// Store is the in-memory identity -> usage table. It exclusively owns all
// usage records; mutation happens only through the atomic primitives below.
// State is process-local and intentionally lost on restart.
type Store struct {
	mu      sync.Mutex
	records map[string]*usageRecord
}

// NewStore creates an empty counter store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*usageRecord),
	}
}

// getRecord returns the record for identity, creating it on first access.
// The outer lock covers only the map lookup, not counter mutation.
func (s *Store) getRecord(identity string) *usageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok {
		rec = &usageRecord{
			conversations: make(map[string]int),
		}
		s.records[identity] = rec
	}
	return rec
}

// IncrementDaily bumps the daily counter for identity by one and returns the
// new count together with the window start it belongs to. A stale window
// (older day than now) is reset to zero before incrementing, so rollover
// happens lazily on access rather than via a background sweep.
func (s *Store) IncrementDaily(identity string, now time.Time) (int, time.Time) {
	rec := s.getRecord(identity)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	boundary := DayStart(now)
	if rec.windowStart.Before(boundary) {
		rec.dailyCount = 0
		rec.windowStart = boundary
	}
	rec.dailyCount++
	return rec.dailyCount, rec.windowStart
}

// IncrementConversation bumps the lifetime counter for the (identity,
// conversationID) pair by one and returns the new count. Conversation
// counters never reset with the passage of time.
func (s *Store) IncrementConversation(identity, conversationID string) int {
	rec := s.getRecord(identity)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.conversations[conversationID]++
	return rec.conversations[conversationID]
}

// RollbackDaily undoes one speculative daily increment. Floors at zero.
func (s *Store) RollbackDaily(identity string) {
	rec := s.getRecord(identity)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.dailyCount > 0 {
		rec.dailyCount--
	}
}

// RollbackConversation undoes one speculative conversation increment.
func (s *Store) RollbackConversation(identity, conversationID string) {
	rec := s.getRecord(identity)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.conversations[conversationID] > 0 {
		rec.conversations[conversationID]--
	}
}

// Peek returns a consistent read-only view of the record: the daily count as
// it would appear after lazy rollover at now, the corresponding window start,
// and a copy of the conversation counters. It never mutates the record, so
// it is safe to call arbitrarily often.
func (s *Store) Peek(identity string, now time.Time) (int, time.Time, map[string]int) {
	rec := s.getRecord(identity)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	daily := rec.dailyCount
	start := rec.windowStart
	if boundary := DayStart(now); start.Before(boundary) {
		daily = 0
		start = boundary
	}

	conversations := make(map[string]int, len(rec.conversations))
	for id, n := range rec.conversations {
		conversations[id] = n
	}
	return daily, start, conversations
}
