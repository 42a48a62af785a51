package quota

import (
	"sync"
	"time"
)

// RejectReason identifies which cap refused a consume call. These are
// expected business outcomes, surfaced as values rather than errors.
type RejectReason string

const (
	ReasonDailyLimit        RejectReason = "daily_limit_exceeded"
	ReasonConversationLimit RejectReason = "conversation_limit_exceeded"
)

// Result is the outcome of a Consume call.
type Result struct {
	Allowed               bool
	Reason                RejectReason // set only when rejected
	DailyRemaining        int
	ConversationRemaining int
	Snapshot              *Snapshot // set only when rejected, for "used X of Y" messaging
}

// WindowStatus describes one quota window for the usage API.
type WindowStatus struct {
	Limit             int     `json:"limit"`
	Used              int     `json:"used"`
	Remaining         int     `json:"remaining"`
	ResetAt           *string `json:"resetAt"`
	SecondsUntilReset *int    `json:"secondsUntilReset"`
}

// Snapshot is a read-only view of current usage for one identity and one
// conversation. The conversation window never resets, so its reset fields
// are always null.
type Snapshot struct {
	Daily WindowStatus `json:"daily"`
	Chat  WindowStatus `json:"chat"`
}

// Service is the caller-facing quota tracker. Constructed once at startup
// and injected into every handler that needs it; state is discarded at
// process shutdown.
type Service struct {
	mu     sync.RWMutex
	limits Limits
	store  *Store
	now    func() time.Time
}

// NewService creates a quota service with the given caps.
func NewService(limits Limits) *Service {
	if limits.Daily <= 0 {
		limits.Daily = DefaultDailyLimit
	}
	if limits.Conversation <= 0 {
		limits.Conversation = DefaultConversationLimit
	}
	return &Service{
		limits: limits,
		store:  NewStore(),
		now:    time.Now,
	}
}

// UpdateLimits swaps in new caps, e.g. after a limits config hot-reload.
// Counters already accumulated are kept as-is.
func (s *Service) UpdateLimits(limits Limits) {
	if limits.Daily <= 0 || limits.Conversation <= 0 {
		return
	}
	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()
}

// GetLimits returns the caps currently in effect.
func (s *Service) GetLimits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Consume reserves one request against both caps for the given identity and
// conversation. The daily counter is incremented first; if either check
// fails, the speculative increments are rolled back so a rejected call never
// net-increases any counter. It never panics; every outcome is in the Result.
func (s *Service) Consume(identity, conversationID string) Result {
	if identity == "" {
		identity = FallbackIdentity
	}

	limits := s.GetLimits()
	now := s.now()

	dailyCount, _ := s.store.IncrementDaily(identity, now)
	if dailyCount > limits.Daily {
		s.store.RollbackDaily(identity)
		snap := s.Snapshot(identity, conversationID)
		return Result{Reason: ReasonDailyLimit, Snapshot: &snap}
	}

	convCount := s.store.IncrementConversation(identity, conversationID)
	if convCount > limits.Conversation {
		s.store.RollbackConversation(identity, conversationID)
		s.store.RollbackDaily(identity)
		snap := s.Snapshot(identity, conversationID)
		return Result{Reason: ReasonConversationLimit, Snapshot: &snap}
	}

	return Result{
		Allowed:               true,
		DailyRemaining:        limits.Daily - dailyCount,
		ConversationRemaining: limits.Conversation - convCount,
	}
}

// Snapshot reports current usage without mutating any counter. An identity
// that has never been seen yields all-zero counts. Safe to call on every UI
// poll.
func (s *Service) Snapshot(identity, conversationID string) Snapshot {
	if identity == "" {
		identity = FallbackIdentity
	}

	limits := s.GetLimits()
	now := s.now()

	daily, _, conversations := s.store.Peek(identity, now)

	resetAt := NextDayStart(now).Format(time.RFC3339)
	secondsUntilReset := SecondsUntilNextDayStart(now)

	convUsed := conversations[conversationID]

	return Snapshot{
		Daily: WindowStatus{
			Limit:             limits.Daily,
			Used:              daily,
			Remaining:         remaining(limits.Daily, daily),
			ResetAt:           &resetAt,
			SecondsUntilReset: &secondsUntilReset,
		},
		Chat: WindowStatus{
			Limit:     limits.Conversation,
			Used:      convUsed,
			Remaining: remaining(limits.Conversation, convUsed),
		},
	}
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
