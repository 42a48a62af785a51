// Package quota enforces the per-client usage caps that gate AI chat requests:
// a daily cap that resets at each UTC day boundary and a per-conversation cap
// that never resets within the process lifetime.
package quota

import "time"

// Default caps, overridable via DAILY_LIMIT / CONVERSATION_LIMIT and the
// hot-reloadable limits config.
const (
	DefaultDailyLimit        = 20
	DefaultConversationLimit = 5
)

// FallbackIdentity is the shared bucket used when a client identity cannot be
// resolved. All unresolvable clients share one quota.
const FallbackIdentity = "anon"

// Limits holds the two caps enforced by the Service.
type Limits struct {
	Daily        int `json:"dailyLimit"`
	Conversation int `json:"conversationLimit"`
}

// DefaultLimits returns the built-in caps.
func DefaultLimits() Limits {
	return Limits{
		Daily:        DefaultDailyLimit,
		Conversation: DefaultConversationLimit,
	}
}

// DayStart returns the start of the UTC calendar day containing now.
// All day-boundary math is UTC so rollover behavior does not depend on
// server timezone configuration.
func DayStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDayStart returns the start of the UTC calendar day after now.
func NextDayStart(now time.Time) time.Time {
	return DayStart(now).Add(24 * time.Hour)
}

// SecondsUntilNextDayStart returns how many seconds remain until the daily
// window resets. Used for client-facing "resets in" messaging.
func SecondsUntilNextDayStart(now time.Time) int {
	return int(NextDayStart(now).Sub(now.UTC()) / time.Second)
}
