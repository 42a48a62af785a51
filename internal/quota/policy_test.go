package quota

import (
	"testing"
	"time"
)

func TestDayStart_UsesUTCBoundary(t *testing.T) {
	// 23:30 in UTC+2 is 21:30 UTC the same day; the boundary must be the
	// UTC day start, not the local one.
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 3, 14, 23, 30, 0, 0, loc)

	got := DayStart(now)
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayStart() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("DayStart() location = %v, want UTC", got.Location())
	}
}

func TestDayStart_MidnightIsItsOwnBoundary(t *testing.T) {
	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := DayStart(midnight); !got.Equal(midnight) {
		t.Fatalf("DayStart(midnight) = %v, want %v", got, midnight)
	}
}

func TestNextDayStart(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 45, 12, 0, time.UTC)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := NextDayStart(now); !got.Equal(want) {
		t.Fatalf("NextDayStart() = %v, want %v", got, want)
	}
}

func TestSecondsUntilNextDayStart(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	if got := SecondsUntilNextDayStart(now); got != 60 {
		t.Fatalf("SecondsUntilNextDayStart() = %d, want 60", got)
	}

	startOfDay := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if got := SecondsUntilNextDayStart(startOfDay); got != 24*3600 {
		t.Fatalf("SecondsUntilNextDayStart(day start) = %d, want %d", got, 24*3600)
	}
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.Daily != DefaultDailyLimit || l.Conversation != DefaultConversationLimit {
		t.Fatalf("DefaultLimits() = %+v", l)
	}
}
