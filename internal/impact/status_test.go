package impact

import (
	"testing"
	"time"

	"github.com/mira/volunteer-hub/internal/models"
)

func TestDeriveStatus_VerifiedProofWinsOverEverything(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	proofs := []models.Proof{{Verified: false}, {Verified: true}}

	for _, raw := range []string{"Upcoming", "pending", "garbage", ""} {
		got := DeriveStatusAt(raw, "2020-01-01", proofs, now)
		if got != StatusCompleted {
			t.Fatalf("raw %q: expected Completed, got %s", raw, got)
		}
	}
}

func TestDeriveStatus_StoredCompletedAnyCasing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"Completed", "completed", "  COMPLETED "} {
		got := DeriveStatusAt(raw, "2099-01-01", nil, now)
		if got != StatusCompleted {
			t.Fatalf("raw %q: expected Completed, got %s", raw, got)
		}
	}
}

func TestDeriveStatus_PastDatePending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got := DeriveStatusAt("Upcoming", "2026-03-09", nil, now)
	if got != StatusPending {
		t.Fatalf("expected Pending, got %s", got)
	}
}

func TestDeriveStatus_TodayIsNotPending(t *testing.T) {
	// The boundary is inclusive of today regardless of time-of-day: an
	// opportunity dated today never reads as Pending.
	for _, loc := range []*time.Location{time.UTC, time.FixedZone("west", -11*3600), time.FixedZone("east", 13*3600)} {
		now := time.Date(2025, 6, 15, 23, 30, 0, 0, loc)
		got := DeriveStatusAt("Upcoming", "2025-06-15", nil, now)
		if got != StatusUpcoming {
			t.Fatalf("zone %v: expected Upcoming, got %s", loc, got)
		}
	}
}

func TestDeriveStatus_IgnoresTimeSuffixOnDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)

	// A timestamp suffix must not shift the calendar day.
	got := DeriveStatusAt("pending", "2026-03-10T23:59:00+14:00", nil, now)
	if got != StatusUpcoming {
		t.Fatalf("expected Upcoming, got %s", got)
	}
}

func TestDeriveStatus_MalformedDateDefaultsUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"", "soon", "03/10/2026", "2026-3-1"} {
		got := DeriveStatusAt("pending", raw, nil, now)
		if got != StatusUpcoming {
			t.Fatalf("date %q: expected Upcoming, got %s", raw, got)
		}
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	proofs := []models.Proof{{Verified: false}}

	first := DeriveStatusAt("pending", "2026-01-01", proofs, now)
	second := DeriveStatusAt("pending", "2026-01-01", proofs, now)
	if first != second {
		t.Fatalf("expected identical results, got %s then %s", first, second)
	}
}

func TestParseStatus_Normalizes(t *testing.T) {
	cases := map[string]Status{
		"pending":   StatusPending,
		"Pending":   StatusPending,
		"completed": StatusCompleted,
		"UPCOMING":  StatusUpcoming,
	}
	for raw, want := range cases {
		got, ok := ParseStatus(raw)
		if !ok || got != want {
			t.Fatalf("raw %q: expected %s ok, got %s %v", raw, want, got, ok)
		}
	}

	if _, ok := ParseStatus("cancelled"); ok {
		t.Fatal("expected unrecognized status to report ok=false")
	}
}

func TestParseCalendarDate_LocalMidnight(t *testing.T) {
	got, ok := ParseCalendarDate("2025-06-15T10:00:00Z")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
