package impact

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	alice = uuid.New()
	bob   = uuid.New()
)

// Wednesday; the most recent Sunday is 2026-03-08.
var lbNow = time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

func TestLeaderboard_RanksByImpactScore(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(10), Featured: true, OpportunityDate: "2026-03-09"},
		{UserID: bob, Name: "Bob", Hours: f(20), OpportunityDate: "2026-03-09"},
	}

	entries := LeaderboardAt(rows, WindowAll, lbNow)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Bob's 20 plain hours outscore Alice's 10 featured (15).
	if entries[0].UserID != bob || entries[0].ImpactScore != 20 || entries[0].Rank != 1 {
		t.Fatalf("expected Bob first with 20, got %+v", entries[0])
	}
	if entries[1].UserID != alice || entries[1].ImpactScore != 15 || entries[1].Rank != 2 {
		t.Fatalf("expected Alice second with 15, got %+v", entries[1])
	}
}

func TestLeaderboard_GroupsPerUser(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(3), OpportunityDate: "2026-03-09"},
		{UserID: alice, Name: "Alice", Hours: f(4), Featured: true, OpportunityDate: "2026-03-10"},
	}

	entries := LeaderboardAt(rows, WindowAll, lbNow)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].TotalHours != 7 || entries[0].ImpactScore != 9 {
		t.Fatalf("expected 7 hours / 9 score, got %+v", entries[0])
	}
}

func TestLeaderboard_WeekWindowBoundary(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(5), OpportunityDate: "2026-03-08"}, // exactly the Sunday
		{UserID: bob, Name: "Bob", Hours: f(5), OpportunityDate: "2026-02-28"},     // 8 days before it
	}

	entries := LeaderboardAt(rows, WindowWeek, lbNow)
	if len(entries) != 1 || entries[0].UserID != alice {
		t.Fatalf("expected only Alice to survive the week filter, got %+v", entries)
	}
}

func TestLeaderboard_MonthWindow(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(5), OpportunityDate: "2026-03-01"},
		{UserID: bob, Name: "Bob", Hours: f(5), OpportunityDate: "2026-02-27"},
	}

	entries := LeaderboardAt(rows, WindowMonth, lbNow)
	if len(entries) != 1 || entries[0].UserID != alice {
		t.Fatalf("expected only March rows, got %+v", entries)
	}
}

func TestLeaderboard_AppliedAtTakesPrecedenceOverDate(t *testing.T) {
	applied := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	rows := []CompletedRow{
		// Old opportunity date, but applied within the week.
		{UserID: alice, Name: "Alice", Hours: f(5), OpportunityDate: "2025-01-01", AppliedAt: &applied},
	}

	entries := LeaderboardAt(rows, WindowWeek, lbNow)
	if len(entries) != 1 {
		t.Fatalf("expected appliedAt to qualify the row, got %+v", entries)
	}
}

func TestLeaderboard_MissingHoursDefaultTwo(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Featured: true, OpportunityDate: "2026-03-09"},
	}

	entries := LeaderboardAt(rows, WindowAll, lbNow)
	if entries[0].TotalHours != 2 || entries[0].ImpactScore != 3 {
		t.Fatalf("expected default 2 hours / 3 score, got %+v", entries[0])
	}
}

func TestLeaderboard_TiesKeepInputOrder(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(5), OpportunityDate: "2026-03-09"},
		{UserID: bob, Name: "Bob", Hours: f(5), OpportunityDate: "2026-03-09"},
	}

	entries := LeaderboardAt(rows, WindowAll, lbNow)
	if entries[0].UserID != alice || entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("expected stable order with consecutive ranks, got %+v", entries)
	}
}

func TestLeaderboard_EmptyInput(t *testing.T) {
	entries := LeaderboardAt(nil, WindowWeek, lbNow)
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}

func TestUserRank(t *testing.T) {
	rows := []CompletedRow{
		{UserID: alice, Name: "Alice", Hours: f(5), OpportunityDate: "2026-03-09"},
	}
	entries := LeaderboardAt(rows, WindowAll, lbNow)

	if rank := UserRank(entries, alice); rank == nil || *rank != 1 {
		t.Fatalf("expected rank 1, got %v", rank)
	}
	if rank := UserRank(entries, bob); rank != nil {
		t.Fatalf("expected nil for absent user, got %v", rank)
	}
}

func TestParseWindow_DefaultsToAll(t *testing.T) {
	if ParseWindow("WEEK") != WindowWeek || ParseWindow("month") != WindowMonth {
		t.Fatal("expected case-insensitive window parsing")
	}
	if ParseWindow("") != WindowAll || ParseWindow("year") != WindowAll {
		t.Fatal("expected unknown windows to default to all")
	}
}
