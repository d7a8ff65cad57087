package impact

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mira/volunteer-hub/internal/models"
)

type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow folds a raw query value into a Window, defaulting to all.
func ParseWindow(raw string) Window {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "week":
		return WindowWeek
	case "month":
		return WindowMonth
	}
	return WindowAll
}

// defaultLeaderboardHours stands in for opportunities with no hours recorded.
// Kept at 2 for output compatibility with the shipped leaderboard.
const defaultLeaderboardHours float64 = 2

// CompletedRow is one completed application joined with its opportunity,
// as supplied by the store.
type CompletedRow struct {
	UserID          uuid.UUID
	Name            string
	Hours           *float64
	Featured        bool
	OpportunityDate string // calendar date YYYY-MM-DD
	AppliedAt       *time.Time
}

// Leaderboard groups completed rows by user within the window, sums hours and
// impact score, and returns entries ranked descending by impact score. Ties
// keep input order; ranks are 1-based and consecutive, never shared.
func Leaderboard(rows []CompletedRow, window Window) []models.LeaderboardEntry {
	return LeaderboardAt(rows, window, time.Now())
}

func LeaderboardAt(rows []CompletedRow, window Window, now time.Time) []models.LeaderboardEntry {
	cutoff, bounded := windowStart(window, now)

	entries := make([]models.LeaderboardEntry, 0)
	index := make(map[uuid.UUID]int)

	for _, row := range rows {
		if bounded {
			eff, ok := effectiveDate(row, now.Location())
			if !ok || eff.Before(cutoff) {
				continue
			}
		}

		hours := defaultLeaderboardHours
		if row.Hours != nil {
			hours = *row.Hours
		}
		score := hours
		if row.Featured {
			score = hours * FeaturedMultiplier
		}

		if i, seen := index[row.UserID]; seen {
			entries[i].TotalHours += hours
			entries[i].ImpactScore += score
			continue
		}
		index[row.UserID] = len(entries)
		entries = append(entries, models.LeaderboardEntry{
			UserID:      row.UserID,
			Name:        row.Name,
			TotalHours:  hours,
			ImpactScore: score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ImpactScore > entries[j].ImpactScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// UserRank returns the 1-based rank of userID, or nil when absent.
func UserRank(entries []models.LeaderboardEntry, userID uuid.UUID) *int {
	for _, e := range entries {
		if e.UserID == userID {
			rank := e.Rank
			return &rank
		}
	}
	return nil
}

// effectiveDate is the applied-at timestamp when present, else the
// opportunity's calendar date at local midnight.
func effectiveDate(row CompletedRow, loc *time.Location) (time.Time, bool) {
	if row.AppliedAt != nil {
		return *row.AppliedAt, true
	}
	y, m, d, ok := parseYMD(row.OpportunityDate)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc), true
}

// windowStart reports the inclusive lower bound of the window: the most
// recent Sunday at local midnight for week, the first of the current month
// for month. all is unbounded.
func windowStart(window Window, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch window {
	case WindowWeek:
		return today.AddDate(0, 0, -int(now.Weekday())), true
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
