package models

import "github.com/google/uuid"

// LeaderboardEntry is a per-user aggregate over completed applications.
// Not persisted; recomputed on every fetch.
type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	TotalHours  float64   `json:"total_hours"`
	ImpactScore float64   `json:"impact_score"`
	Rank        int       `json:"rank"` // 1-based position after sort
}

type LeaderboardResponse struct {
	Window   string             `json:"window"` // "week", "month" or "all"
	Entries  []LeaderboardEntry `json:"entries"`
	UserRank *int               `json:"user_rank,omitempty"`
}
