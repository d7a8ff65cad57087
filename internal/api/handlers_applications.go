package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mira/volunteer-hub/internal/auth"
	"github.com/mira/volunteer-hub/internal/impact"
	"github.com/mira/volunteer-hub/internal/models"
)

func (s *Server) handleApply(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	if _, err := s.Store.GetOpportunity(ctx, oppID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
	}

	inserted, err := s.Store.Apply(ctx, userID, oppID)
	if err != nil {
		c.Logger().Errorf("Failed to apply: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to apply"})
	}
	if !inserted {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Already applied"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"status": "applied"})
}

// handleListApplications returns the caller's applications with the derived
// status computed fresh on every read.
func (s *Server) handleListApplications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	apps, err := s.Store.ListUserApplications(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to list applications: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch applications"})
	}

	counts := map[impact.Status]int{}
	for i := range apps {
		status := impact.DeriveStatus(apps[i].Status, apps[i].Date, apps[i].Proofs)
		apps[i].DerivedStatus = string(status)
		for _, p := range apps[i].Proofs {
			if p.Verified {
				apps[i].HasVerifiedProof = true
				break
			}
		}
		counts[status]++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"applications": apps,
		"counts": map[string]int{
			"total":     len(apps),
			"upcoming":  counts[impact.StatusUpcoming],
			"pending":   counts[impact.StatusPending],
			"completed": counts[impact.StatusCompleted],
		},
	})
}

// handleImpactScore computes the caller's score, tier and next-tier progress
// from their verified proofs.
func (s *Server) handleImpactScore(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	items, err := s.Store.VerifiedContributions(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to fetch contributions: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute impact score"})
	}

	return c.JSON(http.StatusOK, impact.Score(items))
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	window := impact.ParseWindow(c.QueryParam("window"))

	rows, err := s.Store.CompletedRows(ctx)
	if err != nil {
		c.Logger().Errorf("Failed to fetch leaderboard rows: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute leaderboard"})
	}

	entries := impact.Leaderboard(rows, window)
	return c.JSON(http.StatusOK, models.LeaderboardResponse{
		Window:   string(window),
		Entries:  entries,
		UserRank: impact.UserRank(entries, userID),
	})
}
