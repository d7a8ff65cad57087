package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mira/volunteer-hub/internal/ai"
	"github.com/mira/volunteer-hub/internal/auth"
	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/impact"
)

// assistantTimeout bounds every Ollama completion round-trip.
const assistantTimeout = 60 * time.Second

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleVolunteerChat(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), assistantTimeout)
	defer cancel()

	user, err := s.AuthService.GetUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unknown user"})
	}

	apps, err := s.Store.ListUserApplications(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to load applications for chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your data"})
	}
	for i := range apps {
		apps[i].DerivedStatus = string(impact.DeriveStatus(apps[i].Status, apps[i].Date, apps[i].Proofs))
	}

	answer, err := s.Assistant.AnswerVolunteer(ctx, user.Name, req.Message, apps)
	if err != nil {
		c.Logger().Errorf("Assistant completion failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Assistant is unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleOrgChat(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	organization := user.Organization
	if organization == "" {
		organization = user.Name
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), assistantTimeout)
	defer cancel()

	opps, err := s.Store.ListOpportunities(ctx, db.ListParams{Organization: organization, Limit: 100})
	if err != nil {
		c.Logger().Errorf("Failed to load opportunities for chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your data"})
	}

	rows, err := s.Store.ListApplicantsForOrganization(ctx, organization)
	if err != nil {
		c.Logger().Errorf("Failed to load applicants for chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your data"})
	}
	applicants := make([]ai.OrgApplicant, 0, len(rows))
	for _, r := range rows {
		applicants = append(applicants, ai.OrgApplicant{
			Opportunity: r.Opportunity,
			Applicant:   r.Applicant,
			Status:      r.Status,
		})
	}

	answer, err := s.Assistant.AnswerOrganization(ctx, organization, req.Message, opps.Opportunities, applicants)
	if err != nil {
		c.Logger().Errorf("Assistant completion failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Assistant is unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// handleRecommendations suggests opportunities based on the categories the
// volunteer applies to most and the hours behind their verified proofs.
func (s *Server) handleRecommendations(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), assistantTimeout)
	defer cancel()

	apps, err := s.Store.ListUserApplications(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to load applications for recommendations: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your data"})
	}

	counts := map[string]int{}
	for _, app := range apps {
		if app.Category != "" {
			counts[app.Category]++
		}
	}
	categories := make([]string, 0, len(counts))
	for cat := range counts {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > 3 {
		categories = categories[:3]
	}
	if len(categories) == 0 {
		categories = []string{"community service"}
	}

	contributions, err := s.Store.VerifiedContributions(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to load contributions for recommendations: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your data"})
	}
	var pastHours float64
	for _, item := range contributions {
		if item.Hours != nil {
			pastHours += *item.Hours
		}
	}

	// An unreachable model degrades to an empty list, same as a malformed
	// reply; the client renders its static picks instead.
	suggestions, err := ai.SuggestOpportunities(ctx, s.AI, categories, pastHours)
	if err != nil {
		c.Logger().Errorf("Suggestion completion failed: %v", err)
		suggestions = []ai.Suggestion{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories":  categories,
		"past_hours":  pastHours,
		"suggestions": suggestions,
	})
}

type thankYouRequest struct {
	UserName    string  `json:"user_name"`
	Opportunity string  `json:"opportunity"`
	Hours       float64 `json:"hours"`
}

func (s *Server) handleThankYouNote(c echo.Context) error {
	var req thankYouRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.UserName == "" || req.Opportunity == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_name and opportunity are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), assistantTimeout)
	defer cancel()

	note, err := ai.ThankYouNote(ctx, s.AI, req.UserName, req.Opportunity, req.Hours)
	if err != nil {
		c.Logger().Errorf("Thank-you completion failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Assistant is unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"note": note})
}
