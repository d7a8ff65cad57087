package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mira/volunteer-hub/internal/ai"
	"github.com/mira/volunteer-hub/internal/auth"
	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/geo"
	"github.com/mira/volunteer-hub/internal/impact"
	"github.com/mira/volunteer-hub/internal/models"
)

func (s *Server) handleListOpportunities(c echo.Context) error {
	q := c.QueryParam("q")
	category := c.QueryParam("category")
	latStr := c.QueryParam("lat")
	lngStr := c.QueryParam("lng")
	radiusStr := c.QueryParam("radius_km")
	limitStr := c.QueryParam("limit")
	offsetStr := c.QueryParam("offset")
	featuredStr := c.QueryParam("featured")
	upcomingStr := c.QueryParam("upcoming")

	limit := 20
	offset := 0
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
		offset = o
	}

	var featured *bool
	if featuredStr != "" {
		val := featuredStr == "true"
		featured = &val
	}

	// Generate embedding for semantic search
	var queryEmbedding []float32
	if q != "" {
		aiCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		vec, err := s.AI.GenerateEmbedding(aiCtx, q)
		if err != nil {
			c.Logger().Errorf("Failed to generate query embedding: %v", err)
			// Fall back to keyword search (queryEmbedding remains nil)
		} else {
			queryEmbedding = vec
		}
	}

	params := db.ListParams{
		Query:          q,
		QueryEmbedding: queryEmbedding,
		Category:       category,
		Featured:       featured,
		UpcomingOnly:   upcomingStr == "true",
		Limit:          limit,
		Offset:         offset,
	}

	// Nearby filtering happens after the fetch; pull a wider page so the
	// radius cut still leaves enough results.
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	nearby := latErr == nil && lngErr == nil
	if nearby {
		params.Limit = 500
		params.Offset = 0
	}

	result, err := s.Store.ListOpportunities(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list opportunities: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	if nearby {
		radiusKm := 50.0
		if r, err := strconv.ParseFloat(radiusStr, 64); err == nil && r > 0 {
			radiusKm = r
		}

		filtered := []models.Opportunity{}
		for _, o := range result.Opportunities {
			d, ok := geo.WithinRadius(lat, lng, o.Latitude, o.Longitude, radiusKm)
			if !ok {
				continue
			}
			dist := d
			o.DistanceKm = &dist
			filtered = append(filtered, o)
			if len(filtered) == limit {
				break
			}
		}
		result.Opportunities = filtered
		result.Total = len(filtered)
		result.Limit = limit
		result.Offset = 0
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	opp, err := s.Store.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, opp)
}

type createOpportunityRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Hours       *float64 `json:"hours"`
	Featured    bool     `json:"featured"`
	Slots       int      `json:"slots"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (s *Server) handleCreateOpportunity(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req createOpportunityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	if _, ok := impact.ParseCalendarDate(req.Date); !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	if req.Hours != nil && *req.Hours <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "hours must be positive"})
	}

	organization := user.Organization
	if organization == "" {
		organization = user.Name
	}

	opp := models.Opportunity{
		Title:        req.Title,
		Organization: organization,
		Category:     req.Category,
		Description:  s.sanitizer.Sanitize(req.Description),
		Date:         req.Date[:10],
		Hours:        req.Hours,
		Featured:     req.Featured,
		Slots:        req.Slots,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CreatedBy:    user.ID,
	}

	// Embedding failures are non-fatal; the backfill job picks strays up.
	var embedding []float32
	aiCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if vec, err := s.AI.GenerateEmbedding(aiCtx, embeddingText(opp)); err != nil {
		c.Logger().Errorf("Failed to generate opportunity embedding: %v", err)
	} else {
		embedding = vec
	}

	created, err := s.Store.CreateOpportunity(c.Request().Context(), opp, embedding)
	if err != nil {
		c.Logger().Errorf("Failed to create opportunity: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create opportunity"})
	}

	return c.JSON(http.StatusCreated, created)
}

func embeddingText(o models.Opportunity) string {
	return o.Title + "\n" + o.Category + "\n" + o.Organization + "\n" + ai.HTMLToText(o.Description)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
