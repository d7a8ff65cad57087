package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleSeed(c echo.Context) error {
	ctx := c.Request().Context()

	seeds := []struct {
		Title       string
		Org         string
		Category    string
		Description string
		Date        string
		Hours       float64
		Featured    bool
		Slots       int
		Latitude    float64
		Longitude   float64
	}{
		{
			Title:       "Riverside Park Cleanup",
			Org:         "Green City Collective",
			Category:    "Environment",
			Description: "Join us for a morning of litter picking and invasive plant removal along the riverside trail. Gloves and bags provided.",
			Date:        "2026-09-12",
			Hours:       3,
			Featured:    true,
			Slots:       40,
			Latitude:    40.7812,
			Longitude:   -73.9665,
		},
		{
			Title:       "Food Bank Sorting Shift",
			Org:         "Harvest Hope Food Bank",
			Category:    "Hunger Relief",
			Description: "Sort and box donated groceries for weekend distribution to 300 families. No experience needed.",
			Date:        "2026-09-05",
			Hours:       4,
			Slots:       25,
			Latitude:    40.7306,
			Longitude:   -73.9866,
		},
		{
			Title:       "Senior Center Tech Help Desk",
			Org:         "Silver Connections",
			Category:    "Seniors",
			Description: "Help seniors with smartphones, email, and video calls in one-on-one sessions.",
			Date:        "2026-09-19",
			Hours:       2,
			Slots:       10,
			Latitude:    40.7411,
			Longitude:   -74.0018,
		},
		{
			Title:       "After-School Reading Buddies",
			Org:         "Bright Futures Tutoring",
			Category:    "Education",
			Description: "Read with elementary students one afternoon a week. Training session included before your first visit.",
			Date:        "2026-09-08",
			Hours:       1.5,
			Featured:    true,
			Slots:       15,
			Latitude:    40.6782,
			Longitude:   -73.9442,
		},
		{
			Title:       "Animal Shelter Dog Walking",
			Org:         "Paws & Whiskers Rescue",
			Category:    "Animals",
			Description: "Walk and socialize shelter dogs awaiting adoption. Must be comfortable with large breeds.",
			Date:        "2026-09-26",
			Hours:       2,
			Slots:       12,
			Latitude:    40.7033,
			Longitude:   -73.9881,
		},
		{
			Title:       "Community Garden Build Day",
			Org:         "Green City Collective",
			Category:    "Environment",
			Description: "Build raised beds and spread compost for the new neighborhood garden. Tools provided, bring work gloves.",
			Date:        "2026-10-03",
			Hours:       5,
			Featured:    true,
			Slots:       30,
			Latitude:    40.8116,
			Longitude:   -73.9465,
		},
		{
			Title:       "Hospital Welcome Desk Volunteer",
			Org:         "St. Mary's Community Hospital",
			Category:    "Health",
			Description: "Greet visitors, give directions, and escort patients to appointments during morning hours.",
			Date:        "2026-09-15",
			Hours:       4,
			Slots:       8,
			Latitude:    40.7505,
			Longitude:   -73.9934,
		},
		{
			Title:       "Coastal Cleanup Weekend",
			Org:         "Blue Horizon Alliance",
			Category:    "Environment",
			Description: "Remove plastic debris from the shoreline and log findings for the annual marine debris survey.",
			Date:        "2026-10-10",
			Hours:       6,
			Slots:       60,
			Latitude:    40.5749,
			Longitude:   -73.9857,
		},
	}

	count := 0
	for _, seed := range seeds {
		query := `
			INSERT INTO opportunities (
				title, organization, category, description_html, date, hours,
				featured, slots, latitude, longitude
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (title, organization, date) DO UPDATE SET
				updated_at = NOW(),
				category = EXCLUDED.category,
				description_html = EXCLUDED.description_html,
				hours = EXCLUDED.hours,
				featured = EXCLUDED.featured,
				slots = EXCLUDED.slots
		`
		_, err := s.DB.Exec(ctx, query,
			seed.Title, seed.Org, seed.Category, seed.Description, seed.Date, seed.Hours,
			seed.Featured, seed.Slots, seed.Latitude, seed.Longitude,
		)
		if err != nil {
			c.Logger().Errorf("Failed to seed: %v", err)
			continue
		}
		count++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Seed complete",
		"count":   count,
	})
}

func (s *Server) handleBackfillEmbeddings(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "A backfill job is already running",
			"job_id": job.ID,
		})
	}

	batchSize := 200
	if raw := strings.TrimSpace(c.QueryParam("batch_size")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 2000 {
			batchSize = parsed
		}
	}

	// context.WithoutCancel detaches from HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine and return 202 immediately.
	go func() {
		defer jobCancel()

		processed := 0
		failed := 0
		for {
			opps, err := s.Store.OpportunitiesMissingEmbedding(jobCtx, batchSize)
			if err != nil {
				s.jobMu.Lock()
				job.Status = "failed"
				job.Error = err.Error()
				job.EndedAt = time.Now()
				s.jobMu.Unlock()
				log.Printf("[backfill-job %s] failed: %v", jobID, err)
				return
			}
			if len(opps) == 0 {
				break
			}

			progressed := false
			for _, o := range opps {
				vec, err := s.AI.GenerateEmbedding(jobCtx, embeddingText(o))
				if err != nil {
					failed++
					continue
				}
				if err := s.Store.UpdateEmbedding(jobCtx, o.ID, vec); err != nil {
					failed++
					continue
				}
				processed++
				progressed = true
			}
			// Every row in the batch failed; looping again would spin on
			// the same rows forever.
			if !progressed {
				break
			}
		}

		s.jobMu.Lock()
		job.Status = "completed"
		job.EndedAt = time.Now()
		job.Result = map[string]interface{}{
			"embedded":        processed,
			"failed":          failed,
			"batch_size_used": batchSize,
		}
		s.jobMu.Unlock()
		log.Printf("[backfill-job %s] completed: embedded=%d failed=%d", jobID, processed, failed)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Backfill job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}
