package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mira/volunteer-hub/internal/ai"
	"github.com/mira/volunteer-hub/internal/auth"
	"github.com/mira/volunteer-hub/internal/config"
	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/storage"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.OllamaClient
	Assistant   *ai.Assistant
	Proofs      storage.ProofStorage

	sanitizer *bluemonday.Policy

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, cfg *config.Config, proofs storage.ProofStorage) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	aiClient := ai.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.EmbedModel, cfg.Ollama.GenModel)

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		AI:          aiClient,
		Assistant:   ai.NewAssistant(aiClient),
		Proofs:      proofs,
		sanitizer:   bluemonday.UGCPolicy(),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Public
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/stats", s.handleGetStats)

	// Auth
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Volunteer routes
	me := api.Group("")
	me.Use(auth.Middleware)
	me.POST("/opportunities/:id/apply", s.handleApply)
	me.GET("/applications", s.handleListApplications)
	me.GET("/impact", s.handleImpactScore)
	me.GET("/leaderboard", s.handleLeaderboard)
	me.POST("/proofs", s.handleUploadProof)
	me.GET("/proofs", s.handleListProofs)
	me.POST("/assistant/chat", s.handleVolunteerChat)
	me.POST("/assistant/recommendations", s.handleRecommendations)

	// Organization routes
	org := api.Group("/org")
	org.Use(auth.Middleware, auth.RequireOrganization(s.AuthService))
	org.POST("/opportunities", s.handleCreateOpportunity)
	org.GET("/proofs/pending", s.handlePendingProofs)
	org.POST("/proofs/:id/verify", s.handleVerifyProof)
	org.POST("/assistant/chat", s.handleOrgChat)
	org.POST("/assistant/thankyou", s.handleThankYouNote)

	// Admin routes
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/seed", s.handleSeed)
	admin.POST("/admin/backfill-embeddings", s.handleBackfillEmbeddings)
	admin.GET("/admin/job/:id", s.handleJobStatus)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
