package api

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mira/volunteer-hub/internal/auth"
	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/models"
)

// maxProofImageBytes caps decoded proof uploads at 5 MiB.
const maxProofImageBytes = 5 << 20

type uploadProofRequest struct {
	OpportunityID    string `json:"opportunity_id"`
	FileBase64       string `json:"file_base64"`
	ContentType      string `json:"content_type"`
	Note             string `json:"note"`
	VerificationCode string `json:"verification_code"`
}

func (s *Server) handleUploadProof(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req uploadProofRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.FileBase64 == "" || req.OpportunityID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "opportunity_id and file_base64 are required"})
	}

	oppID, err := uuid.Parse(req.OpportunityID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	if _, err := s.Store.GetOpportunity(ctx, oppID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
	}

	data, err := base64.StdEncoding.DecodeString(req.FileBase64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file_base64 is not valid base64"})
	}
	if len(data) == 0 || len(data) > maxProofImageBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "image is empty or too large"})
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/png"
	}

	imageURL, err := s.Proofs.UploadProofImage(ctx, userID, data, contentType)
	if err != nil {
		c.Logger().Errorf("Failed to upload proof image: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store proof image"})
	}

	code := strings.ToUpper(strings.TrimSpace(req.VerificationCode))
	if code == "" {
		code, err = newVerificationCode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate verification code"})
		}
	}

	proof, err := s.Store.CreateProof(ctx, models.Proof{
		UserID:           userID,
		OpportunityID:    oppID,
		ImageURL:         imageURL,
		Note:             s.sanitizer.Sanitize(req.Note),
		VerificationCode: code,
	})
	if err != nil {
		c.Logger().Errorf("Failed to insert proof: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save proof"})
	}

	return c.JSON(http.StatusCreated, proof)
}

func (s *Server) handleListProofs(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	proofs, err := s.Store.ListProofsForUser(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("Failed to list proofs: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch proofs"})
	}
	return c.JSON(http.StatusOK, proofs)
}

func (s *Server) handlePendingProofs(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	organization := user.Organization
	if organization == "" {
		organization = user.Name
	}

	proofs, err := s.Store.ListPendingProofsForOrganization(c.Request().Context(), organization)
	if err != nil {
		c.Logger().Errorf("Failed to list pending proofs: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch pending proofs"})
	}
	return c.JSON(http.StatusOK, proofs)
}

// handleVerifyProof flips the proof to verified and marks the application
// Completed. Only the organization that owns the opportunity may verify.
func (s *Server) handleVerifyProof(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	proofID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid proof ID"})
	}

	owner, err := s.Store.ProofOrganization(ctx, proofID)
	if err == db.ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Proof not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify proof"})
	}

	organization := user.Organization
	if organization == "" {
		organization = user.Name
	}
	if owner != organization {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Proof belongs to another organization"})
	}

	proof, err := s.Store.VerifyProof(ctx, proofID)
	if err != nil {
		c.Logger().Errorf("Failed to verify proof: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify proof"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Proof verified and application marked as completed",
		"proof":   proof,
	})
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newVerificationCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
