package models

import (
	"time"

	"github.com/google/uuid"
)

// Proof is user-submitted evidence of completing an opportunity. The verified
// flag is the single source of truth for "Completed": once an organization
// flips it to true it is never unset and overrides any stored application
// status.
type Proof struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	OpportunityID    uuid.UUID `json:"opportunity_id"`
	ImageURL         string    `json:"image_url"`
	Note             string    `json:"note"`
	VerificationCode string    `json:"verification_code"`
	Verified         bool      `json:"verified"`
	CreatedAt        time.Time `json:"created_at"`
}
