package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a user's relationship to one opportunity. The stored status
// is advisory; the engine derives the authoritative status from proofs and
// the opportunity's calendar date on every read.
type Application struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	OpportunityID uuid.UUID  `json:"opportunity_id"`
	Status        string     `json:"status"` // Raw stored value; legacy rows carry inconsistent casing
	AppliedAt     *time.Time `json:"applied_at"`
}

// DerivedApplication is an Application joined with its Opportunity and proofs,
// annotated with the computed status. Not persisted.
type DerivedApplication struct {
	Application
	Title            string  `json:"title"`
	Organization     string  `json:"organization"`
	Category         string  `json:"category"`
	Date             string  `json:"date"`
	Hours            *float64 `json:"hours"`
	Featured         bool    `json:"featured"`
	Proofs           []Proof `json:"proofs"`
	HasVerifiedProof bool    `json:"has_verified_proof"`
	DerivedStatus    string  `json:"derived_status"`
}
