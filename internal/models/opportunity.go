package models

import (
	"time"

	"github.com/google/uuid"
)

type Opportunity struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Organization string    `json:"organization"`
	Category     string    `json:"category"`
	Description  string    `json:"description"` // Sanitized HTML
	Date         string    `json:"date"`        // Calendar date YYYY-MM-DD; no time-of-day semantics
	Hours        *float64  `json:"hours"`
	Featured     bool      `json:"featured"`
	Slots        int       `json:"slots"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	DistanceKm   *float64  `json:"distance_km,omitempty"` // Populated only for nearby queries
}
