package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleVolunteer    = "volunteer"
	RoleOrganization = "organization"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // "volunteer" or "organization"
	Organization string    `json:"organization,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
