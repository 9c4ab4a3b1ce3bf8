package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents a user's role within a firm
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleAttorney  UserRole = "attorney"
	RoleParalegal UserRole = "paralegal"
)

// Firm represents a law firm tenant
type Firm struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a firm-scoped user entity
type User struct {
	ID           uuid.UUID `json:"id"`
	FirmID       uuid.UUID `json:"firm_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
