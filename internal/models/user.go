package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`                   // Primary key
	Username     string     `json:"username" db:"username"`                 // Unique username
	Email        string     `json:"email" db:"email"`                       // User email
	PasswordHash string     `json:"-" db:"password_hash"`                   // Hashed password
	Role         string     `json:"role" db:"role"`                         // user / admin
	ReferredBy   *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"` // Referring user, if any; never mutated here
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
