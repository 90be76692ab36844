package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the global identity. TotalPoints mirrors the sum of all
// per-project balances and is only mutated by the ledger writer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	TotalPoints  int       `json:"total_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
