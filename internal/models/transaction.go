package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction type enums.
const (
	TransactionEarned = "earned"
	TransactionSpent  = "spent"
)

// PointTransaction is an append-only ledger entry. The ledger is the source
// of truth: for every (user, project) pair the denormalized balances equal
// Σ(earned) − Σ(spent) over these rows. Rows are never edited; corrections
// are new offsetting entries.
type PointTransaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Type        string    `json:"transaction_type"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
