package models

import (
	"time"

	"github.com/google/uuid"
)

// Redemption status enums.
const (
	RedemptionStatusPending   = "pending"
	RedemptionStatusCompleted = "completed"
)

// RewardDefinition is a catalog entry a member can spend points on.
// StockQuantity is nil for untracked stock (built-in rewards); a non-nil
// value never goes below zero.
type RewardDefinition struct {
	ID             string    `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	Name           string    `json:"name"`
	PointsRequired int       `json:"points_required"`
	StockQuantity  *int      `json:"stock_quantity,omitempty"`
	IsActive       bool      `json:"is_active"`
	Virtual        bool      `json:"-"`
}

// Redemption records a committed reward redemption. A row exists only if the
// balance debit and the stock decrement both held at commit time.
type Redemption struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	RewardID    string    `json:"reward_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	PointsSpent int       `json:"points_spent"`
	Status      string    `json:"status"`
	RequestID   *string   `json:"request_id,omitempty"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}
