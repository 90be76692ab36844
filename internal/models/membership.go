package models

import (
	"time"

	"github.com/google/uuid"
)

// PointsPerLevel is the number of points per derived membership level.
const PointsPerLevel = 100

// ProjectMembership is the user × project row. TotalPoints is a
// denormalized cache of the transaction ledger for that pair and is only
// mutated by the ledger writer, inside the same transaction that appends
// the ledger entry.
type ProjectMembership struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	TotalPoints int       `json:"total_points"`
	Level       int       `json:"level"`
	IsActive    bool      `json:"is_active"`
	JoinedAt    time.Time `json:"joined_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LevelForPoints derives the membership level from a points balance.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// LevelProgress is the points earned within the current level.
func LevelProgress(points int) int {
	if points < 0 {
		points = 0
	}
	return points % PointsPerLevel
}
