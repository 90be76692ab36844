package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity cadence enums.
const (
	CadenceOneShot = "one_shot"
	CadenceDaily   = "daily"
)

// DedupeKeyOneShot is the dedupe_key stored for one-shot completions, so the
// unique index over (user, activity, project, dedupe_key) allows exactly one
// row ever. Daily completions store the UTC date instead.
const DedupeKeyOneShot = "once"

// ActivityDefinition is a catalog entry a member can complete for points.
// ID is either a persisted row id or a deterministic virtual id produced by
// the catalog resolver for unconfigured projects.
type ActivityDefinition struct {
	ID        string    `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Cadence   string    `json:"cadence"`
	IsActive  bool      `json:"is_active"`
	Virtual   bool      `json:"-"`
}

// ActivityCompletion records that a user completed an activity in a project.
type ActivityCompletion struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	ActivityID   string    `json:"activity_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	PointsEarned int       `json:"points_earned"`
	DedupeKey    string    `json:"-"`
	CompletedAt  time.Time `json:"completed_at"`
}
