package activities

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/loyaltyhub/backend/internal/models"
)

// Business rejections surfaced by the guard and the completion service.
var (
	ErrInvalidActivity       = errors.New("invalid activity")
	ErrAlreadyCompleted      = errors.New("activity already completed")
	ErrAlreadyCheckedInToday = errors.New("already checked in today")
)

// GuardStore is the completion-lookup subset of the repository the guard
// needs.
type GuardStore interface {
	HasCompleted(ctx context.Context, userID uuid.UUID, activityID string, projectID uuid.UUID) (bool, error)
	HasCompletedOn(ctx context.Context, userID uuid.UUID, activityID string, projectID uuid.UUID, day string) (bool, error)
}

// Guard decides whether a completion is allowed: one-shot activities may be
// completed once ever, daily activities once per UTC calendar day. This is
// an advisory read for a friendly rejection; the unique index behind
// Repository.Insert is the final arbiter under concurrency.
type Guard struct {
	store GuardStore
}

func NewGuard(store GuardStore) *Guard {
	return &Guard{store: store}
}

// DedupeKey is the uniqueness key stored with a completion: a constant for
// one-shot cadence, the server-side UTC date for daily cadence. Client
// clocks and timezones never participate.
func DedupeKey(cadence string, now time.Time) string {
	if cadence == models.CadenceDaily {
		return now.UTC().Format("2006-01-02")
	}
	return models.DedupeKeyOneShot
}

// CheckAllowed returns nil when the completion may proceed,
// ErrAlreadyCompleted / ErrAlreadyCheckedInToday when blocked, or a store
// error.
func (g *Guard) CheckAllowed(ctx context.Context, userID uuid.UUID, activityID string, projectID uuid.UUID, cadence string, now time.Time) error {
	if cadence == models.CadenceDaily {
		done, err := g.store.HasCompletedOn(ctx, userID, activityID, projectID, DedupeKey(cadence, now))
		if err != nil {
			return err
		}
		if done {
			return ErrAlreadyCheckedInToday
		}
		return nil
	}
	done, err := g.store.HasCompleted(ctx, userID, activityID, projectID)
	if err != nil {
		return err
	}
	if done {
		return ErrAlreadyCompleted
	}
	return nil
}

// blockedErr maps a constraint rejection to the cadence-appropriate
// business error.
func blockedErr(cadence string) error {
	if cadence == models.CadenceDaily {
		return ErrAlreadyCheckedInToday
	}
	return ErrAlreadyCompleted
}
