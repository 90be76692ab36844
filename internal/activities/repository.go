package activities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loyaltyhub/backend/internal/models"
)

// errDuplicateCompletion is returned when the completion dedupe index
// rejects an insert. The unique index, not the advisory pre-read, is what
// makes two concurrent requests for the same key impossible to both commit.
var errDuplicateCompletion = errors.New("duplicate completion")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Insert records a completion inside the caller's transaction. A unique
// violation on (user_id, activity_id, project_id, dedupe_key) maps to
// errDuplicateCompletion.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, c *models.ActivityCompletion) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO user_activities (user_id, activity_id, project_id, points_earned, dedupe_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, completed_at
	`, c.UserID, c.ActivityID, c.ProjectID, c.PointsEarned, c.DedupeKey).Scan(&c.ID, &c.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errDuplicateCompletion
		}
		return err
	}
	return nil
}

// HasCompleted reports whether any completion exists for the key.
func (r *Repository) HasCompleted(ctx context.Context, userID uuid.UUID, activityID string, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_activities
			WHERE user_id = $1 AND activity_id = $2 AND project_id = $3
		)
	`, userID, activityID, projectID).Scan(&exists)
	return exists, err
}

// HasCompletedOn reports whether a completion exists for the key on the
// given dedupe day (UTC date string).
func (r *Repository) HasCompletedOn(ctx context.Context, userID uuid.UUID, activityID string, projectID uuid.UUID, day string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_activities
			WHERE user_id = $1 AND activity_id = $2 AND project_id = $3 AND dedupe_key = $4
		)
	`, userID, activityID, projectID, day).Scan(&exists)
	return exists, err
}
