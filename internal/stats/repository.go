package stats

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is strictly read-only: dashboards query it, nothing here ever
// writes.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MembershipPoints returns the per-project balance. found=false means the
// user has no membership row yet, which is a legitimate zero-stats case as
// opposed to a store failure.
func (r *Repository) MembershipPoints(ctx context.Context, userID, projectID uuid.UUID) (points int, found bool, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT total_points FROM user_projects WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return points, true, nil
}

// CountCompletions counts completed activities for (user, project).
func (r *Repository) CountCompletions(ctx context.Context, userID, projectID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_activities WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&n)
	return n, err
}

// CountAffordableRewards counts active persisted rewards within the balance.
// hasAny=false means the project has configured no rewards at all and the
// built-in catalog applies instead.
func (r *Repository) CountAffordableRewards(ctx context.Context, projectID uuid.UUID, balance int) (count int, hasAny bool, err error) {
	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_active AND points_required <= $2), COUNT(*)
		FROM rewards WHERE project_id = $1
	`, projectID, balance).Scan(&count, &total)
	if err != nil {
		return 0, false, err
	}
	return count, total > 0, nil
}
