package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loyaltyhub/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetActivity looks up a persisted activity for a project. Returns
// (nil, nil) when no row exists; store failures propagate so callers can
// tell "unconfigured" apart from "unavailable".
func (r *Repository) GetActivity(ctx context.Context, id, projectID uuid.UUID) (*models.ActivityDefinition, error) {
	var a models.ActivityDefinition
	var rowID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, name, points, cadence, is_active
		FROM activities WHERE id = $1 AND project_id = $2
	`, id, projectID).Scan(&rowID, &a.ProjectID, &a.Name, &a.Points, &a.Cadence, &a.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.ID = rowID.String()
	return &a, nil
}

// GetReward looks up a persisted reward for a project. Same contract as
// GetActivity.
func (r *Repository) GetReward(ctx context.Context, id, projectID uuid.UUID) (*models.RewardDefinition, error) {
	var rw models.RewardDefinition
	var rowID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, name, points_required, stock_quantity, is_active
		FROM rewards WHERE id = $1 AND project_id = $2
	`, id, projectID).Scan(&rowID, &rw.ProjectID, &rw.Name, &rw.PointsRequired, &rw.StockQuantity, &rw.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rw.ID = rowID.String()
	return &rw, nil
}

// CountAffordableRewards counts active persisted rewards for a project whose
// cost is within the given balance. Returns hasAny=false when the project
// has no persisted rewards at all, so callers can fall back to the built-in
// catalog.
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
