package projects

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

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetMembership returns the membership row, or nil when the user has not
// joined the project.
func (r *Repository) GetMembership(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, project_id, total_points, level, is_active, joined_at, updated_at
		FROM user_projects WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&m.ID, &m.UserID, &m.ProjectID, &m.TotalPoints, &m.Level, &m.IsActive, &m.JoinedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
