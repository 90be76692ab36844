package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loyaltyhub/backend/internal/models"
)

var errInsufficientPoints = errors.New("insufficient points")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// EnsureMembership lazily creates the user_projects row for (user, project).
// Returns true when the row was created by this call.
func (r *Repository) EnsureMembership(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO user_projects (user_id, project_id, total_points, is_active)
		VALUES ($1, $2, 0, TRUE)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, userID, projectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Credit runs inside the caller's transaction. It:
// a) Appends an 'earned' row to point_transactions
// b) Increments user_projects.total_points for (user, project)
// c) Increments the mirrored users.total_points
// Returns the new per-project balance.
func (r *Repository) Credit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO point_transactions (user_id, project_id, transaction_type, points, description)
		VALUES ($1, $2, 'earned', $3, $4)
	`, userID, projectID, points, description)
	if err != nil {
		return 0, err
	}
	var newBalance int
	err = tx.QueryRow(ctx, `
		UPDATE user_projects
		SET total_points = total_points + $1, level = (total_points + $1) / $4 + 1, updated_at = now()
		WHERE user_id = $2 AND project_id = $3
		RETURNING total_points
	`, points, userID, projectID, models.PointsPerLevel).Scan(&newBalance)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET total_points = total_points + $1, updated_at = now() WHERE id = $2
	`, points, userID)
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit is the spending counterpart of Credit. The per-project decrement is
// conditional on total_points >= points; zero rows means the balance check
// failed at commit time and errInsufficientPoints is returned.
func (r *Repository) Debit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	var newBalance int
	err := tx.QueryRow(ctx, `
		UPDATE user_projects
		SET total_points = total_points - $1, level = (total_points - $1) / $4 + 1, updated_at = now()
		WHERE user_id = $2 AND project_id = $3 AND total_points >= $1
		RETURNING total_points
	`, points, userID, projectID, models.PointsPerLevel).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errInsufficientPoints
	}
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET total_points = total_points - $1, updated_at = now() WHERE id = $2
	`, points, userID)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO point_transactions (user_id, project_id, transaction_type, points, description)
		VALUES ($1, $2, 'spent', $3, $4)
	`, userID, projectID, points, description)
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ListByUserProject returns the ledger for a (user, project) pair, newest
// first.
func (r *Repository) ListByUserProject(ctx context.Context, userID, projectID uuid.UUID) ([]*models.PointTransaction, error) {
	return r.list(ctx, `
		SELECT id, user_id, project_id, transaction_type, points, description, created_at
		FROM point_transactions WHERE user_id = $1 AND project_id = $2
		ORDER BY created_at DESC
	`, userID, projectID)
}

// ListByUser returns the ledger across all projects for a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PointTransaction, error) {
	return r.list(ctx, `
		SELECT id, user_id, project_id, transaction_type, points, description, created_at
		FROM point_transactions WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *Repository) list(ctx context.Context, sql string, args ...any) ([]*models.PointTransaction, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PointTransaction
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.ProjectID, &t.Type, &t.Points, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
