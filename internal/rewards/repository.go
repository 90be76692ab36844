package rewards

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loyaltyhub/backend/internal/models"
)

var errDuplicateRequest = errors.New("duplicate redemption request")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// DecrementStock atomically takes one unit of stock if any remains. The
// conditional update is the authoritative stock check: zero rows affected
// means out of stock at commit time, and stock_quantity can never go
// negative.
func (r *Repository) DecrementStock(ctx context.Context, tx pgx.Tx, rewardID, projectID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE rewards SET stock_quantity = stock_quantity - 1, updated_at = now()
		WHERE id = $1 AND project_id = $2 AND stock_quantity >= 1
	`, rewardID, projectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// InsertRedemption records a redemption inside the caller's transaction.
// A unique violation on (user_id, request_id) means a retried request that
// already committed, mapped to errDuplicateRequest.
func (r *Repository) InsertRedemption(ctx context.Context, tx pgx.Tx, red *models.Redemption) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO user_redemptions (user_id, reward_id, project_id, points_spent, status, request_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, redeemed_at
	`, red.UserID, red.RewardID, red.ProjectID, red.PointsSpent, red.Status, red.RequestID).Scan(&red.ID, &red.RedeemedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errDuplicateRequest
		}
		return err
	}
	return nil
}

// MarkCompleted transitions a redemption from pending to completed. Used by
// the fulfillment worker after the money path has committed.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_redemptions SET status = 'completed' WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("redemption not pending")
	}
	return nil
}
