package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/loyaltyhub/backend/internal/models"
)

// Service is the single write path for point balances. Activity completion,
// reward redemption and project joins all append ledger entries and adjust
// the denormalized balances through it, inside one caller-owned transaction.
type Service interface {
	EnsureMembership(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID) (created bool, err error)
	Credit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (newBalance int, err error)
	Debit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (newBalance int, err error)
	History(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]*models.PointTransaction, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) EnsureMembership(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID) (bool, error) {
	return s.repo.EnsureMembership(ctx, tx, userID, projectID)
}

func (s *service) Credit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	return s.repo.Credit(ctx, tx, userID, projectID, points, description)
}

func (s *service) Debit(ctx context.Context, tx pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	return s.repo.Debit(ctx, tx, userID, projectID, points, description)
}

func (s *service) History(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]*models.PointTransaction, error) {
	if projectID != nil {
		return s.repo.ListByUserProject(ctx, userID, *projectID)
	}
	return s.repo.ListByUser(ctx, userID)
}

// ErrInsufficientPoints is returned by Debit when the per-project balance is
// lower than the requested amount at commit time.
var ErrInsufficientPoints = errInsufficientPoints
