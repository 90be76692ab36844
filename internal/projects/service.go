package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/loyaltyhub/backend/internal/ledger"
	"github.com/loyaltyhub/backend/internal/models"
)

// WelcomeBonusPoints is credited once, when a user first joins a project.
const WelcomeBonusPoints = 100

const welcomeBonusDescription = "Welcome bonus"

// Store is the subset of the repository the service needs.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	GetMembership(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectMembership, error)
}

// JoinResult reports whether the membership was created by this call and
// the resulting per-project balance.
type JoinResult struct {
	Created     bool
	TotalPoints int
	Level       int
}

type Service interface {
	Join(ctx context.Context, userID, projectID uuid.UUID) (*JoinResult, error)
}

type service struct {
	store  Store
	ledger ledger.Service
}

func NewService(store Store, ledgerSvc ledger.Service) Service {
	return &service{store: store, ledger: ledgerSvc}
}

var _ Service = (*service)(nil)

// Join creates the membership if absent and credits the welcome bonus
// through the ledger in the same transaction, so the bonus is backed by a
// transaction row like every other balance change. Joining twice neither
// fails nor grants a second bonus.
func (s *service) Join(ctx context.Context, userID, projectID uuid.UUID) (*JoinResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.ledger.EnsureMembership(ctx, tx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			return nil, err
		}
		m, err := s.store.GetMembership(ctx, userID, projectID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			// Row vanished between the upsert and the read; report zero.
			return &JoinResult{Created: false, TotalPoints: 0, Level: models.LevelForPoints(0)}, nil
		}
		return &JoinResult{Created: false, TotalPoints: m.TotalPoints, Level: m.Level}, nil
	}

	balance, err := s.ledger.Credit(ctx, tx, userID, projectID, WelcomeBonusPoints, welcomeBonusDescription)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &JoinResult{Created: true, TotalPoints: balance, Level: models.LevelForPoints(balance)}, nil
}
