package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/loyaltyhub/backend/internal/catalog"
	"github.com/loyaltyhub/backend/internal/fulfillment"
	"github.com/loyaltyhub/backend/internal/ledger"
	"github.com/loyaltyhub/backend/internal/models"
)

// Business rejections surfaced by the redemption service.
var (
	ErrInvalidReward      = errors.New("invalid reward")
	ErrOutOfStock         = errors.New("reward out of stock")
	ErrInsufficientPoints = ledger.ErrInsufficientPoints
	ErrDuplicateRequest   = errDuplicateRequest
)

// CatalogResolver resolves reward definitions (persisted or built-in).
type CatalogResolver interface {
	ResolveReward(ctx context.Context, itemID string, projectID uuid.UUID) (*models.RewardDefinition, error)
}

// RedemptionStore is the write subset of the repository the service needs.
type RedemptionStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, rewardID, projectID uuid.UUID) (bool, error)
	InsertRedemption(ctx context.Context, tx pgx.Tx, red *models.Redemption) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// InsertFulfillmentTxFunc enqueues a fulfillment job within the given
// transaction. Provided by main as a closure over river.Client.InsertTx.
type InsertFulfillmentTxFunc func(ctx context.Context, tx pgx.Tx, args fulfillment.FulfillRedemptionArgs) error

// RedemptionResult is what a successful redemption reports back.
type RedemptionResult struct {
	PointsSpent int
	RewardName  string
	NewBalance  int
}

type Service interface {
	Redeem(ctx context.Context, userID, projectID uuid.UUID, rewardID string, requestID *string) (*RedemptionResult, error)
}

type service struct {
	resolver          CatalogResolver
	store             RedemptionStore
	ledger            ledger.Service
	insertFulfillment InsertFulfillmentTxFunc
}

// NewService wires the redemption flow. Returns *service so it can double as
// fulfillment.RedemptionService for the River worker.
func NewService(resolver CatalogResolver, store RedemptionStore, ledgerSvc ledger.Service, insertFulfillment InsertFulfillmentTxFunc) *service {
	return &service{resolver: resolver, store: store, ledger: ledgerSvc, insertFulfillment: insertFulfillment}
}

var _ Service = (*service)(nil)
var _ fulfillment.RedemptionService = (*service)(nil)

// Redeem debits points for a reward. The balance debit, the stock decrement,
// the redemption row, the ledger entry and the fulfillment enqueue commit or
// roll back as one unit; both the balance and the stock conditions are
// re-validated by conditional updates at commit time, never by prior reads.
func (s *service) Redeem(ctx context.Context, userID, projectID uuid.UUID, rewardID string, requestID *string) (*RedemptionResult, error) {
	def, err := s.resolver.ResolveReward(ctx, rewardID, projectID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrInvalidReward
		}
		return nil, err
	}
	if !def.IsActive {
		return nil, ErrInvalidReward
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.ledger.EnsureMembership(ctx, tx, userID, projectID); err != nil {
		return nil, err
	}

	newBalance, err := s.ledger.Debit(ctx, tx, userID, projectID, def.PointsRequired, fmt.Sprintf("Redeemed reward: %s", def.Name))
	if err != nil {
		return nil, err
	}

	// Built-in rewards carry no stock row; persisted rewards must win the
	// compare-and-swap decrement or the whole unit rolls back.
	if !def.Virtual {
		id, err := uuid.Parse(def.ID)
		if err != nil {
			return nil, fmt.Errorf("persisted reward id %q: %w", def.ID, err)
		}
		ok, err := s.store.DecrementStock(ctx, tx, id, projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrOutOfStock
		}
	}

	red := &models.Redemption{
		UserID:      userID,
		RewardID:    def.ID,
		ProjectID:   projectID,
		PointsSpent: def.PointsRequired,
		Status:      models.RedemptionStatusPending,
		RequestID:   requestID,
	}
	if err := s.store.InsertRedemption(ctx, tx, red); err != nil {
		return nil, err
	}

	if s.insertFulfillment != nil {
		if err := s.insertFulfillment(ctx, tx, fulfillment.FulfillRedemptionArgs{RedemptionID: red.ID}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &RedemptionResult{
		PointsSpent: def.PointsRequired,
		RewardName:  def.Name,
		NewBalance:  newBalance,
	}, nil
}

// MarkRedemptionCompleted implements fulfillment.RedemptionService.
func (s *service) MarkRedemptionCompleted(ctx context.Context, redemptionID uuid.UUID) error {
	return s.store.MarkCompleted(ctx, redemptionID)
}
