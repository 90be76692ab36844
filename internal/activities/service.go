package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/loyaltyhub/backend/internal/catalog"
	"github.com/loyaltyhub/backend/internal/ledger"
	"github.com/loyaltyhub/backend/internal/models"
)

// CatalogResolver resolves activity definitions (persisted or built-in).
type CatalogResolver interface {
	ResolveActivity(ctx context.Context, itemID string, projectID uuid.UUID) (*models.ActivityDefinition, error)
}

// CompletionStore is the write subset of the repository the service needs.
type CompletionStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Insert(ctx context.Context, tx pgx.Tx, c *models.ActivityCompletion) error
}

// CompletionResult is what a successful completion reports back.
type CompletionResult struct {
	PointsEarned      int
	ActivityName      string
	NewProjectBalance int
}

type Service interface {
	Complete(ctx context.Context, userID, projectID uuid.UUID, activityID string) (*CompletionResult, error)
}

type service struct {
	resolver    CatalogResolver
	guard       *Guard
	completions CompletionStore
	ledger      ledger.Service
	now         func() time.Time
}

// NewService wires the completion flow. now is injectable so daily-cadence
// tests can cross day boundaries.
func NewService(resolver CatalogResolver, guard *Guard, completions CompletionStore, ledgerSvc ledger.Service, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{resolver: resolver, guard: guard, completions: completions, ledger: ledgerSvc, now: now}
}

var _ Service = (*service)(nil)

// Complete credits points for a completed activity. The completion row, the
// ledger entry and both balance increments commit or roll back as one unit.
func (s *service) Complete(ctx context.Context, userID, projectID uuid.UUID, activityID string) (*CompletionResult, error) {
	def, err := s.resolver.ResolveActivity(ctx, activityID, projectID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrInvalidActivity
		}
		return nil, err
	}
	if !def.IsActive {
		return nil, ErrInvalidActivity
	}

	now := s.now().UTC()
	if err := s.guard.CheckAllowed(ctx, userID, def.ID, projectID, def.Cadence, now); err != nil {
		return nil, err
	}

	tx, err := s.completions.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.ledger.EnsureMembership(ctx, tx, userID, projectID); err != nil {
		return nil, err
	}

	completion := &models.ActivityCompletion{
		UserID:       userID,
		ActivityID:   def.ID,
		ProjectID:    projectID,
		PointsEarned: def.Points,
		DedupeKey:    DedupeKey(def.Cadence, now),
	}
	if err := s.completions.Insert(ctx, tx, completion); err != nil {
		if errors.Is(err, errDuplicateCompletion) {
			return nil, blockedErr(def.Cadence)
		}
		return nil, err
	}

	newBalance, err := s.ledger.Credit(ctx, tx, userID, projectID, def.Points, fmt.Sprintf("Completed activity: %s", def.Name))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &CompletionResult{
		PointsEarned:      def.Points,
		ActivityName:      def.Name,
		NewProjectBalance: newBalance,
	}, nil
}
