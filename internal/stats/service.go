package stats

import (
	"context"

	"github.com/google/uuid"

	"github.com/loyaltyhub/backend/internal/catalog"
	"github.com/loyaltyhub/backend/internal/models"
)

// Stats is the dashboard aggregate for one (user, project) pair.
type Stats struct {
	TotalPoints         int `json:"totalPoints"`
	Level               int `json:"level"`
	LevelProgress       int `json:"levelProgress"`
	CompletedActivities int `json:"completedActivities"`
	AvailableRewards    int `json:"availableRewards"`
}

// Store is the read-only subset of the repository the service needs.
type Store interface {
	MembershipPoints(ctx context.Context, userID, projectID uuid.UUID) (points int, found bool, err error)
	CountCompletions(ctx context.Context, userID, projectID uuid.UUID) (int, error)
	CountAffordableRewards(ctx context.Context, projectID uuid.UUID, balance int) (count int, hasAny bool, err error)
}

type Service interface {
	GetStats(ctx context.Context, userID, projectID uuid.UUID) (*Stats, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

// GetStats aggregates balance, derived level and counts. A store failure is
// returned as an error; it is never silently mapped to a zero-value stats
// object, so "no data yet" and "data unavailable" stay distinguishable.
func (s *service) GetStats(ctx context.Context, userID, projectID uuid.UUID) (*Stats, error) {
	points, _, err := s.store.MembershipPoints(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	completed, err := s.store.CountCompletions(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	available, hasConfigured, err := s.store.CountAffordableRewards(ctx, projectID, points)
	if err != nil {
		return nil, err
	}
	if !hasConfigured {
		available = catalog.AffordableBuiltinRewards(points)
	}

	return &Stats{
		TotalPoints:         points,
		Level:               models.LevelForPoints(points),
		LevelProgress:       models.LevelProgress(points),
		CompletedActivities: completed,
		AvailableRewards:    available,
	}, nil
}
