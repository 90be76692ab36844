package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/loyaltyhub/backend/internal/models"
)

// ErrNotFound means the item id matches neither a persisted definition nor a
// built-in catalog slot for the project.
var ErrNotFound = errors.New("catalog item not found")

// Store is the persisted-catalog lookup used by the resolver.
type Store interface {
	GetActivity(ctx context.Context, id, projectID uuid.UUID) (*models.ActivityDefinition, error)
	GetReward(ctx context.Context, id, projectID uuid.UUID) (*models.RewardDefinition, error)
}

// Resolver resolves activity and reward definitions: persisted rows first,
// then the deterministic built-in catalog for unconfigured projects. A store
// failure is propagated, never treated as a fallback trigger.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveActivity returns the definition for itemID within projectID, or
// ErrNotFound.
func (r *Resolver) ResolveActivity(ctx context.Context, itemID string, projectID uuid.UUID) (*models.ActivityDefinition, error) {
	if id, err := uuid.Parse(itemID); err == nil {
		def, err := r.store.GetActivity(ctx, id, projectID)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, ErrNotFound
		}
		return def, nil
	}
	slot := slotFromID(itemID, isActivitySlot)
	if slot == "" {
		return nil, ErrNotFound
	}
	return builtinActivity(projectID, slot), nil
}

// ResolveReward returns the definition for itemID within projectID, or
// ErrNotFound.
func (r *Resolver) ResolveReward(ctx context.Context, itemID string, projectID uuid.UUID) (*models.RewardDefinition, error) {
	if id, err := uuid.Parse(itemID); err == nil {
		def, err := r.store.GetReward(ctx, id, projectID)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, ErrNotFound
		}
		return def, nil
	}
	slot := slotFromID(itemID, isRewardSlot)
	if slot == "" {
		return nil, ErrNotFound
	}
	return builtinReward(projectID, slot), nil
}
