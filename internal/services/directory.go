package services

import (
	"context"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// directory batch-resolves user references to their public projection
type directory struct {
	users repositories.UserRepository
}

func (d directory) lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := d.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, storeError("resolve users", err)
	}
	out := make(map[primitive.ObjectID]models.UserCompact, len(found))
	for i := range found {
		out[found[i].ID] = found[i].ToCompact()
	}
	return out, nil
}

// ordered resolves ids in order, skipping users that no longer exist
func (d directory) ordered(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	byID, err := d.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// author returns the resolved user or a placeholder carrying only the id
func author(byID map[primitive.ObjectID]models.UserCompact, id primitive.ObjectID) models.UserCompact {
	if u, ok := byID[id]; ok {
		return u
	}
	return models.UserCompact{ID: id}
}
