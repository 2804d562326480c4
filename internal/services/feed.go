package services

import (
	"context"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetFeed returns posts by the user and everyone they follow, newest first
func (s *PostService) GetFeed(ctx context.Context, userID primitive.ObjectID, p Pagination) ([]models.PostView, models.Page, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, models.Page{}, mapNotFound(err, apperr.ErrUserNotFound)
	}
	authors := append([]primitive.ObjectID{userID}, user.Following...)
	return s.list(ctx, repositories.PostQuery{Authors: authors}, p)
}
