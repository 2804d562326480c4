package services

import (
	"context"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GraphService owns follow state transitions. Edge sets are changed with conditional
// single-document updates so concurrent follows never lose an edge.
type GraphService struct {
	users    repositories.UserRepository
	dir      directory
	notifier *Notifier
}

func NewGraphService(users repositories.UserRepository, notifier *Notifier) *GraphService {
	return &GraphService{users: users, dir: directory{users: users}, notifier: notifier}
}

func (s *GraphService) target(ctx context.Context, actorID, targetID primitive.ObjectID) (*models.User, error) {
	if actorID == targetID {
		return nil, apperr.ErrSelfReference
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	return target, nil
}

// Follow makes actor follow target. Mutual follows become connections on both sides.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if _, err := s.target(ctx, actorID, targetID); err != nil {
		return err
	}

	added, err := s.users.AddEdge(ctx, actorID, repositories.EdgeFollowing, targetID)
	if err != nil {
		return storeError("add following", err)
	}
	if !added {
		return apperr.ErrAlreadyFollowing
	}
	if _, err := s.users.AddEdge(ctx, targetID, repositories.EdgeFollowers, actorID); err != nil {
		// undo the half-written follow so a retry can succeed
		if _, rerr := s.users.RemoveEdge(ctx, actorID, repositories.EdgeFollowing, targetID); rerr != nil {
			logging.Ctx(ctx).Error().Err(rerr).Str("actor", actorID.Hex()).Str("target", targetID.Hex()).Msg("rollback following edge")
		}
		return storeError("add follower", err)
	}

	// read after our own writes so a concurrent reverse follow is observed by at least one side
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return storeError("reload target", err)
	}
	if models.HasEdge(target.Following, actorID) {
		if _, err := s.users.AddEdge(ctx, actorID, repositories.EdgeConnections, targetID); err != nil {
			return storeError("add connection", err)
		}
		if _, err := s.users.AddEdge(ctx, targetID, repositories.EdgeConnections, actorID); err != nil {
			return storeError("add connection", err)
		}
	}

	s.notifier.Notify(ctx, targetID, actorID, models.NotificationFollow, nil, msgFollowed)
	return nil
}

// Unfollow removes the follow edge and any connection between the two users
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if _, err := s.target(ctx, actorID, targetID); err != nil {
		return err
	}

	removed, err := s.users.RemoveEdge(ctx, actorID, repositories.EdgeFollowing, targetID)
	if err != nil {
		return storeError("remove following", err)
	}
	if !removed {
		return apperr.ErrNotFollowing
	}

	steps := []struct {
		user  primitive.ObjectID
		edge  repositories.Edge
		other primitive.ObjectID
	}{
		{targetID, repositories.EdgeFollowers, actorID},
		{actorID, repositories.EdgeConnections, targetID},
		{targetID, repositories.EdgeConnections, actorID},
	}
	for _, st := range steps {
		if _, err := s.users.RemoveEdge(ctx, st.user, st.edge, st.other); err != nil {
			return storeError("remove "+string(st.edge), err)
		}
	}

	s.notifier.Retract(ctx, targetID, actorID, models.NotificationFollow, nil)
	return nil
}

// CheckStatus reports how target relates to actor
func (s *GraphService) CheckStatus(ctx context.Context, actorID, targetID primitive.ObjectID) (models.FollowStatus, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return models.FollowStatus{}, mapNotFound(err, apperr.ErrUserNotFound)
	}
	return models.FollowStatus{
		IsFollowing:  models.HasEdge(actor.Following, targetID),
		IsFollower:   models.HasEdge(actor.Followers, targetID),
		IsConnection: models.HasEdge(actor.Connections, targetID),
	}, nil
}

// EdgeList is one page of an edge set with the full set size
type EdgeList struct {
	Users []models.UserCompact
	Total int
}

func (s *GraphService) listEdge(ctx context.Context, userID primitive.ObjectID, p Pagination, pick func(*models.User) []primitive.ObjectID) (EdgeList, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return EdgeList{}, mapNotFound(err, apperr.ErrUserNotFound)
	}
	set := pick(user)
	page := sliceWindow(set, p.normalize(DefaultFollowLimit))
	users, err := s.dir.ordered(ctx, page)
	if err != nil {
		return EdgeList{}, err
	}
	return EdgeList{Users: users, Total: len(set)}, nil
}

func (s *GraphService) ListFollowers(ctx context.Context, userID primitive.ObjectID, p Pagination) (EdgeList, error) {
	return s.listEdge(ctx, userID, p, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

func (s *GraphService) ListFollowing(ctx context.Context, userID primitive.ObjectID, p Pagination) (EdgeList, error) {
	return s.listEdge(ctx, userID, p, func(u *models.User) []primitive.ObjectID { return u.Following })
}

func (s *GraphService) ListConnections(ctx context.Context, userID primitive.ObjectID, p Pagination) (EdgeList, error) {
	return s.listEdge(ctx, userID, p, func(u *models.User) []primitive.ObjectID { return u.Connections })
}
