// Package repotest provides in-memory repository implementations for tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users is an in-memory repositories.UserRepository
type Users struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	byID  map[primitive.ObjectID]*models.User
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]*models.User{}}
}

var _ repositories.UserRepository = (*Users)(nil)

func clone(u *models.User) *models.User {
	c := *u
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	c.Following = append([]primitive.ObjectID{}, u.Following...)
	c.Connections = append([]primitive.ObjectID{}, u.Connections...)
	return &c
}

// Add stores a user directly and returns its id
func (r *Users) Add(u models.User) primitive.ObjectID {
	if err := r.CreateUser(context.Background(), &u); err != nil {
		panic(err)
	}
	return u.ID
}

func (r *Users) conflicts(u *models.User) bool {
	for _, other := range r.byID {
		if other.ID == u.ID {
			continue
		}
		if other.ClerkID == u.ClerkID || (u.Email != "" && other.Email == u.Email) || (u.Username != "" && other.Username == u.Username) {
			return true
		}
	}
	return false
}

func (r *Users) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if r.conflicts(user) {
		return repositories.ErrDuplicate
	}
	r.byID[user.ID] = clone(user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *Users) first(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if u := r.byID[id]; u != nil && match(u) {
			return clone(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *Users) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.ID == id })
}

func (r *Users) GetUserByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.ClerkID == clerkID })
}

func (r *Users) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.Username == username })
}

func (r *Users) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range r.order {
		u := r.byID[id]
		if u != nil && models.HasEdge(ids, id) {
			out = append(out, *clone(u))
		}
	}
	return out, nil
}

func (r *Users) apply(u *models.User, update repositories.UserUpdate) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Email, update.Email)
	set(&u.Username, update.Username)
	set(&u.FullName, update.FullName)
	set(&u.Bio, update.Bio)
	set(&u.Location, update.Location)
	set(&u.ProfilePicture, update.ProfilePicture)
	set(&u.CoverPhoto, update.CoverPhoto)
	u.UpdatedAt = time.Now()
}

func (r *Users) updateWhere(match func(*models.User) bool, update repositories.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		u := r.byID[id]
		if u == nil || !match(u) {
			continue
		}
		next := clone(u)
		r.apply(next, update)
		if r.conflicts(next) {
			return nil, repositories.ErrDuplicate
		}
		r.byID[id] = next
		return clone(next), nil
	}
	return nil, repositories.ErrNotFound
}

func (r *Users) UpdateUser(_ context.Context, id primitive.ObjectID, update repositories.UserUpdate) (*models.User, error) {
	return r.updateWhere(func(u *models.User) bool { return u.ID == id }, update)
}

func (r *Users) UpdateUserByClerkID(_ context.Context, clerkID string, update repositories.UserUpdate) (*models.User, error) {
	return r.updateWhere(func(u *models.User) bool { return u.ClerkID == clerkID }, update)
}

func (r *Users) DeleteUserByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range r.order {
		u := r.byID[id]
		if u != nil && u.ClerkID == clerkID {
			delete(r.byID, id)
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			return clone(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *Users) UsernameTaken(_ context.Context, username string, exceptID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) list(match func(*models.User) bool, limit int64) []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range r.order {
		if int64(len(out)) >= limit {
			break
		}
		if u := r.byID[id]; u != nil && match(u) {
			out = append(out, *clone(u))
		}
	}
	return out
}

func (r *Users) SearchUsers(_ context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	q := strings.ToLower(query)
	return r.list(func(u *models.User) bool {
		if u.ID == exclude {
			return false
		}
		return strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.FullName), q)
	}, limit), nil
}

func (r *Users) GetSuggestions(_ context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	return r.list(func(u *models.User) bool { return !models.HasEdge(exclude, u.ID) }, limit), nil
}

func edgeSet(u *models.User, edge repositories.Edge) *[]primitive.ObjectID {
	switch edge {
	case repositories.EdgeFollowers:
		return &u.Followers
	case repositories.EdgeFollowing:
		return &u.Following
	default:
		return &u.Connections
	}
}

func (r *Users) AddEdge(_ context.Context, userID primitive.ObjectID, edge repositories.Edge, otherID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[userID]
	if u == nil {
		return false, nil
	}
	set := edgeSet(u, edge)
	if models.HasEdge(*set, otherID) {
		return false, nil
	}
	*set = append(*set, otherID)
	return true, nil
}

func (r *Users) RemoveEdge(_ context.Context, userID primitive.ObjectID, edge repositories.Edge, otherID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[userID]
	if u == nil {
		return false, nil
	}
	set := edgeSet(u, edge)
	for i, v := range *set {
		if v == otherID {
			*set = append((*set)[:i:i], (*set)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
