package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stories is an in-memory repositories.StoryRepository
type Stories struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Story
}

func NewStories() *Stories {
	return &Stories{byID: map[primitive.ObjectID]*models.Story{}}
}

var _ repositories.StoryRepository = (*Stories)(nil)

func cloneStory(s *models.Story) *models.Story {
	c := *s
	c.Views = append([]models.StoryView{}, s.Views...)
	return &c
}

// Len returns the number of stored stories, expired or not
func (r *Stories) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Stories) CreateStory(_ context.Context, story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	r.byID[story.ID] = cloneStory(story)
	return nil
}

func (r *Stories) GetStoryByID(_ context.Context, id primitive.ObjectID) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID[id]
	if s == nil {
		return nil, repositories.ErrNotFound
	}
	return cloneStory(s), nil
}

func (r *Stories) ListActiveStories(_ context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Story{}
	for _, s := range r.byID {
		if models.HasEdge(authors, s.UserID) && s.ExpiresAt.After(now) {
			out = append(out, *cloneStory(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *Stories) AddView(_ context.Context, storyID primitive.ObjectID, view models.StoryView) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID[storyID]
	if s == nil {
		return nil, repositories.ErrNotFound
	}
	for _, v := range s.Views {
		if v.UserID == view.UserID {
			return cloneStory(s), nil
		}
	}
	s.Views = append(s.Views, view)
	return cloneStory(s), nil
}

func (r *Stories) DeleteStory(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID[id] == nil {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Stories) DeleteExpiredStories(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if !s.ExpiresAt.After(now) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
