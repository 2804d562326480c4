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

// Posts is an in-memory repositories.PostRepository
type Posts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Post
}

func NewPosts() *Posts {
	return &Posts{byID: map[primitive.ObjectID]*models.Post{}}
}

var _ repositories.PostRepository = (*Posts)(nil)

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.ImageURLs = append([]string{}, p.ImageURLs...)
	c.Likes = append([]primitive.ObjectID{}, p.Likes...)
	c.Comments = append([]models.Comment{}, p.Comments...)
	c.Hashtags = append([]string{}, p.Hashtags...)
	return &c
}

func (r *Posts) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	r.byID[post.ID] = clonePost(post)
	return nil
}

func (r *Posts) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[id]
	if p == nil {
		return nil, repositories.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *Posts) ListPosts(_ context.Context, query repositories.PostQuery, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Post{}
	for _, p := range r.byID {
		if query.Authors != nil && !models.HasEdge(query.Authors, p.UserID) {
			continue
		}
		if query.Hashtag != "" && !containsString(p.Hashtags, query.Hashtag) {
			continue
		}
		matched = append(matched, *clonePost(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	total := int64(len(matched))
	return window(matched, skip, limit), total, nil
}

func window[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Posts) CountUserPosts(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.byID {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *Posts) UpdatePostContent(_ context.Context, id primitive.ObjectID, content, postType string, hashtags []string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[id]
	if p == nil {
		return nil, repositories.ErrNotFound
	}
	p.Content = content
	p.PostType = postType
	p.Hashtags = append([]string{}, hashtags...)
	p.UpdatedAt = time.Now()
	return clonePost(p), nil
}

func (r *Posts) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID[id] == nil {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Posts) DeleteUserPosts(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []primitive.ObjectID{}
	for id, p := range r.byID {
		if p.UserID == userID {
			delete(r.byID, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Posts) AddLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[postID]
	if p == nil || models.HasEdge(p.Likes, userID) {
		return nil, false, nil
	}
	p.Likes = append(p.Likes, userID)
	return clonePost(p), true, nil
}

func (r *Posts) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[postID]
	if p == nil {
		return nil, false, nil
	}
	for i, v := range p.Likes {
		if v == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return clonePost(p), true, nil
		}
	}
	return nil, false, nil
}

func (r *Posts) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[postID]
	if p == nil {
		return repositories.ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (r *Posts) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[postID]
	if p == nil {
		return repositories.ErrNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}
