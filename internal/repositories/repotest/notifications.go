package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
)

// Notifications is an in-memory repositories.NotificationRepository.
// Setting Err makes every write fail with it.
type Notifications struct {
	mu     sync.Mutex
	nextID uint
	items  []models.Notification
	Err    error
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

var _ repositories.NotificationRepository = (*Notifications)(nil)

// All returns every stored notification in insertion order
func (r *Notifications) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification{}, r.items...)
}

// ByPost returns the notifications referencing postID
func (r *Notifications) ByPost(postID string) []models.Notification {
	out := []models.Notification{}
	for _, n := range r.All() {
		if n.PostID != nil && *n.PostID == postID {
			out = append(out, n)
		}
	}
	return out
}

func (r *Notifications) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *Notifications) forUser(userID string) []models.Notification {
	out := []models.Notification{}
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *Notifications) GetByUserID(_ context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.forUser(userID)
	return window(all, int64((page-1)*limit), int64(limit)), int64(len(all)), nil
}

func (r *Notifications) GetGrouped(_ context.Context, userID string, now time.Time) (*repositories.GroupedNotifications, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &repositories.GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range r.forUser(userID) {
		switch {
		case !n.CreatedAt.Before(todayStart):
			g.Today = append(g.Today, n)
		case !n.CreatedAt.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !n.CreatedAt.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		case len(g.Older) < 50:
			g.Older = append(g.Older, n)
		}
	}
	return g, nil
}

func (r *Notifications) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *Notifications) MarkAsRead(_ context.Context, userID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *Notifications) MarkAllAsRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i := range r.items {
		if r.items[i].UserID == userID {
			r.items[i].Read = true
		}
	}
	return nil
}

func (r *Notifications) deleteWhere(match func(models.Notification) bool, once bool) int {
	kept := r.items[:0]
	removed := 0
	for _, n := range r.items {
		if match(n) && (!once || removed == 0) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.items = kept
	return removed
}

func (r *Notifications) Delete(_ context.Context, userID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.deleteWhere(func(n models.Notification) bool { return n.ID == id && n.UserID == userID }, true) == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *Notifications) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.deleteWhere(func(n models.Notification) bool { return n.UserID == userID }, false)
	return nil
}

func (r *Notifications) DeleteByPosts(_ context.Context, postIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.deleteWhere(func(n models.Notification) bool { return n.PostID != nil && containsString(postIDs, *n.PostID) }, false)
	return nil
}

func (r *Notifications) DeleteMatching(_ context.Context, m repositories.NotificationMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.deleteWhere(func(n models.Notification) bool {
		if n.UserID != m.UserID || n.FromUserID != m.FromUserID || n.Type != m.Type {
			return false
		}
		return m.PostID == nil || (n.PostID != nil && *n.PostID == *m.PostID)
	}, true)
	return nil
}
