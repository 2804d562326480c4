package services

import (
	"context"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService serves the user-facing notification inbox
type NotificationService struct {
	repo  repositories.NotificationRepository
	dir   directory
	clock Clock
}

func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, clock Clock) *NotificationService {
	return &NotificationService{repo: repo, dir: directory{users: users}, clock: clock}
}

// NotificationList is one page of notifications plus the unread total
type NotificationList struct {
	Notifications []models.NotificationView
	UnreadCount   int64
	Page          models.Page
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, p Pagination) (*NotificationList, error) {
	p = p.normalize(DefaultNotificationLimit)
	items, total, err := s.repo.GetByUserID(ctx, userID.Hex(), p.Page, p.Limit)
	if err != nil {
		return nil, storeError("list notifications", err)
	}
	unread, err := s.repo.GetUnreadCount(ctx, userID.Hex())
	if err != nil {
		return nil, storeError("count notifications", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Notifications: views, UnreadCount: unread, Page: p.describe(len(items), total)}, nil
}

// GroupedNotifications buckets notifications by age relative to now
type GroupedNotifications struct {
	Today     []models.NotificationView `json:"today"`
	Yesterday []models.NotificationView `json:"yesterday"`
	ThisWeek  []models.NotificationView `json:"thisWeek"`
	Older     []models.NotificationView `json:"older"`
}

func (s *NotificationService) Grouped(ctx context.Context, userID primitive.ObjectID) (*GroupedNotifications, error) {
	g, err := s.repo.GetGrouped(ctx, userID.Hex(), s.clock.Now())
	if err != nil {
		return nil, storeError("group notifications", err)
	}
	out := &GroupedNotifications{}
	for _, bucket := range []struct {
		src []models.Notification
		dst *[]models.NotificationView
	}{
		{g.Today, &out.Today},
		{g.Yesterday, &out.Yesterday},
		{g.ThisWeek, &out.ThisWeek},
		{g.Older, &out.Older},
	} {
		if *bucket.dst, err = s.views(ctx, bucket.src); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.repo.GetUnreadCount(ctx, userID.Hex())
	if err != nil {
		return 0, storeError("count notifications", err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID primitive.ObjectID, id uint) error {
	if err := s.repo.MarkAsRead(ctx, userID.Hex(), id); err != nil {
		return mapNotFound(err, apperr.ErrNotificationNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID.Hex()); err != nil {
		return storeError("mark notifications read", err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID primitive.ObjectID, id uint) error {
	if err := s.repo.Delete(ctx, userID.Hex(), id); err != nil {
		return mapNotFound(err, apperr.ErrNotificationNotFound)
	}
	return nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.repo.DeleteAllForUser(ctx, userID.Hex()); err != nil {
		return storeError("delete notifications", err)
	}
	return nil
}

func (s *NotificationService) views(ctx context.Context, items []models.Notification) ([]models.NotificationView, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, n := range items {
		if id, err := primitive.ObjectIDFromHex(n.FromUserID); err == nil {
			ids = append(ids, id)
		}
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		id, _ := primitive.ObjectIDFromHex(n.FromUserID)
		out = append(out, models.NotificationView{Notification: n, FromUser: author(byID, id)})
	}
	return out, nil
}
