package repositories

import (
	"context"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationMatch identifies notifications produced by one logical event
type NotificationMatch struct {
	UserID     string
	FromUserID string
	Type       string
	PostID     *string
}

// GroupedNotifications buckets a user's notifications by age
type GroupedNotifications struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"thisWeek"`
	Older     []models.Notification `json:"older"`
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByUserID(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, userID string, now time.Time) (*GroupedNotifications, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, id uint) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id uint) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteByPosts(ctx context.Context, postIDs ...string) error
	DeleteMatching(ctx context.Context, match NotificationMatch) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByUserID(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, userID string, now time.Time) (*GroupedNotifications, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)
	g := &GroupedNotifications{}

	if err := db.Where("user_id = ? AND created_at >= ?", userID, todayStart).
		Order("created_at DESC").Find(&g.Today).Error; err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&g.Yesterday).Error; err != nil {
		return nil, err
	}

	// excludes today and yesterday
	if err := db.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&g.ThisWeek).Error; err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ? AND created_at < ?", userID, weekStart).
		Order("created_at DESC").Limit(50).Find(&g.Older).Error; err != nil {
		return nil, err
	}

	return g, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, userID string, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ownedOrNotFound(ctx, userID, id)
	}
	return nil
}

// ownedOrNotFound distinguishes an already-read notification from a missing or foreign one
func (r *postgresNotificationRepository) ownedOrNotFound(ctx context.Context, userID string, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, userID string, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteByPosts(ctx context.Context, postIDs ...string) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Notification{}).Error
}

// DeleteMatching removes a single notification matching the event, if any
func (r *postgresNotificationRepository) DeleteMatching(ctx context.Context, match NotificationMatch) error {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Notification{}).
		Where("user_id = ? AND from_user_id = ? AND type = ?", match.UserID, match.FromUserID, match.Type)
	if match.PostID != nil {
		q = q.Where("post_id = ?", *match.PostID)
	}

	var n models.Notification
	res := q.Order("id ASC").Limit(1).Find(&n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return db.Delete(&models.Notification{}, n.ID).Error
}
