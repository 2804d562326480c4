package services

import (
	"context"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgLiked     = "liked your post"
	msgCommented = "commented on your post"
	msgFollowed  = "started following you"
	msgMessaged  = "sent you a message"
)

// Notifier fans graph, content and message events out to the notification store.
// Writes never fail the triggering operation: errors are logged and counted.
type Notifier struct {
	repo repositories.NotificationRepository
}

func NewNotifier(repo repositories.NotificationRepository) *Notifier {
	return &Notifier{repo: repo}
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}

func (n *Notifier) dropped(ctx context.Context, op string, err error) {
	metrics.NotificationFailures.WithLabelValues(op).Inc()
	logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("notification write failed")
}

// Notify records that actor did kind to target. Self-notifications are skipped.
func (n *Notifier) Notify(ctx context.Context, target, actor primitive.ObjectID, kind string, post *primitive.ObjectID, message string) {
	if target == actor {
		return
	}
	rec := &models.Notification{
		UserID:     target.Hex(),
		FromUserID: actor.Hex(),
		Type:       kind,
		PostID:     hexPtr(post),
		Message:    message,
	}
	if err := n.repo.CreateNotification(ctx, rec); err != nil {
		n.dropped(ctx, "create", err)
	}
}

// Retract removes the notification a reversed event produced, if present
func (n *Notifier) Retract(ctx context.Context, target, actor primitive.ObjectID, kind string, post *primitive.ObjectID) {
	match := repositories.NotificationMatch{
		UserID:     target.Hex(),
		FromUserID: actor.Hex(),
		Type:       kind,
		PostID:     hexPtr(post),
	}
	if err := n.repo.DeleteMatching(ctx, match); err != nil {
		n.dropped(ctx, "retract", err)
	}
}

// RetractPosts removes every notification referencing the posts
func (n *Notifier) RetractPosts(ctx context.Context, postIDs ...primitive.ObjectID) {
	if len(postIDs) == 0 {
		return
	}
	hexes := make([]string, len(postIDs))
	for i, id := range postIDs {
		hexes[i] = id.Hex()
	}
	if err := n.repo.DeleteByPosts(ctx, hexes...); err != nil {
		n.dropped(ctx, "delete_post", err)
	}
}

// ClearInbox removes every notification addressed to userID
func (n *Notifier) ClearInbox(ctx context.Context, userID primitive.ObjectID) {
	if err := n.repo.DeleteAllForUser(ctx, userID.Hex()); err != nil {
		n.dropped(ctx, "clear_inbox", err)
	}
}
