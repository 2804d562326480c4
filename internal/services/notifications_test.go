package services

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/pkg/metrics"
)

func TestNotificationList(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	me, a, b := e.user(t, "me"), e.user(t, "a"), e.user(t, "b")
	require.NoError(t, e.graph.Follow(ctx, a, me))
	require.NoError(t, e.graph.Follow(ctx, b, me))

	list, err := e.notif.List(ctx, me, Pagination{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.UnreadCount)
	assert.Equal(t, int64(2), list.Page.Total)
	assert.True(t, list.Page.HasMore)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "b", list.Notifications[0].FromUser.Username)
}

func TestNotificationMarkRead(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	me, a := e.user(t, "me"), e.user(t, "a")
	require.NoError(t, e.graph.Follow(ctx, a, me))
	id := e.notifications.All()[0].ID

	assert.ErrorIs(t, e.notif.MarkRead(ctx, a, id), apperr.ErrNotificationNotFound)
	require.NoError(t, e.notif.MarkRead(ctx, me, id))

	n, err := e.notif.UnreadCount(ctx, me)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationMarkAllAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	me, a, b := e.user(t, "me"), e.user(t, "a"), e.user(t, "b")
	require.NoError(t, e.graph.Follow(ctx, a, me))
	require.NoError(t, e.graph.Follow(ctx, b, me))
	require.NoError(t, e.graph.Follow(ctx, me, a))

	require.NoError(t, e.notif.MarkAllRead(ctx, me))
	n, err := e.notif.UnreadCount(ctx, me)
	require.NoError(t, err)
	assert.Zero(t, n)

	first := e.notifications.All()[0].ID
	assert.ErrorIs(t, e.notif.Delete(ctx, b, first), apperr.ErrNotificationNotFound)
	require.NoError(t, e.notif.Delete(ctx, me, first))

	require.NoError(t, e.notif.DeleteAll(ctx, me))
	list, err := e.notif.List(ctx, me, Pagination{})
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)

	// notifications addressed to other users survive
	other, err := e.notif.UnreadCount(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestNotificationGrouped(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	me, a := e.user(t, "me"), e.user(t, "a")
	now := e.clock.Now()
	for _, age := range []time.Duration{time.Hour, 30 * time.Hour, 100 * time.Hour} {
		require.NoError(t, e.notifications.CreateNotification(ctx, &models.Notification{
			UserID: me.Hex(), FromUserID: a.Hex(), Type: models.NotificationLike, CreatedAt: now.Add(-age),
		}))
	}

	g, err := e.notif.Grouped(ctx, me)
	require.NoError(t, err)
	assert.Len(t, g.Today, 1)
	assert.Len(t, g.Yesterday, 1)
	assert.Len(t, g.ThisWeek, 1)
	assert.Empty(t, g.Older)
	assert.Equal(t, "a", g.Today[0].FromUser.Username)
}

func TestNotifier_FailureIsCountedNotReturned(t *testing.T) {
	e := newEnv(t)
	e.notifications.Err = errors.New("down")
	before := testutil.ToFloat64(metrics.NotificationFailures.WithLabelValues("create"))

	e.notifier.Notify(t.Context(), primitive.NewObjectID(), primitive.NewObjectID(), models.NotificationFollow, nil, "x")

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationFailures.WithLabelValues("create")))
}

func TestNotifier_SkipsSelf(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID()
	e.notifier.Notify(t.Context(), id, id, models.NotificationLike, nil, "x")
	assert.Empty(t, e.notifications.All())
}
