package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories/repotest"
	"github.com/anonto42/pingup/backend/internal/testutil"
)

type env struct {
	users         *repotest.Users
	posts         *repotest.Posts
	stories       *repotest.Stories
	messages      *repotest.Messages
	notifications *repotest.Notifications
	media         *testutil.MediaStore
	clock         *testutil.StubClock

	graph    *GraphService
	post     *PostService
	story    *StoryService
	message  *MessageService
	notif    *NotificationService
	userSvc  *UserService
	notifier *Notifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:         repotest.NewUsers(),
		posts:         repotest.NewPosts(),
		stories:       repotest.NewStories(),
		messages:      repotest.NewMessages(),
		notifications: repotest.NewNotifications(),
		media:         &testutil.MediaStore{},
		clock:         testutil.FixedClock(),
	}
	e.notifier = NewNotifier(e.notifications)
	e.graph = NewGraphService(e.users, e.notifier)
	e.post = NewPostService(e.posts, e.users, e.media, e.notifier, e.clock)
	e.story = NewStoryService(e.stories, e.users, e.media, e.clock)
	e.message = NewMessageService(e.messages, e.users, e.media, e.notifier, e.clock)
	e.notif = NewNotificationService(e.notifications, e.users, e.clock)
	e.userSvc = NewUserService(e.users, e.posts, e.media, e.notifier)
	return e
}

func (e *env) user(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	return e.users.Add(models.User{ClerkID: "clerk_" + name, Email: name + "@example.com", Username: name, FullName: name})
}

func (e *env) reload(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := e.users.GetUserByID(t.Context(), id)
	require.NoError(t, err)
	return u
}
