package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/testutil"
)

func TestCreateStory_Defaults(t *testing.T) {
	e := newEnv(t)
	a := e.user(t, "alice")

	story, err := e.story.CreateStory(t.Context(), a, StoryInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeText, story.MediaType)
	assert.Equal(t, models.DefaultStoryBackground, story.BackgroundColor)
	assert.Equal(t, e.clock.Now().Add(24*time.Hour), story.ExpiresAt)
	assert.Equal(t, "alice", story.Author.Username)
}

func TestCreateStory_Empty(t *testing.T) {
	e := newEnv(t)
	_, err := e.story.CreateStory(t.Context(), e.user(t, "alice"), StoryInput{MediaType: "image"})
	assert.ErrorIs(t, err, apperr.ErrEmptyStory)
}

func TestCreateStory_MediaKindFromMIME(t *testing.T) {
	e := newEnv(t)
	a := e.user(t, "alice")

	clip := testutil.Image("clip.mp4", "video/mp4")
	story, err := e.story.CreateStory(t.Context(), a, StoryInput{MediaType: "image", Media: &clip})
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeVideo, story.MediaType)
	assert.Equal(t, "https://cdn.test/pingup/stories/clip.mp4", story.MediaURL)

	pic := testutil.Image("pic.gif", "image/gif")
	story, err = e.story.CreateStory(t.Context(), a, StoryInput{MediaType: "video", Media: &pic, BackgroundColor: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, story.MediaType)
	assert.Equal(t, "#000000", story.BackgroundColor)
}

func TestListActiveStories_ExpiresAfter24h(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	a, b, c := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	require.NoError(t, e.graph.Follow(ctx, a, b))

	own, err := e.story.CreateStory(ctx, a, StoryInput{Content: "mine"})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	followed, err := e.story.CreateStory(ctx, b, StoryInput{Content: "bob"})
	require.NoError(t, err)
	_, err = e.story.CreateStory(ctx, c, StoryInput{Content: "carol"})
	require.NoError(t, err)

	active, err := e.story.ListActiveStories(ctx, a)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, followed.ID, active[0].ID)
	assert.Equal(t, own.ID, active[1].ID)

	e.clock.Advance(25 * time.Hour)
	active, err = e.story.ListActiveStories(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = e.story.ViewStory(ctx, b, own.ID)
	assert.ErrorIs(t, err, apperr.ErrStoryNotFound)
}

func TestViewStory_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	a, b, c := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	story, err := e.story.CreateStory(ctx, a, StoryInput{Content: "hi"})
	require.NoError(t, err)

	n, err := e.story.ViewStory(ctx, b, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	firstView := e.clock.Now()

	e.clock.Advance(time.Hour)
	n, err = e.story.ViewStory(ctx, b, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.story.ViewStory(ctx, c, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	viewers, err := e.story.ListStoryViewers(ctx, a, story.ID)
	require.NoError(t, err)
	require.Len(t, viewers, 2)
	assert.Equal(t, "bob", viewers[0].User.Username)
	assert.Equal(t, firstView, viewers[0].ViewedAt)

	_, err = e.story.ListStoryViewers(ctx, b, story.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDeleteStory_AuthorOnly(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	a, b := e.user(t, "alice"), e.user(t, "bob")
	story, err := e.story.CreateStory(ctx, a, StoryInput{Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(e.story.DeleteStory(ctx, b, story.ID)))
	require.NoError(t, e.story.DeleteStory(ctx, a, story.ID))
	assert.ErrorIs(t, e.story.DeleteStory(ctx, a, story.ID), apperr.ErrStoryNotFound)
	assert.ErrorIs(t, e.story.DeleteStory(ctx, a, primitive.NewObjectID()), apperr.ErrStoryNotFound)
}

func TestStorySweeper_DeletesExpired(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	a := e.user(t, "alice")
	_, err := e.story.CreateStory(ctx, a, StoryInput{Content: "old"})
	require.NoError(t, err)
	e.clock.Advance(23 * time.Hour)
	_, err = e.story.CreateStory(ctx, a, StoryInput{Content: "new"})
	require.NoError(t, err)
	e.clock.Advance(2 * time.Hour)

	sweepCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		NewStorySweeper(e.story, time.Hour).Run(sweepCtx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return e.stories.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	active, err := e.story.ListUserStories(ctx, a)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "new", active[0].Content)
}
