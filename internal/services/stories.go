package services

import (
	"context"
	"strings"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryInput is a story upload. Media is optional.
type StoryInput struct {
	Content         string
	MediaType       string
	BackgroundColor string
	Media           *storage.Object
}

// StoryService implements 24h stories
type StoryService struct {
	stories repositories.StoryRepository
	users   repositories.UserRepository
	dir     directory
	media   uploader
	clock   Clock
}

func NewStoryService(stories repositories.StoryRepository, users repositories.UserRepository, media storage.MediaStore, clock Clock) *StoryService {
	return &StoryService{
		stories: stories,
		users:   users,
		dir:     directory{users: users},
		media:   uploader{store: media},
		clock:   clock,
	}
}

// mediaKind prefers the uploaded file's MIME family over the requested kind
func mediaKind(obj *storage.Object, requested string) string {
	if obj != nil {
		ct := strings.ToLower(obj.ContentType)
		switch {
		case strings.HasPrefix(ct, "video/"):
			return models.MediaTypeVideo
		case strings.HasPrefix(ct, "image/"):
			return models.MediaTypeImage
		}
	}
	if requested != "" {
		return requested
	}
	return models.MediaTypeText
}

func (s *StoryService) CreateStory(ctx context.Context, authorID primitive.ObjectID, in StoryInput) (*models.StoryResponse, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Media == nil {
		return nil, apperr.ErrEmptyStory
	}

	var mediaURL string
	if in.Media != nil {
		if err := validateStoryMedia(*in.Media); err != nil {
			return nil, err
		}
		url, err := s.media.upload(ctx, FolderStories, *in.Media)
		if err != nil {
			return nil, err
		}
		mediaURL = url
	}

	background := in.BackgroundColor
	if background == "" {
		background = models.DefaultStoryBackground
	}

	now := s.clock.Now()
	story := &models.Story{
		ID:              primitive.NewObjectID(),
		UserID:          authorID,
		Content:         content,
		MediaURL:        mediaURL,
		MediaType:       mediaKind(in.Media, in.MediaType),
		BackgroundColor: background,
		Views:           []models.StoryView{},
		ExpiresAt:       now.Add(models.StoryLifetime),
		CreatedAt:       now,
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, storeError("create story", err)
	}

	views, err := s.responses(ctx, []models.Story{*story})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListActiveStories returns unexpired stories by the user and everyone they follow
func (s *StoryService) ListActiveStories(ctx context.Context, userID primitive.ObjectID) ([]models.StoryResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	authors := append(append([]primitive.ObjectID{}, user.Following...), userID)
	return s.active(ctx, authors)
}

func (s *StoryService) ListUserStories(ctx context.Context, userID primitive.ObjectID) ([]models.StoryResponse, error) {
	return s.active(ctx, []primitive.ObjectID{userID})
}

func (s *StoryService) active(ctx context.Context, authors []primitive.ObjectID) ([]models.StoryResponse, error) {
	stories, err := s.stories.ListActiveStories(ctx, authors, s.clock.Now())
	if err != nil {
		return nil, storeError("list stories", err)
	}
	return s.responses(ctx, stories)
}

// live loads a story, treating an expired one as gone
func (s *StoryService) live(ctx context.Context, storyID primitive.ObjectID) (*models.Story, error) {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrStoryNotFound)
	}
	if !story.ExpiresAt.After(s.clock.Now()) {
		return nil, apperr.ErrStoryNotFound
	}
	return story, nil
}

// ViewStory records the viewer once and returns the view count
func (s *StoryService) ViewStory(ctx context.Context, viewerID, storyID primitive.ObjectID) (int, error) {
	story, err := s.live(ctx, storyID)
	if err != nil {
		return 0, err
	}
	for _, v := range story.Views {
		if v.UserID == viewerID {
			return len(story.Views), nil
		}
	}

	updated, err := s.stories.AddView(ctx, storyID, models.StoryView{UserID: viewerID, ViewedAt: s.clock.Now()})
	if err != nil {
		return 0, mapNotFound(err, apperr.ErrStoryNotFound)
	}
	return len(updated.Views), nil
}

// ListStoryViewers is restricted to the story author
func (s *StoryService) ListStoryViewers(ctx context.Context, actorID, storyID primitive.ObjectID) ([]models.StoryViewer, error) {
	story, err := s.live(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != actorID {
		return nil, apperr.Forbidden("Not authorized to view story viewers")
	}

	ids := make([]primitive.ObjectID, 0, len(story.Views))
	for _, v := range story.Views {
		ids = append(ids, v.UserID)
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	viewers := make([]models.StoryViewer, 0, len(story.Views))
	for _, v := range story.Views {
		viewers = append(viewers, models.StoryViewer{User: author(byID, v.UserID), ViewedAt: v.ViewedAt})
	}
	return viewers, nil
}

func (s *StoryService) DeleteStory(ctx context.Context, actorID, storyID primitive.ObjectID) error {
	story, err := s.live(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != actorID {
		return apperr.Forbidden("Not authorized to delete this story")
	}
	if err := s.stories.DeleteStory(ctx, storyID); err != nil {
		return mapNotFound(err, apperr.ErrStoryNotFound)
	}
	return nil
}

// SweepExpired deletes stories whose expiry has passed
func (s *StoryService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.stories.DeleteExpiredStories(ctx, s.clock.Now())
	if err != nil {
		return 0, storeError("sweep stories", err)
	}
	return n, nil
}

func (s *StoryService) responses(ctx context.Context, stories []models.Story) ([]models.StoryResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(stories))
	for _, st := range stories {
		ids = append(ids, st.UserID)
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.StoryResponse, 0, len(stories))
	for _, st := range stories {
		out = append(out, models.StoryResponse{Story: st, Author: author(byID, st.UserID)})
	}
	return out, nil
}
