package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// PostService implements posts, likes and comments
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	dir      directory
	media    uploader
	notifier *Notifier
	clock    Clock
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, media storage.MediaStore, notifier *Notifier, clock Clock) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		dir:      directory{users: users},
		media:    uploader{store: media},
		notifier: notifier,
		clock:    clock,
	}
}

func postType(content string, images int) string {
	switch {
	case images == 0:
		return models.PostTypeText
	case content == "":
		return models.PostTypeImage
	default:
		return models.PostTypeTextWithImage
	}
}

func validatePostContent(content string) error {
	if utf8.RuneCountInString(content) > models.MaxPostContent {
		return apperr.Validation("Post content must be at most 2000 characters")
	}
	return nil
}

// CreatePost uploads the images and stores the post. Nothing is stored if any upload fails.
func (s *PostService) CreatePost(ctx context.Context, authorID primitive.ObjectID, content string, images []storage.Object) (*models.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return nil, apperr.ErrEmptyPost
	}
	if err := validatePostContent(content); err != nil {
		return nil, err
	}
	if len(images) > models.MaxPostImages {
		return nil, apperr.Validation("Too many files. Maximum is 4 images.")
	}
	for _, img := range images {
		if err := validateImage(img); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			url, err := s.media.upload(gctx, FolderPosts, img)
			urls[i] = url
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    authorID,
		Content:   content,
		ImageURLs: urls,
		PostType:  postType(content, len(urls)),
		Hashtags:  ExtractHashtags(content),
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeError("create post", err)
	}
	return s.view(ctx, post)
}

func (s *PostService) load(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrPostNotFound)
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID primitive.ObjectID) (*models.PostView, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

func (s *PostService) list(ctx context.Context, q repositories.PostQuery, p Pagination) ([]models.PostView, models.Page, error) {
	p = p.normalize(DefaultPostLimit)
	posts, total, err := s.posts.ListPosts(ctx, q, int64(p.offset()), int64(p.Limit))
	if err != nil {
		return nil, models.Page{}, storeError("list posts", err)
	}
	views, err := s.views(ctx, posts)
	if err != nil {
		return nil, models.Page{}, err
	}
	return views, p.describe(len(posts), total), nil
}

func (s *PostService) ListUserPosts(ctx context.Context, userID primitive.ObjectID, p Pagination) ([]models.PostView, models.Page, error) {
	return s.list(ctx, repositories.PostQuery{Authors: []primitive.ObjectID{userID}}, p)
}

func (s *PostService) ListAllPosts(ctx context.Context, p Pagination) ([]models.PostView, models.Page, error) {
	return s.list(ctx, repositories.PostQuery{}, p)
}

func (s *PostService) SearchByHashtag(ctx context.Context, tag string, p Pagination) ([]models.PostView, models.Page, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return nil, models.Page{}, apperr.Validation("Hashtag is required")
	}
	return s.list(ctx, repositories.PostQuery{Hashtag: tag}, p)
}

// UpdatePost rewrites the content of the actor's own post. A nil content leaves the post as is.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID primitive.ObjectID, content *string) (*models.PostView, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, apperr.Forbidden("Not authorized to update this post")
	}
	if content == nil {
		return s.view(ctx, post)
	}

	text := strings.TrimSpace(*content)
	if text == "" && len(post.ImageURLs) == 0 {
		return nil, apperr.ErrEmptyPost
	}
	if err := validatePostContent(text); err != nil {
		return nil, err
	}

	updated, err := s.posts.UpdatePostContent(ctx, postID, text, postType(text, len(post.ImageURLs)), ExtractHashtags(text))
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrPostNotFound)
	}
	return s.view(ctx, updated)
}

// DeletePost removes the actor's own post and every notification referencing it
func (s *PostService) DeletePost(ctx context.Context, actorID, postID primitive.ObjectID) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return apperr.Forbidden("Not authorized to delete this post")
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return mapNotFound(err, apperr.ErrPostNotFound)
	}
	s.notifier.RetractPosts(ctx, postID)
	return nil
}

// ToggleLike flips the actor's like and returns the stored state
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID primitive.ObjectID) (models.LikeResult, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return models.LikeResult{}, err
	}

	var (
		updated *models.Post
		changed bool
	)
	if models.HasEdge(post.Likes, actorID) {
		updated, changed, err = s.posts.RemoveLike(ctx, postID, actorID)
		if err != nil {
			return models.LikeResult{}, storeError("unlike post", err)
		}
		if changed {
			s.notifier.Retract(ctx, post.UserID, actorID, models.NotificationLike, &postID)
		}
	} else {
		updated, changed, err = s.posts.AddLike(ctx, postID, actorID)
		if err != nil {
			return models.LikeResult{}, storeError("like post", err)
		}
		if changed {
			s.notifier.Notify(ctx, post.UserID, actorID, models.NotificationLike, &postID, msgLiked)
		}
	}

	// a concurrent toggle already moved the set; report what is stored
	if !changed {
		if updated, err = s.load(ctx, postID); err != nil {
			return models.LikeResult{}, err
		}
	}
	return models.LikeResult{
		IsLiked:    models.HasEdge(updated.Likes, actorID),
		LikesCount: len(updated.Likes),
	}, nil
}

// AddComment appends a trimmed comment and notifies the post author
func (s *PostService) AddComment(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > models.MaxCommentText {
		return nil, apperr.Validation("Comment must be at most 500 characters")
	}

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, mapNotFound(err, apperr.ErrPostNotFound)
	}
	s.notifier.Notify(ctx, post.UserID, actorID, models.NotificationComment, &postID, msgCommented)

	byID, err := s.dir.lookup(ctx, []primitive.ObjectID{actorID})
	if err != nil {
		return nil, err
	}
	return &models.CommentView{Comment: comment, Author: author(byID, actorID)}, nil
}

// DeleteComment removes a comment. The comment author and the post author may delete it.
func (s *PostService) DeleteComment(ctx context.Context, actorID, postID, commentID primitive.ObjectID) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	var found *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			found = &post.Comments[i]
			break
		}
	}
	if found == nil {
		return apperr.ErrCommentNotFound
	}
	if found.UserID != actorID && post.UserID != actorID {
		return apperr.Forbidden("Not authorized to delete this comment")
	}

	if err := s.posts.RemoveComment(ctx, postID, commentID); err != nil {
		return mapNotFound(err, apperr.ErrCommentNotFound)
	}
	return nil
}

func (s *PostService) view(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.views(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves post and comment authors with a single lookup
func (s *PostService) views(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	ids := []primitive.ObjectID{}
	for _, p := range posts {
		ids = append(ids, p.UserID)
		for _, c := range p.Comments {
			ids = append(ids, c.UserID)
		}
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		comments := make([]models.CommentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, models.CommentView{Comment: c, Author: author(byID, c.UserID)})
		}
		out = append(out, models.PostView{Post: p, Author: author(byID, p.UserID), Comments: comments})
	}
	return out, nil
}
