package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	searchLimit     = 20
	suggestionLimit = 10
	minSearchLength = 2
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// UserService mirrors identity-provider accounts and serves profiles
type UserService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	dir      directory
	media    uploader
	notifier *Notifier
}

func NewUserService(users repositories.UserRepository, posts repositories.PostRepository, media storage.MediaStore, notifier *Notifier) *UserService {
	return &UserService{users: users, posts: posts, dir: directory{users: users}, media: uploader{store: media}, notifier: notifier}
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func duplicate(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperr.Conflict("User with this email or username already exists")
	}
	return storeError("save user", err)
}

// SyncUser creates the local mirror for identityID, or updates the provided fields if it exists
func (s *UserService) SyncUser(ctx context.Context, identityID string, req models.SyncUserRequest) (*models.User, bool, error) {
	if identityID == "" {
		return nil, false, apperr.Validation("No user ID provided")
	}
	username := normalizeUsername(req.Username)
	fullName := strings.TrimSpace(req.FullName)

	existing, err := s.users.GetUserByClerkID(ctx, identityID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, storeError("find user", err)
	}
	if existing != nil {
		user, err := s.users.UpdateUserByClerkID(ctx, identityID, repositories.UserUpdate{
			Email:          optional(req.Email),
			Username:       optional(username),
			FullName:       optional(fullName),
			ProfilePicture: optional(req.ProfilePicture),
		})
		if err != nil {
			return nil, false, duplicate(err)
		}
		return user, false, nil
	}

	user := &models.User{
		ClerkID:        identityID,
		Email:          req.Email,
		Username:       username,
		FullName:       fullName,
		ProfilePicture: req.ProfilePicture,
	}
	if user.Email == "" {
		user.Email = "user_" + lastN(identityID, 6) + "@pingup.com"
	}
	if user.Username == "" {
		user.Username = normalizeUsername("user_" + lastN(identityID, 8))
	}
	if user.FullName == "" {
		user.FullName = "New User"
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, false, duplicate(err)
	}
	return user, true, nil
}

// HandleIdentityEvent applies a verified webhook event. Unknown types are ignored.
func (s *UserService) HandleIdentityEvent(ctx context.Context, evt models.IdentityEvent) error {
	log := logging.Ctx(ctx)
	data := evt.Data

	switch evt.Type {
	case models.EventUserCreated:
		email := data.PrimaryEmail()
		username := data.Username
		if username == "" {
			username, _, _ = strings.Cut(email, "@")
		}
		fullName := data.DisplayName()
		if fullName == "" {
			fullName = "User"
		}
		user := &models.User{
			ClerkID:        data.ID,
			Email:          email,
			Username:       normalizeUsername(username),
			FullName:       fullName,
			ProfilePicture: data.ImageURL,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return duplicate(err)
		}
		log.Info().Str("username", user.Username).Msg("user created from webhook")

	case models.EventUserUpdated:
		_, err := s.users.UpdateUserByClerkID(ctx, data.ID, repositories.UserUpdate{
			Email:          optional(data.PrimaryEmail()),
			Username:       optional(normalizeUsername(data.Username)),
			FullName:       optional(data.DisplayName()),
			ProfilePicture: optional(data.ImageURL),
		})
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn().Str("clerk_id", data.ID).Msg("webhook update for unknown user")
			return nil
		}
		if err != nil {
			return duplicate(err)
		}
		log.Info().Str("clerk_id", data.ID).Msg("user updated from webhook")

	case models.EventUserDeleted:
		user, err := s.users.DeleteUserByClerkID(ctx, data.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn().Str("clerk_id", data.ID).Msg("webhook delete for unknown user")
			return nil
		}
		if err != nil {
			return storeError("delete user", err)
		}
		postIDs, err := s.posts.DeleteUserPosts(ctx, user.ID)
		if err != nil {
			return storeError("delete user posts", err)
		}
		s.notifier.RetractPosts(ctx, postIDs...)
		s.notifier.ClearInbox(ctx, user.ID)
		log.Info().Str("clerk_id", data.ID).Int("posts", len(postIDs)).Msg("user deleted from webhook")

	default:
		log.Info().Str("type", evt.Type).Msg("unhandled webhook event")
	}
	return nil
}

// GetMe returns the user with followers and following resolved
func (s *UserService) GetMe(ctx context.Context, userID primitive.ObjectID) (*models.UserDetail, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	followers, err := s.dir.ordered(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	following, err := s.dir.ordered(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	return &models.UserDetail{User: user, Followers: followers, Following: following}, nil
}

// GetProfile resolves a 24-hex id or a username
func (s *UserService) GetProfile(ctx context.Context, idOrUsername string) (*models.UserProfile, error) {
	var (
		user *models.User
		err  error
	)
	if objectIDPattern.MatchString(idOrUsername) {
		id, _ := primitive.ObjectIDFromHex(idOrUsername)
		user, err = s.users.GetUserByID(ctx, id)
	} else {
		user, err = s.users.GetUserByUsername(ctx, normalizeUsername(idOrUsername))
	}
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}

	postsCount, err := s.posts.CountUserPosts(ctx, user.ID)
	if err != nil {
		return nil, storeError("count posts", err)
	}
	return &models.UserProfile{
		User:           user,
		PostsCount:     postsCount,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
	}, nil
}

// UpdateProfile applies the provided fields. Usernames are lower-cased and must be free.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req models.UpdateProfileRequest) (*models.User, error) {
	update := repositories.UserUpdate{Bio: req.Bio, Location: req.Location}

	if req.Username != nil {
		if username := normalizeUsername(*req.Username); username != "" {
			taken, err := s.users.UsernameTaken(ctx, username, userID)
			if err != nil {
				return nil, storeError("check username", err)
			}
			if taken {
				return nil, apperr.ErrUsernameTaken
			}
			update.Username = &username
		}
	}
	if req.FullName != nil {
		update.FullName = optional(strings.TrimSpace(*req.FullName))
	}

	user, err := s.users.UpdateUser(ctx, userID, update)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, apperr.ErrUsernameTaken
	}
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) updateImage(ctx context.Context, userID primitive.ObjectID, image *storage.Object, folder string, set func(*repositories.UserUpdate, *string)) (*models.User, string, error) {
	if image == nil {
		return nil, "", apperr.Validation("No image provided")
	}
	if err := validateImage(*image); err != nil {
		return nil, "", err
	}
	url, err := s.media.upload(ctx, folder, *image)
	if err != nil {
		return nil, "", err
	}

	var update repositories.UserUpdate
	set(&update, &url)
	user, err := s.users.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, "", mapNotFound(err, apperr.ErrUserNotFound)
	}
	return user, url, nil
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, userID primitive.ObjectID, image *storage.Object) (*models.User, string, error) {
	return s.updateImage(ctx, userID, image, FolderProfiles, func(u *repositories.UserUpdate, url *string) { u.ProfilePicture = url })
}

func (s *UserService) UpdateCoverPhoto(ctx context.Context, userID primitive.ObjectID, image *storage.Object) (*models.User, string, error) {
	return s.updateImage(ctx, userID, image, FolderCovers, func(u *repositories.UserUpdate, url *string) { u.CoverPhoto = url })
}

// SearchUsers matches username or full name, excluding the caller
func (s *UserService) SearchUsers(ctx context.Context, userID primitive.ObjectID, query string) ([]models.UserCompact, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return nil, apperr.Validation("Search query must be at least 2 characters")
	}
	users, err := s.users.SearchUsers(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, storeError("search users", err)
	}
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}

// Suggestions lists users the caller does not follow yet
func (s *UserService) Suggestions(ctx context.Context, userID primitive.ObjectID) ([]models.UserSuggestion, error) {
	me, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	exclude := append([]primitive.ObjectID{userID}, me.Following...)

	users, err := s.users.GetSuggestions(ctx, exclude, suggestionLimit)
	if err != nil {
		return nil, storeError("suggest users", err)
	}
	out := make([]models.UserSuggestion, 0, len(users))
	for i := range users {
		out = append(out, models.UserSuggestion{UserCompact: users[i].ToCompact(), FollowersCount: len(users[i].Followers)})
	}
	return out, nil
}

// Authenticate resolves an identity id to the local user
func (s *UserService) Authenticate(ctx context.Context, identityID string) (*models.User, error) {
	if identityID == "" {
		return nil, apperr.Unauthorized("Unauthorized - No user ID provided")
	}
	user, err := s.users.GetUserByClerkID(ctx, identityID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthorized("Unauthorized - User not found")
	}
	if err != nil {
		return nil, storeError("authenticate", err)
	}
	return user, nil
}
