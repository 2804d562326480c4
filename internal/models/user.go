package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local mirror of an identity-provider account, stored in MongoDB
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	ClerkID        string               `json:"clerkId" bson:"clerk_id"`
	Email          string               `json:"email" bson:"email"`
	Username       string               `json:"username" bson:"username"`
	FullName       string               `json:"full_name" bson:"full_name"`
	Bio            string               `json:"bio" bson:"bio"`
	ProfilePicture string               `json:"profile_picture" bson:"profile_picture"`
	CoverPhoto     string               `json:"cover_photo" bson:"cover_photo"`
	Location       string               `json:"location" bson:"location"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	Connections    []primitive.ObjectID `json:"connections" bson:"connections"`
	IsVerified     bool                 `json:"is_verified" bson:"is_verified"`
	CreatedAt      time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updated_at"`
}

// UserCompact is the public projection embedded in posts, comments, messages and lists
type UserCompact struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	FullName       string             `json:"full_name"`
	ProfilePicture string             `json:"profile_picture"`
	Bio            string             `json:"bio,omitempty"`
	Location       string             `json:"location,omitempty"`
	IsVerified     bool               `json:"is_verified"`
}

// ToCompact projects a user to its public fields
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		Location:       u.Location,
		IsVerified:     u.IsVerified,
	}
}

// HasEdge reports whether id is present in the given edge set
func HasEdge(set []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// SyncUserRequest is sent by the client on first login
type SyncUserRequest struct {
	Email          string `json:"email" validate:"omitempty,email"`
	Username       string `json:"username" validate:"omitempty,min=2,max=30"`
	FullName       string `json:"full_name" validate:"omitempty,max=100"`
	ProfilePicture string `json:"profile_picture"`
}

// UpdateProfileRequest defines the editable profile fields. Nil means "leave unchanged".
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2,max=30"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// UserProfile is a user with derived counters
type UserProfile struct {
	*User
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int   `json:"followers_count"`
	FollowingCount int   `json:"following_count"`
}

// UserSuggestion is a compact user with their follower count
type UserSuggestion struct {
	UserCompact
	FollowersCount int `json:"followers_count"`
}

// FollowStatus describes the relationship between the current user and another
type FollowStatus struct {
	IsFollowing  bool `json:"isFollowing"`
	IsFollower   bool `json:"isFollower"`
	IsConnection bool `json:"isConnection"`
}

// UserDetail is the current user with follow edges resolved
type UserDetail struct {
	*User
	Followers []UserCompact `json:"followers"`
	Following []UserCompact `json:"following"`
}
