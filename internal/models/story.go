package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"

	DefaultStoryBackground = "#4f46e5"
	StoryLifetime          = 24 * time.Hour
)

// Story is time-limited content stored in MongoDB
type Story struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user" bson:"user"`
	Content         string             `json:"content" bson:"content"`
	MediaURL        string             `json:"media_url" bson:"media_url"`
	MediaType       string             `json:"media_type" bson:"media_type"`
	BackgroundColor string             `json:"background_color" bson:"background_color"`
	Views           []StoryView        `json:"views" bson:"views"`
	ExpiresAt       time.Time          `json:"expiresAt" bson:"expires_at"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
}

// StoryView records the first time a user viewed a story
type StoryView struct {
	UserID   primitive.ObjectID `json:"user" bson:"user"`
	ViewedAt time.Time          `json:"viewedAt" bson:"viewed_at"`
}

// CreateStoryRequest carries the form fields of a story upload
type CreateStoryRequest struct {
	Content         string `form:"content" json:"content" validate:"max=500"`
	MediaType       string `form:"media_type" json:"media_type" validate:"omitempty,oneof=text image video"`
	BackgroundColor string `form:"background_color" json:"background_color" validate:"omitempty,hexcolor"`
}

// StoryResponse is a story with its author resolved
type StoryResponse struct {
	Story
	Author UserCompact `json:"author"`
}

// StoryViewer is a view with the viewer resolved
type StoryViewer struct {
	User     UserCompact `json:"user"`
	ViewedAt time.Time   `json:"viewedAt"`
}
