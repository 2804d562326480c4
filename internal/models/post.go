package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PostTypeText          = "text"
	PostTypeImage         = "image"
	PostTypeTextWithImage = "text_with_image"

	MaxPostContent = 2000
	MaxPostImages  = 4
	MaxCommentText = 500
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID   `json:"user" bson:"user"`
	Content     string               `json:"content" bson:"content"`
	ImageURLs   []string             `json:"image_urls" bson:"image_urls"`
	PostType    string               `json:"post_type" bson:"post_type"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments    []Comment            `json:"comments" bson:"comments"`
	SharesCount int                  `json:"shares_count" bson:"shares_count"`
	Hashtags    []string             `json:"hashtags" bson:"hashtags"`
	CreatedAt   time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updated_at"`
}

// Comment is owned by its post and addressed by (post id, comment id)
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CreatePostRequest carries the text part of a multipart post upload
type CreatePostRequest struct {
	Content string `form:"content" json:"content" validate:"max=2000"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content *string `json:"content" validate:"omitempty,max=2000"`
}

// CreateCommentRequest defines the request body for adding a comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=500"`
}

// LikeResult is the authoritative like state after a toggle
type LikeResult struct {
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likes_count"`
}

// PostView is a post with its author and comment authors resolved
type PostView struct {
	Post
	Author   UserCompact   `json:"author"`
	Comments []CommentView `json:"comments"`
}

// CommentView is a comment with its author resolved
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}

// Page describes an offset-paginated slice of a larger result
type Page struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	HasMore     bool  `json:"hasMore"`
}
