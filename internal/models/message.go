package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message is a direct message between two users
type Message struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FromUserID  primitive.ObjectID `json:"from_user_id" bson:"from_user"`
	ToUserID    primitive.ObjectID `json:"to_user_id" bson:"to_user"`
	Text        string             `json:"text" bson:"text"`
	MessageType string             `json:"message_type" bson:"message_type"`
	MediaURL    string             `json:"media_url" bson:"media_url"`
	Seen        bool               `json:"seen" bson:"seen"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// ConversationSummary is the aggregated inbox row for one counterparty
type ConversationSummary struct {
	OtherUserID primitive.ObjectID `bson:"_id"`
	LastMessage Message            `bson:"last_message"`
	UnreadCount int                `bson:"unread_count"`
}

// Conversation is a summary with the counterparty resolved
type Conversation struct {
	OtherUser   UserCompact `json:"otherUser"`
	LastMessage Message     `json:"lastMessage"`
	UnreadCount int         `json:"unreadCount"`
}

// SendMessageRequest carries the text part of a message
type SendMessageRequest struct {
	Text string `form:"text" json:"text" validate:"max=2000"`
}

// MessageView is a message with both participants resolved
type MessageView struct {
	Message
	FromUser UserCompact `json:"from_user"`
	ToUser   UserCompact `json:"to_user"`
}
