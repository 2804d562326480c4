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
)

const maxMessageText = 2000

// MessageService implements direct messages and the inbox
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	dir      directory
	media    uploader
	notifier *Notifier
	clock    Clock
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, media storage.MediaStore, notifier *Notifier, clock Clock) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		dir:      directory{users: users},
		media:    uploader{store: media},
		notifier: notifier,
		clock:    clock,
	}
}

// ConversationPage is one page of history with the counterparty resolved
type ConversationPage struct {
	Messages  []models.MessageView
	Recipient models.UserCompact
}

// SendMessage stores a text and/or image message from one user to another
func (s *MessageService) SendMessage(ctx context.Context, fromID, toID primitive.ObjectID, text string, image *storage.Object) (*models.MessageView, error) {
	if _, err := s.users.GetUserByID(ctx, toID); err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotFound)
	}
	if fromID == toID {
		return nil, apperr.Conflict("Cannot send message to yourself")
	}

	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, apperr.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageText {
		return nil, apperr.Validation("Message must be at most 2000 characters")
	}

	msg := &models.Message{
		ID:          primitive.NewObjectID(),
		FromUserID:  fromID,
		ToUserID:    toID,
		Text:        text,
		MessageType: models.MessageTypeText,
		CreatedAt:   s.clock.Now(),
	}
	if image != nil {
		if err := validateImage(*image); err != nil {
			return nil, err
		}
		url, err := s.media.upload(ctx, FolderMessages, *image)
		if err != nil {
			return nil, err
		}
		msg.MediaURL = url
		msg.MessageType = models.MessageTypeImage
	}

	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, storeError("create message", err)
	}
	s.notifier.Notify(ctx, toID, fromID, models.NotificationMessage, nil, msgMessaged)

	views, err := s.views(ctx, []models.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetConversation returns a page of history in ascending order, then marks the
// counterparty's messages seen. The page reflects the seen state before the update.
func (s *MessageService) GetConversation(ctx context.Context, userID, otherID primitive.ObjectID, p Pagination) (*ConversationPage, error) {
	p = p.normalize(DefaultConversationLimit)
	msgs, err := s.messages.ListConversation(ctx, userID, otherID, int64(p.offset()), int64(p.Limit))
	if err != nil {
		return nil, storeError("list conversation", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if _, err := s.messages.MarkSeen(ctx, otherID, userID); err != nil {
		return nil, storeError("mark seen", err)
	}

	views, err := s.views(ctx, msgs)
	if err != nil {
		return nil, err
	}
	byID, err := s.dir.lookup(ctx, []primitive.ObjectID{otherID})
	if err != nil {
		return nil, err
	}
	return &ConversationPage{Messages: views, Recipient: author(byID, otherID)}, nil
}

// GetConversations returns one summary per counterparty, most recent first
func (s *MessageService) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	summaries, err := s.messages.ListConversations(ctx, userID)
	if err != nil {
		return nil, storeError("list conversations", err)
	}
	ids := make([]primitive.ObjectID, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, c.OtherUserID)
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.Conversation, 0, len(summaries))
	for _, c := range summaries {
		out = append(out, models.Conversation{
			OtherUser:   author(byID, c.OtherUserID),
			LastMessage: c.LastMessage,
			UnreadCount: c.UnreadCount,
		})
	}
	return out, nil
}

func (s *MessageService) MarkConversationRead(ctx context.Context, userID, otherID primitive.ObjectID) error {
	if _, err := s.messages.MarkSeen(ctx, otherID, userID); err != nil {
		return storeError("mark seen", err)
	}
	return nil
}

// DeleteMessage is restricted to the sender
func (s *MessageService) DeleteMessage(ctx context.Context, actorID, messageID primitive.ObjectID) error {
	msg, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return mapNotFound(err, apperr.ErrMessageNotFound)
	}
	if msg.FromUserID != actorID {
		return apperr.Forbidden("Not authorized to delete this message")
	}
	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		return mapNotFound(err, apperr.ErrMessageNotFound)
	}
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, storeError("count unread messages", err)
	}
	return n, nil
}

func (s *MessageService) views(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	ids := make([]primitive.ObjectID, 0, 2*len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.FromUserID, m.ToUserID)
	}
	byID, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.MessageView{Message: m, FromUser: author(byID, m.FromUserID), ToUser: author(byID, m.ToUserID)})
	}
	return out, nil
}
