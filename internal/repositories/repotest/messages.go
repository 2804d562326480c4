package repotest

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Messages is an in-memory repositories.MessageRepository
type Messages struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Message
}

func NewMessages() *Messages {
	return &Messages{byID: map[primitive.ObjectID]*models.Message{}}
}

var _ repositories.MessageRepository = (*Messages)(nil)

func newestFirst(msgs []models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].ID.Hex() > msgs[j].ID.Hex()
	})
}

func (r *Messages) CreateMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	c := *msg
	r.byID[msg.ID] = &c
	return nil
}

func (r *Messages) GetMessageByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byID[id]
	if m == nil {
		return nil, repositories.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *Messages) ListConversation(_ context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Message{}
	for _, m := range r.byID {
		if (m.FromUserID == userID && m.ToUserID == otherID) || (m.FromUserID == otherID && m.ToUserID == userID) {
			out = append(out, *m)
		}
	}
	newestFirst(out)
	return window(out, skip, limit), nil
}

func (r *Messages) MarkSeen(_ context.Context, fromID, toID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.byID {
		if m.FromUserID == fromID && m.ToUserID == toID && !m.Seen {
			m.Seen = true
			n++
		}
	}
	return n, nil
}

func (r *Messages) ListConversations(_ context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	r.mu.Lock()
	all := []models.Message{}
	for _, m := range r.byID {
		if m.FromUserID == userID || m.ToUserID == userID {
			all = append(all, *m)
		}
	}
	r.mu.Unlock()

	newestFirst(all)
	index := map[primitive.ObjectID]int{}
	out := []models.ConversationSummary{}
	for _, m := range all {
		other := m.FromUserID
		if other == userID {
			other = m.ToUserID
		}
		i, ok := index[other]
		if !ok {
			i = len(out)
			index[other] = i
			out = append(out, models.ConversationSummary{OtherUserID: other, LastMessage: m})
		}
		if m.ToUserID == userID && !m.Seen {
			out[i].UnreadCount++
		}
	}
	return out, nil
}

func (r *Messages) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.byID {
		if m.ToUserID == userID && !m.Seen {
			n++
		}
	}
	return n, nil
}

func (r *Messages) DeleteMessage(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID[id] == nil {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
