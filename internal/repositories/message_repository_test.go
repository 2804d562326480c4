package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoMessageRepository_ListConversations(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes summaries", func(mt *mtest.T) {
		repo := &MongoMessageRepository{collection: mt.Coll}
		me, other := primitive.NewObjectID(), primitive.NewObjectID()
		msgID := primitive.NewObjectID()
		sent := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pingup.messages", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: other},
			{Key: "last_message", Value: bson.D{
				{Key: "_id", Value: msgID},
				{Key: "from_user", Value: other},
				{Key: "to_user", Value: me},
				{Key: "text", Value: "hi"},
				{Key: "seen", Value: false},
				{Key: "created_at", Value: sent},
			}},
			{Key: "unread_count", Value: 2},
		}))

		summaries, err := repo.ListConversations(context.Background(), me)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, other, summaries[0].OtherUserID)
		assert.Equal(t, msgID, summaries[0].LastMessage.ID)
		assert.Equal(t, "hi", summaries[0].LastMessage.Text)
		assert.Equal(t, 2, summaries[0].UnreadCount)
	})
}

func TestMongoMessageRepository_MarkSeen(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reports modified", func(mt *mtest.T) {
		repo := &MongoMessageRepository{collection: mt.Coll}
		mt.AddMockResponses(updateResponse(3, 3))

		n, err := repo.MarkSeen(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
