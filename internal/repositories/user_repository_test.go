package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/anonto42/pingup/backend/internal/models"
)

func updateResponse(matched, modified int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

func TestMongoUserRepository_AddEdge(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("changed", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(updateResponse(1, 1))

		added, err := repo.AddEdge(context.Background(), primitive.NewObjectID(), EdgeFollowing, primitive.NewObjectID())
		require.NoError(t, err)
		assert.True(t, added)
	})

	mt.Run("already present", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(updateResponse(0, 0))

		added, err := repo.AddEdge(context.Background(), primitive.NewObjectID(), EdgeFollowers, primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, added)
	})
}

func TestMongoUserRepository_RemoveEdge(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removed", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(updateResponse(1, 1))

		removed, err := repo.RemoveEdge(context.Background(), primitive.NewObjectID(), EdgeConnections, primitive.NewObjectID())
		require.NoError(t, err)
		assert.True(t, removed)
	})

	mt.Run("absent", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(updateResponse(0, 0))

		removed, err := repo.RemoveEdge(context.Background(), primitive.NewObjectID(), EdgeConnections, primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestMongoUserRepository_CreateUserDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.CreateUser(context.Background(), &models.User{ClerkID: "user_1"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestMongoUserRepository_GetUserByClerkID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "pingup.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "clerk_id", Value: "user_abc"},
			{Key: "username", Value: "alice"},
		}))

		user, err := repo.GetUserByClerkID(context.Background(), "user_abc")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := &MongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pingup.users", mtest.FirstBatch))

		_, err := repo.GetUserByClerkID(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
