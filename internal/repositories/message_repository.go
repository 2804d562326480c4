package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/pingup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	MarkSeen(ctx context.Context, fromID, toID primitive.ObjectID) (int64, error)
	ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *MongoMessageRepository) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListConversation returns one page of the two-way history, newest first
func (r *MongoMessageRepository) ListConversation(ctx context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from_user": userID, "to_user": otherID},
		bson.M{"from_user": otherID, "to_user": userID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkSeen flags every unseen message from fromID to toID as seen
func (r *MongoMessageRepository) MarkSeen(ctx context.Context, fromID, toID primitive.ObjectID) (int64, error) {
	filter := bson.M{"from_user": fromID, "to_user": toID, "seen": false}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"seen": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListConversations groups the user's messages by counterparty. Each row carries the newest message
// (ties broken by _id) and the number of unseen messages addressed to the user.
func (r *MongoMessageRepository) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"from_user": userID},
			bson.M{"to_user": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$from_user", userID}},
				"$to_user",
				"$from_user",
			}},
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$to_user", userID}},
					bson.M{"$eq": bson.A{"$seen", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "last_message.created_at", Value: -1},
			{Key: "last_message._id", Value: -1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []models.ConversationSummary{}
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *MongoMessageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"to_user": userID, "seen": false})
}

func (r *MongoMessageRepository) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
