package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	ListActiveStories(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error)
	AddView(ctx context.Context, storyID primitive.ObjectID, view models.StoryView) (*models.Story, error)
	DeleteStory(ctx context.Context, id primitive.ObjectID) error
	DeleteExpiredStories(ctx context.Context, now time.Time) (int64, error)
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.Views == nil {
		story.Views = []models.StoryView{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

func (r *MongoStoryRepository) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&story); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &story, nil
}

// ListActiveStories returns unexpired stories by the given authors, newest first
func (r *MongoStoryRepository) ListActiveStories(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error) {
	filter := bson.M{
		"user":       bson.M{"$in": authors},
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddView appends the view unless the viewer is already recorded, so the first view wins.
// It returns the story as stored after the call.
func (r *MongoStoryRepository) AddView(ctx context.Context, storyID primitive.ObjectID, view models.StoryView) (*models.Story, error) {
	filter := bson.M{"_id": storyID, "views.user": bson.M{"$ne": view.UserID}}
	if _, err := r.collection.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"views": view}}); err != nil {
		return nil, err
	}
	return r.GetStoryByID(ctx, storyID)
}

func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoStoryRepository) DeleteExpiredStories(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
