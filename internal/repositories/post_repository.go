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

// PostQuery selects posts for a paginated listing. A nil Authors slice matches every author.
type PostQuery struct {
	Authors []primitive.ObjectID
	Hashtag string
}

func (q PostQuery) filter() bson.M {
	filter := bson.M{}
	if q.Authors != nil {
		filter["user"] = bson.M{"$in": q.Authors}
	}
	if q.Hashtag != "" {
		filter["hashtags"] = q.Hashtag
	}
	return filter
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListPosts(ctx context.Context, query PostQuery, skip, limit int64) ([]models.Post, int64, error)
	CountUserPosts(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UpdatePostContent(ctx context.Context, id primitive.ObjectID, content, postType string, hashtags []string) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	DeleteUserPosts(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPosts returns one page of matching posts, newest first, and the total match count
func (r *MongoPostRepository) ListPosts(ctx context.Context, query PostQuery, skip, limit int64) ([]models.Post, int64, error) {
	filter := query.filter()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *MongoPostRepository) CountUserPosts(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user": userID})
}

func (r *MongoPostRepository) UpdatePostContent(ctx context.Context, id primitive.ObjectID, content, postType string, hashtags []string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{
		"content":    content,
		"post_type":  postType,
		"hashtags":   hashtags,
		"updated_at": time.Now(),
	}}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *MongoPostRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserPosts removes every post by userID and returns the removed ids
func (r *MongoPostRepository) DeleteUserPosts(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddLike adds userID to the like set if absent. The bool reports whether this call changed the set;
// when it did not, the returned post is nil and the caller should re-read.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	filter := bson.M{"_id": postID, "likes": bson.M{"$ne": userID}}
	return r.likeUpdate(ctx, filter, bson.M{"$push": bson.M{"likes": userID}})
}

// RemoveLike pulls userID from the like set if present
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	filter := bson.M{"_id": postID, "likes": userID}
	return r.likeUpdate(ctx, filter, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) likeUpdate(ctx context.Context, filter, update bson.M) (*models.Post, bool, error) {
	post, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return post, true, nil
}

func (r *MongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	filter := bson.M{"_id": postID, "comments._id": commentID}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
