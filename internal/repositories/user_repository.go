package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/pingup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Edge names one of the three graph edge sets held on a user document
type Edge string

const (
	EdgeFollowers   Edge = "followers"
	EdgeFollowing   Edge = "following"
	EdgeConnections Edge = "connections"
)

// UserUpdate lists the profile fields to overwrite. Nil fields are left unchanged.
type UserUpdate struct {
	Email          *string
	Username       *string
	FullName       *string
	Bio            *string
	Location       *string
	ProfilePicture *string
	CoverPhoto     *string
}

func (u UserUpdate) toSet() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("email", u.Email)
	put("username", u.Username)
	put("full_name", u.FullName)
	put("bio", u.Bio)
	put("location", u.Location)
	put("profile_picture", u.ProfilePicture)
	put("cover_photo", u.CoverPhoto)
	return set
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error)
	UpdateUserByClerkID(ctx context.Context, clerkID string, update UserUpdate) (*models.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID primitive.ObjectID) (bool, error)
	SearchUsers(ctx context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error)
	GetSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error)
	AddEdge(ctx context.Context, userID primitive.ObjectID, edge Edge, otherID primitive.ObjectID) (bool, error)
	RemoveEdge(ctx context.Context, userID primitive.ObjectID, edge Edge, otherID primitive.ObjectID) (bool, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Connections == nil {
		user.Connections = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"clerk_id": clerkID})
}

func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) update(ctx context.Context, filter bson.M, update UserUpdate) (*models.User, error) {
	set := update.toSet()
	set["updated_at"] = time.Now()

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("update user: %w", ErrDuplicate)
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error) {
	return r.update(ctx, bson.M{"_id": id}, update)
}

func (r *MongoUserRepository) UpdateUserByClerkID(ctx context.Context, clerkID string, update UserUpdate) (*models.User, error) {
	return r.update(ctx, bson.M{"clerk_id": clerkID}, update)
}

func (r *MongoUserRepository) DeleteUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"clerk_id": clerkID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) UsernameTaken(ctx context.Context, username string, exceptID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"username": username, "_id": bson.M{"$ne": exceptID}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SearchUsers matches username or full name case-insensitively. The query is matched literally.
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"full_name": pattern},
		},
		"_id": bson.M{"$ne": exclude},
	}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

func (r *MongoUserRepository) GetSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$nin": exclude}}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

// AddEdge appends otherID to the edge set unless already present. It reports whether the set changed.
func (r *MongoUserRepository) AddEdge(ctx context.Context, userID primitive.ObjectID, edge Edge, otherID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": userID, string(edge): bson.M{"$ne": otherID}}
	update := bson.M{"$push": bson.M{string(edge): otherID}, "$set": bson.M{"updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveEdge pulls otherID from the edge set. It reports whether the set changed.
func (r *MongoUserRepository) RemoveEdge(ctx context.Context, userID primitive.ObjectID, edge Edge, otherID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": userID, string(edge): otherID}
	update := bson.M{"$pull": bson.M{string(edge): otherID}, "$set": bson.M{"updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
