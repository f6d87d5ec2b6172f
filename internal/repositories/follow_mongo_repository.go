package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/nano-midea/followers/internal/models"
)

// MongoFollowRepository implements FollowRepository on a MongoDB collection.
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository over the "followers" collection.
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("followers")}
}

// EnsureIndexes creates the unique pair index and the single-field lookup indexes.
func (r *MongoFollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "target_userid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_followers_pair"),
		},
		{Keys: bson.D{{Key: "target_userid", Value: 1}}},
		{
			Keys:    bson.D{{Key: "follow_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *MongoFollowRepository) FindFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.collection.FindOne(ctx, pairFilter(followerID, followingID)).Decode(&follow)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFollowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateFollow
		}
		return err
	}
	return nil
}

func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	err := r.collection.FindOneAndDelete(ctx, pairFilter(followerID, followingID)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"target_userid": userID})
}

func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoFollowRepository) find(ctx context.Context, filter bson.M) ([]models.Follow, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	follows := []models.Follow{}
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

func pairFilter(followerID, followingID string) bson.M {
	return bson.M{"user_id": followerID, "target_userid": followingID}
}
