package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Client) *ProfileRepository {
	return &ProfileRepository{
		collection: config.GetCollection(db, "profiles"),
	}
}

// FindByUserID fetches a profile, returning mongo.ErrNoDocuments when absent.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Exists reports whether a profile exists for the given user.
func (r *ProfileRepository) Exists(ctx context.Context, userID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies a partial $set to a profile.
func (r *ProfileRepository) UpdateFields(ctx context.Context, userID string, fields bson.M) (*mongo.UpdateResult, error) {
	return r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": fields},
	)
}
