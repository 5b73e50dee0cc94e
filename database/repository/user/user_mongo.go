package userRepo

import (
	"context"
	"errors"
	"fmt"

	"staybook/database"
	"staybook/database/repository"
	"staybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo() UserRepository {
	return &MongoUserRepo{coll: database.Database().Collection("users")}
}

// GetByID projects only the fields the engine needs.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"id": 1, "role": 1})
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

func (r *MongoUserRepo) Save(ctx context.Context, user models.User) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"id": user.ID, "role": user.Role}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": user.ID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}
