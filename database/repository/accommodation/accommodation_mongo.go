package accommodationRepo

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

// MongoAccommodationRepo reads the catalog's accommodations collection.
type MongoAccommodationRepo struct {
	coll *mongo.Collection
}

func NewMongoAccommodationRepo() AccommodationRepository {
	return &MongoAccommodationRepo{coll: database.Database().Collection("accommodations")}
}

func (r *MongoAccommodationRepo) GetByID(ctx context.Context, id string) (*models.Accommodation, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var acc models.Accommodation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("accommodation %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching accommodation %s: %w", id, err)
	}
	return &acc, nil
}

// Save upserts by id. The catalog owns these records; this exists for seeding.
func (r *MongoAccommodationRepo) Save(ctx context.Context, accommodation models.Accommodation) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx, bson.M{"id": accommodation.ID}, accommodation, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving accommodation %s: %w", accommodation.ID, err)
	}
	return nil
}
