package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/database/repository"
	"staybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCalendarRepo implements CalendarRepository using MongoDB.
type MongoCalendarRepo struct {
	coll *mongo.Collection
}

func NewMongoCalendarRepo() (CalendarRepository, error) {
	repo := &MongoCalendarRepo{coll: database.Database().Collection("availability_calendar")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes makes (accommodation_id, date) unique.
func (r *MongoCalendarRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "accommodation_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("failed to create calendar indexes: %w", err)
	}
	return nil
}

func (r *MongoCalendarRepo) Get(ctx context.Context, accommodationID string, date time.Time) (*models.AvailabilityEntry, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var entry models.AvailabilityEntry
	filter := bson.M{"accommodation_id": accommodationID, "date": date}
	if err := r.coll.FindOne(ctx, filter).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching calendar entry: %w", err)
	}
	return &entry, nil
}

func (r *MongoCalendarRepo) Upsert(ctx context.Context, entry models.AvailabilityEntry) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{"accommodation_id": entry.AccommodationID, "date": entry.Date}
	update := bson.M{
		"$set": bson.M{
			"available":  entry.Available,
			"reason":     entry.Reason,
			"updated_at": entry.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": entry.CreatedAt},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two first-time upserts of the same day race on the unique index;
		// the loser retries as a plain update.
		if mongo.IsDuplicateKeyError(err) {
			_, err = r.coll.UpdateOne(ctx, filter, update)
		}
		if err != nil {
			return fmt.Errorf("error upserting calendar entry: %w", err)
		}
	}
	return nil
}

func (r *MongoCalendarRepo) Delete(ctx context.Context, accommodationID string, date time.Time) (bool, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"accommodation_id": accommodationID, "date": date})
	if err != nil {
		return false, fmt.Errorf("error deleting calendar entry: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoCalendarRepo) ListRange(ctx context.Context, accommodationID string, from, to time.Time) ([]models.AvailabilityEntry, error) {
	filter := bson.M{
		"accommodation_id": accommodationID,
		"date":             bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter)
}

func (r *MongoCalendarRepo) ListByAccommodation(ctx context.Context, accommodationID string) ([]models.AvailabilityEntry, error) {
	return r.find(ctx, bson.M{"accommodation_id": accommodationID})
}

func (r *MongoCalendarRepo) find(ctx context.Context, filter bson.M) ([]models.AvailabilityEntry, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing calendar entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.AvailabilityEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding calendar entries: %w", err)
	}
	return entries, nil
}
