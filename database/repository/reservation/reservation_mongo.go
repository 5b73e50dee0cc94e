package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/database/repository"
	"staybook/models"
	"staybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// night claims one accommodation-night for an active reservation. The unique
// index on (accommodation_id, night) is the storage-level exclusion constraint.
type night struct {
	AccommodationID string    `bson:"accommodation_id"`
	Night           time.Time `bson:"night"`
	ReservationID   string    `bson:"reservation_id"`
}

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	reservationColl *mongo.Collection
	nightColl       *mongo.Collection
}

func NewMongoReservationRepo() (ReservationRepository, error) {
	db := database.Database()
	repo := &MongoReservationRepo{
		reservationColl: db.Collection("reservations"),
		nightColl:       db.Collection("reservation_nights"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reservationIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "accommodation_id", Value: 1}, {Key: "status", Value: 1}, {Key: "check_in_date", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "check_out_date", Value: 1}}},
	}
	if _, err := repo.reservationColl.Indexes().CreateMany(ctx, reservationIdx); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}

	nightIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "accommodation_id", Value: 1}, {Key: "night", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}},
	}
	if _, err := repo.nightColl.Indexes().CreateMany(ctx, nightIdx); err != nil {
		return fmt.Errorf("failed to create reservation night indexes: %w", err)
	}
	return nil
}

// withTransaction runs fn inside a multi-document transaction.
func (repo *MongoReservationRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.reservationColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	return translateWriteError(err)
}

// translateWriteError maps duplicate nights and transaction write conflicts
// to repository.ErrConflict.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}

func nightsOf(r *models.Reservation) []interface{} {
	days := utils.DatesInRange(r.CheckInDate, r.CheckOutDate)
	docs := make([]interface{}, 0, len(days))
	for _, d := range days {
		docs = append(docs, night{AccommodationID: r.AccommodationID, Night: d, ReservationID: r.ID})
	}
	return docs
}

func (repo *MongoReservationRepo) Insert(ctx context.Context, reservation *models.Reservation) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if reservation.Status.Holds() {
			if _, err := repo.nightColl.InsertMany(sc, nightsOf(reservation)); err != nil {
				return err
			}
		}
		if _, err := repo.reservationColl.InsertOne(sc, reservation); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert reservation %s failed: %w", reservation.ID, err)
	}
	return nil
}

// Update replaces the reservation and re-claims its nights: released when it
// no longer holds, re-inserted for the new range when it does.
func (repo *MongoReservationRepo) Update(ctx context.Context, reservation *models.Reservation) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := repo.nightColl.DeleteMany(sc, bson.M{"reservation_id": reservation.ID}); err != nil {
			return err
		}
		if reservation.Status.Holds() {
			if _, err := repo.nightColl.InsertMany(sc, nightsOf(reservation)); err != nil {
				return err
			}
		}
		res, err := repo.reservationColl.ReplaceOne(sc, bson.M{"id": reservation.ID}, reservation)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update reservation %s failed: %w", reservation.ID, err)
	}
	return nil
}

func (repo *MongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var reservation models.Reservation
	if err := repo.reservationColl.FindOne(ctx, bson.M{"id": id}).Decode(&reservation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reservation %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching reservation %s: %w", id, err)
	}
	return &reservation, nil
}

func (repo *MongoReservationRepo) FindOverlapping(ctx context.Context, accommodationID string, checkIn, checkOut time.Time, excludeID string) ([]models.Reservation, error) {
	filter := bson.M{
		"accommodation_id": accommodationID,
		"status":           bson.M{"$in": activeStatuses},
		"check_in_date":    bson.M{"$lt": checkOut},
		"check_out_date":   bson.M{"$gt": checkIn},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return repo.find(ctx, filter)
}

func (repo *MongoReservationRepo) List(ctx context.Context, f Filter) ([]models.Reservation, error) {
	filter := bson.M{}
	if f.AccommodationID != "" {
		filter["accommodation_id"] = f.AccommodationID
	}
	if f.GuestID != "" {
		filter["guest_id"] = f.GuestID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CheckOutBy != nil {
		filter["check_out_date"] = bson.M{"$lte": *f.CheckOutBy}
	}
	return repo.find(ctx, filter)
}

func (repo *MongoReservationRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := repo.nightColl.DeleteMany(sc, bson.M{"reservation_id": id}); err != nil {
			return err
		}
		res, err := repo.reservationColl.DeleteOne(sc, bson.M{"id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete reservation %s failed: %w", id, err)
	}
	return nil
}

func (repo *MongoReservationRepo) find(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "check_in_date", Value: 1}})
	cursor, err := repo.reservationColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []models.Reservation{}
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return reservations, nil
}
