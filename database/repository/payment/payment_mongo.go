package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo() (PaymentRepository, error) {
	repo := &MongoPaymentRepo{coll: database.Database().Collection("payments")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return repo, nil
}

func (repo *MongoPaymentRepo) Insert(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("payment for reservation %s: %w", payment.ReservationID, repository.ErrConflict)
		}
		return fmt.Errorf("insert payment failed: %w", err)
	}
	return nil
}

func (repo *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M, label string) (*models.Payment, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var payment models.Payment
	if err := repo.coll.FindOne(ctx, filter).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("payment %s: %w", label, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching payment %s: %w", label, err)
	}
	return &payment, nil
}

func (repo *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"id": id}, id)
}

func (repo *MongoPaymentRepo) GetByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"reservation_id": reservationID}, "for reservation "+reservationID)
}

func (repo *MongoPaymentRepo) ListAll(ctx context.Context) ([]models.Payment, error) {
	return repo.find(ctx, bson.M{})
}

func (repo *MongoPaymentRepo) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return repo.find(ctx, bson.M{"status": status})
}

func (repo *MongoPaymentRepo) find(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, nil
}

func (repo *MongoPaymentRepo) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, reference string, at time.Time) (*models.Payment, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	set := bson.M{"status": to, "updated_at": at}
	if reference != "" {
		set["transaction_reference"] = reference
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Payment
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update payment %s failed: %w", id, err)
	}

	// Distinguish a missing payment from one that moved on.
	count, cerr := repo.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("update payment %s failed: %w", id, cerr)
	}
	if count == 0 {
		return nil, fmt.Errorf("payment %s: %w", id, repository.ErrNotFound)
	}
	return nil, fmt.Errorf("payment %s is no longer %s: %w", id, from, repository.ErrStaleWrite)
}

func (repo *MongoPaymentRepo) DeleteByReservation(ctx context.Context, reservationID string) (bool, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"reservation_id": reservationID})
	if err != nil {
		return false, fmt.Errorf("delete payment for reservation %s failed: %w", reservationID, err)
	}
	return res.DeletedCount > 0, nil
}

func (repo *MongoPaymentRepo) SumCompleted(ctx context.Context) (int64, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error summing payments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("error decoding payment sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (repo *MongoPaymentRepo) CountByStatus(ctx context.Context) (map[models.PaymentStatus]int64, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error counting payments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.PaymentStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding payment counts: %w", err)
	}
	counts := make(map[models.PaymentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
