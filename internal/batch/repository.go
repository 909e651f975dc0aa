package batch

import (
	"context"
	"errors"
	"time"

	"MentorDesk/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateShareCode is returned when the unique shareCode index rejects
// a write.
var ErrDuplicateShareCode = errors.New("share code already in use")

type BatchRepository struct {
	collection *mongo.Collection
}

func NewBatchRepository(db *mongo.Database) *BatchRepository {
	return &BatchRepository{collection: db.Collection(config.BatchesCollection)}
}

func (r *BatchRepository) Insert(ctx context.Context, b *Batch) error {
	res, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateShareCode
		}
		return err
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BatchRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Batch, error) {
	var b Batch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Find returns matching batches, newest first.
func (r *BatchRepository) Find(ctx context.Context, filter bson.M) ([]Batch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	batches := []Batch{}
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// Update applies set and returns the updated batch, nil when absent.
func (r *BatchRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Batch, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b Batch
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateShareCode
		}
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (r *BatchRepository) AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (*Batch, error) {
	return r.modify(ctx, id, bson.M{
		"$addToSet": bson.M{"students": bson.M{"$each": studentIDs}},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *BatchRepository) AddClass(ctx context.Context, id primitive.ObjectID, class ClassRecord) (*Batch, error) {
	return r.modify(ctx, id, bson.M{
		"$push": bson.M{"classes": class},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *BatchRepository) modify(ctx context.Context, id primitive.ObjectID, update bson.M) (*Batch, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b Batch
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
