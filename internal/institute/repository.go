package institute

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

type InstituteRepository struct {
	collection *mongo.Collection
}

func NewInstituteRepository(db *mongo.Database) *InstituteRepository {
	return &InstituteRepository{collection: db.Collection(config.InstitutesCollection)}
}

func (r *InstituteRepository) Insert(ctx context.Context, inst *Institute) error {
	res, err := r.collection.InsertOne(ctx, inst)
	if err != nil {
		return err
	}
	inst.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *InstituteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Institute, error) {
	var inst Institute
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&inst)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstituteRepository) FindByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]Institute, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"admins": adminID}, opts)
	if err != nil {
		return nil, err
	}
	institutes := []Institute{}
	if err := cursor.All(ctx, &institutes); err != nil {
		return nil, err
	}
	return institutes, nil
}

// Update applies set and returns the updated document, nil when absent.
func (r *InstituteRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Institute, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var inst Institute
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&inst)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstituteRepository) AddBatch(ctx context.Context, id, batchID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"batches": batchID}})
	return err
}

func (r *InstituteRepository) PullBatch(ctx context.Context, id, batchID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$pull": bson.M{"batches": batchID}})
	return err
}
