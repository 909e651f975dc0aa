package auth

import (
	"context"
	"errors"
	"time"

	"MentorDesk/internal/config"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateEmail = errors.New("admin email already exists")

// activityLogCap bounds the embedded activity log.
const activityLogCap = 100

type AdminRepository struct {
	store.Accounts
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	coll := db.Collection(config.AdminsCollection)
	return &AdminRepository{Accounts: store.NewAccounts(coll), collection: coll}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.findOne(ctx, bson.M{"email": store.NormalizeEmail(email)})
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Exists reports whether an admin with id is stored.
func (r *AdminRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M) (*Admin, error) {
	var admin Admin
	err := r.collection.FindOne(ctx, filter).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Insert(ctx context.Context, admin *Admin) error {
	res, err := r.collection.InsertOne(ctx, admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	admin.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// RecordLogin stamps lastLogin and appends to the activity log, keeping only
// the newest entries.
func (r *AdminRepository) RecordLogin(ctx context.Context, id primitive.ObjectID, entry Activity) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"lastLogin": entry.Timestamp, "updatedAt": time.Now()},
		"$push": bson.M{"activityLog": bson.M{
			"$each":  bson.A{entry},
			"$slice": -activityLogCap,
		}},
	})
	return err
}

func (r *AdminRepository) AddInstitute(ctx context.Context, adminID, instituteID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, adminID, bson.M{
		"$addToSet": bson.M{"institutes": instituteID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

// Promote makes an existing admin a superadmin with full permissions.
func (r *AdminRepository) Promote(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":        principal.RoleSuperAdmin,
		"permissions": DefaultPermissions(principal.RoleSuperAdmin),
		"status":      StatusActive,
		"updatedAt":   time.Now(),
	}})
	return err
}
