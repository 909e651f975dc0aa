package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Collection names.
const (
	AdminsCollection        = "admins"
	MentorsCollection       = "mentors"
	StudentsCollection      = "users"
	InstitutesCollection    = "institutes"
	BatchesCollection       = "batches"
	NotificationsCollection = "notifications"
)

func NewMongoClient(lc fx.Lifecycle, cfg *AppConfig, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	db := client.Database(cfg.MongoDB)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureIndexes(ctx, db, log)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("closing MongoDB connection")
			return client.Disconnect(ctx)
		},
	})
	return client, db, nil
}

// EnsureIndexes creates the unique keys the services rely on: account emails
// and batch share codes.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	uniqueEmail := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	resetToken := mongo.IndexModel{
		Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	for _, name := range []string{AdminsCollection, MentorsCollection, StudentsCollection} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{uniqueEmail, resetToken}); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}

	_, err := db.Collection(BatchesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shareCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create share code index: %w", err)
	}

	_, err = db.Collection(StudentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "mentor._id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create mentor index: %w", err)
	}

	log.Info("indexes ensured")
	return nil
}
