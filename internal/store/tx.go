// Package store holds persistence helpers shared by the domain repositories.
package store

import (
	"context"
	"fmt"
	"strings"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrInvalidID = apperror.Validation("Invalid id")

// ParseID parses a hex object id from a path or body parameter.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// Transactor runs fn so that its writes commit or roll back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTransactor uses a multi-document transaction when the deployment
// supports it (replica set or sharded cluster). Otherwise fn runs directly.
type MongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, cfg *config.AppConfig) *MongoTransactor {
	return &MongoTransactor{client: client, enabled: cfg.MongoTransactions}
}

func (t *MongoTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || t.client == nil {
		return fn(ctx)
	}
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Direct runs fn without a transaction.
type Direct struct{}

func (Direct) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
