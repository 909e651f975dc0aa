package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"MentorDesk/internal/credential"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Account is the credential-bearing part of admin, mentor and student
// documents.
type Account struct {
	ID       primitive.ObjectID `bson:"_id"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Salt     string             `bson:"salt"`
}

// Accounts implements the reset-token bookkeeping on any collection whose
// documents carry password, salt, resetPasswordToken and resetTokenExpiry.
// Repositories embed it.
type Accounts struct {
	collection *mongo.Collection
}

func NewAccounts(collection *mongo.Collection) Accounts {
	return Accounts{collection: collection}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a Accounts) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := a.collection.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

// EmailExists reports whether an account with email is already stored.
func (a Accounts) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := a.collection.CountDocuments(ctx, bson.M{"email": NormalizeEmail(email)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetResetToken stores the hash and expiry of tok together.
func (a Accounts) SetResetToken(ctx context.Context, id primitive.ObjectID, tok credential.ResetToken) error {
	_, err := a.collection.UpdateByID(ctx, id, setTokenUpdate(tok, time.Now()))
	return err
}

func setTokenUpdate(tok credential.ResetToken, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"resetPasswordToken": tok.Hash,
		"resetTokenExpiry":   tok.ExpiresAt,
		"updatedAt":          now,
	}}
}

// ClearResetToken removes both token fields.
func (a Accounts) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := a.collection.UpdateByID(ctx, id, clearTokenUpdate())
	return err
}

func clearTokenUpdate() bson.M {
	return bson.M{"$unset": bson.M{
		"resetPasswordToken": "",
		"resetTokenExpiry":   "",
	}}
}

// ConsumeResetToken sets the new secret on the account holding an unexpired
// tokenHash and drops the token in the same write, so a token works once.
func (a Accounts) ConsumeResetToken(ctx context.Context, tokenHash string, secret credential.Secret, now time.Time) (bool, error) {
	filter, update := consumeQuery(tokenHash, secret, now)
	res, err := a.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func consumeQuery(tokenHash string, secret credential.Secret, now time.Time) (filter, update bson.M) {
	filter = bson.M{
		"resetPasswordToken": tokenHash,
		"resetTokenExpiry":   bson.M{"$gt": now},
	}
	update = bson.M{
		"$set": bson.M{
			"password":  secret.Hash,
			"salt":      secret.Salt,
			"updatedAt": now,
		},
		"$unset": bson.M{
			"resetPasswordToken": "",
			"resetTokenExpiry":   "",
		},
	}
	return filter, update
}
