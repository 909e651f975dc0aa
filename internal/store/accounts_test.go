package store

import (
	"testing"
	"time"

	"MentorDesk/internal/credential"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConsumeQueryIsSingleUse(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	secret := credential.Secret{Hash: "digest", Salt: "salt"}

	filter, update := consumeQuery("tokhash", secret, now)

	assert.Equal(t, bson.M{
		"resetPasswordToken": "tokhash",
		"resetTokenExpiry":   bson.M{"$gt": now},
	}, filter)
	assert.Equal(t, bson.M{
		"$set": bson.M{
			"password":  "digest",
			"salt":      "salt",
			"updatedAt": now,
		},
		"$unset": bson.M{
			"resetPasswordToken": "",
			"resetTokenExpiry":   "",
		},
	}, update)
}

func TestTokenFieldsChangeTogether(t *testing.T) {
	now := time.Now()
	tok := credential.ResetToken{Plain: "plain", Hash: "hash", ExpiresAt: now.Add(time.Hour)}

	set := setTokenUpdate(tok, now)["$set"].(bson.M)
	assert.Equal(t, "hash", set["resetPasswordToken"])
	assert.Equal(t, tok.ExpiresAt, set["resetTokenExpiry"])
	for _, v := range set {
		assert.NotEqual(t, "plain", v, "plain token must never be stored")
	}

	assert.Equal(t, bson.M{"$unset": bson.M{"resetPasswordToken": "", "resetTokenExpiry": ""}}, clearTokenUpdate())
}
