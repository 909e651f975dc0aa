package institute

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Institute struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name          string               `bson:"name" json:"name"`
	Logo          string               `bson:"logo,omitempty" json:"logo,omitempty"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	Address       string               `bson:"address,omitempty" json:"address,omitempty"`
	ContactNumber string               `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Email         string               `bson:"email,omitempty" json:"email,omitempty"`
	Website       string               `bson:"website,omitempty" json:"website,omitempty"`
	Subjects      []string             `bson:"subjects" json:"subjects"`
	Standards     []string             `bson:"standards" json:"standards"`
	Admins        []primitive.ObjectID `bson:"admins" json:"admins"`
	Batches       []primitive.ObjectID `bson:"batches" json:"batches"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name          string   `json:"name" validate:"required"`
	Logo          string   `json:"logo"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	ContactNumber string   `json:"contactNumber"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Website       string   `json:"website"`
	Subjects      []string `json:"subjects"`
	Standards     []string `json:"standards"`
	Admins        []string `json:"admins"`
}

// UpdateRequest only changes the fields that are present.
type UpdateRequest struct {
	Name          *string   `json:"name"`
	Logo          *string   `json:"logo"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	ContactNumber *string   `json:"contactNumber"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	Website       *string   `json:"website"`
	Subjects      *[]string `json:"subjects"`
	Standards     *[]string `json:"standards"`
}
