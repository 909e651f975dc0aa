package mentor

import (
	"time"

	"MentorDesk/internal/student"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	Role = "teacher"

	StatusVerified    = "Verified"
	StatusNotVerified = "NotVerified"
)

type Mentor struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Firstname          string              `bson:"firstname" json:"firstname"`
	Lastname           string              `bson:"lastname" json:"lastname"`
	Email              string              `bson:"email" json:"email"`
	Password           string              `bson:"password,omitempty" json:"-"`
	Salt               string              `bson:"salt,omitempty" json:"-"`
	Role               string              `bson:"role" json:"role"`
	Institute          *primitive.ObjectID `bson:"institute,omitempty" json:"institute,omitempty"`
	About              About               `bson:"about" json:"about"`
	Preference         Preference          `bson:"preference" json:"preference"`
	Status             string              `bson:"status" json:"status"`
	Students           []StudentRef        `bson:"students" json:"students"`
	ResetPasswordToken string              `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetTokenExpiry   *time.Time          `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type About struct {
	Gender string `bson:"gender,omitempty" json:"gender,omitempty"`
}

// Preference narrows which students a mentor is offered. An empty list puts
// no constraint on that dimension.
type Preference struct {
	Standard        []string `bson:"standard" json:"standard"`
	CompetitiveExam []string `bson:"competitiveExam" json:"competitiveExam"`
}

type StudentRef struct {
	ID primitive.ObjectID `bson:"_id" json:"_id"`
}

// Roster is a mentor with its allocated students resolved, followed by every
// unallocated student.
type Roster struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Firstname string             `bson:"firstname" json:"firstname"`
	Lastname  string             `bson:"lastname" json:"lastname"`
	Email     string             `bson:"email" json:"email"`
	Students  []student.Student  `bson:"students" json:"students"`
}

type VerifyRequest struct {
	Status string `json:"status" validate:"required,oneof=Verified NotVerified"`
}
