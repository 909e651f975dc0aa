package student

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Role = "student"

// Student is a learner account stored in the users collection.
type Student struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Firstname          string             `bson:"firstname" json:"firstname"`
	Lastname           string             `bson:"lastname" json:"lastname"`
	Email              string             `bson:"email" json:"email"`
	Password           string             `bson:"password,omitempty" json:"-"`
	Salt               string             `bson:"salt,omitempty" json:"-"`
	Role               string             `bson:"role" json:"role"`
	Institute          InstituteRef       `bson:"institute" json:"institute"`
	Academic           Academic           `bson:"academic" json:"academic"`
	About              About              `bson:"about" json:"about"`
	Mentor             MentorRef          `bson:"mentor" json:"mentor"`
	ResetPasswordToken string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetTokenExpiry   *time.Time         `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type InstituteRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
	Logo string             `bson:"logo,omitempty" json:"logo,omitempty"`
}

type Academic struct {
	Standard        string `bson:"standard,omitempty" json:"standard,omitempty"`
	CompetitiveExam string `bson:"competitiveExam,omitempty" json:"competitiveExam,omitempty"`
}

type About struct {
	Gender string `bson:"gender,omitempty" json:"gender,omitempty"`
}

// MentorRef is {_id: null} while the student is unallocated.
type MentorRef struct {
	ID *primitive.ObjectID `bson:"_id" json:"_id"`
}

func (s *Student) Allocated() bool {
	return s.Mentor.ID != nil
}
