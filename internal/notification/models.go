package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusFailed    = "failed"

	AudienceTeacher = "teacher"
	AudienceStudent = "student"
)

// Notification is an announcement mailed to the mentors and/or students of an
// institute once SendTime has passed.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Institute primitive.ObjectID `bson:"institute" json:"institute"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	SendTime  time.Time          `bson:"sendTime" json:"sendTime"`
	Roles     []string           `bson:"roles" json:"roles"`
	Status    string             `bson:"status" json:"status"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	SentTo    []string           `bson:"sentTo" json:"sentTo"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ScheduleRequest struct {
	Institute string    `json:"institute" validate:"required"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message" validate:"required"`
	SendTime  time.Time `json:"sendTime" validate:"required"`
	Roles     []string  `json:"roles"`
}
