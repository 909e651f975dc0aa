package batch

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusCompleted = "Completed"

	DefaultTimezone = "Asia/Kolkata"
)

// Class session outcomes.
const (
	ClassScheduled   = "Scheduled"
	ClassCompleted   = "Completed"
	ClassCancelled   = "Cancelled"
	ClassRescheduled = "Rescheduled"
)

type Schedule struct {
	Days      []string `bson:"days" json:"days" validate:"required,min=1"`
	StartTime string   `bson:"startTime" json:"startTime" validate:"required"`
	EndTime   string   `bson:"endTime" json:"endTime" validate:"required"`
	Timezone  string   `bson:"timezone" json:"timezone"`
}

type ClassRecord struct {
	ID               primitive.ObjectID   `bson:"_id" json:"_id"`
	Date             time.Time            `bson:"date" json:"date"`
	Duration         int                  `bson:"duration" json:"duration"`
	Status           string               `bson:"status" json:"status"`
	AttendedStudents []primitive.ObjectID `bson:"attendedStudents" json:"attendedStudents"`
}

// Report summarises the recorded classes. Durations are minutes, attendance
// and progress are whole percentages.
type Report struct {
	TotalClasses       int       `bson:"totalClasses" json:"totalClasses"`
	TotalDuration      int       `bson:"totalDuration" json:"totalDuration"`
	CompletedClasses   int       `bson:"completedClasses" json:"completedClasses"`
	CancelledClasses   int       `bson:"cancelledClasses" json:"cancelledClasses"`
	RescheduledClasses int       `bson:"rescheduledClasses" json:"rescheduledClasses"`
	PendingClasses     int       `bson:"pendingClasses" json:"pendingClasses"`
	TotalStudents      int       `bson:"totalStudents" json:"totalStudents"`
	AverageAttendance  int       `bson:"averageAttendance" json:"averageAttendance"`
	SyllabusProgress   int       `bson:"syllabusProgress" json:"syllabusProgress"`
	LastUpdated        time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

type Batch struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Institute primitive.ObjectID   `bson:"institute" json:"institute"`
	Standard  string               `bson:"standard" json:"standard"`
	Subjects  []string             `bson:"subjects" json:"subjects"`
	Mentor    primitive.ObjectID   `bson:"mentor" json:"mentor"`
	Students  []primitive.ObjectID `bson:"students" json:"students"`
	ShareCode string               `bson:"shareCode" json:"shareCode"`
	ShareLink string               `bson:"shareLink" json:"shareLink"`
	Schedule  Schedule             `bson:"schedule" json:"schedule"`
	Classes   []ClassRecord        `bson:"classes" json:"classes"`
	Report    Report               `bson:"batchReport" json:"batchReport"`
	Status    string               `bson:"status" json:"status"`
	StartDate time.Time            `bson:"startDate" json:"startDate"`
	EndDate   *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name      string     `json:"name" validate:"required"`
	Institute string     `json:"institute" validate:"required"`
	Standard  string     `json:"standard" validate:"required"`
	Subjects  []string   `json:"subjects" validate:"required,min=1"`
	Mentor    string     `json:"mentor" validate:"required"`
	Schedule  *Schedule  `json:"schedule" validate:"required"`
	StartDate *time.Time `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate"`
}

// UpdateRequest only changes the fields that are present.
type UpdateRequest struct {
	Name      *string    `json:"name"`
	Standard  *string    `json:"standard"`
	Subjects  *[]string  `json:"subjects"`
	Mentor    *string    `json:"mentor"`
	Schedule  *Schedule  `json:"schedule"`
	Status    *string    `json:"status" validate:"omitempty,oneof=Active Inactive Completed"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type EnrollRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1"`
}

type ClassRequest struct {
	Date             time.Time `json:"date" validate:"required"`
	Duration         int       `json:"duration" validate:"min=0"`
	Status           string    `json:"status" validate:"required,oneof=Scheduled Completed Cancelled Rescheduled"`
	AttendedStudents []string  `json:"attendedStudents"`
}

// Filter narrows GET /api/batch/all.
type Filter struct {
	Mentor    string `query:"mentor"`
	Institute string `query:"institute"`
}
