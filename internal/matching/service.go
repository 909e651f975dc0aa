// Package matching lists the unallocated students a mentor could take on.
package matching

import (
	"context"
	"strings"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/store"
	"MentorDesk/internal/student"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMentorNotFound = apperror.NotFound("Mentor not found")

type StudentFinder interface {
	Find(ctx context.Context, filter bson.M) ([]student.Student, error)
}

type MentorFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*mentor.Mentor, error)
}

type Service struct {
	students StudentFinder
	mentors  MentorFinder
}

func NewService(students StudentFinder, mentors MentorFinder) *Service {
	return &Service{students: students, mentors: mentors}
}

// Candidates returns the mentor's candidate students, ranked by GenderBuckets.
// With a query, exact matches win; the case-insensitive substring search only
// runs when nothing matches exactly.
func (s *Service) Candidates(ctx context.Context, rawMentorID, query string) ([]student.Student, error) {
	mentorID, err := store.ParseID(rawMentorID)
	if err != nil {
		return nil, err
	}
	m, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		return nil, apperror.Dependency("Failed to load mentor", err)
	}
	if m == nil {
		return nil, ErrMentorNotFound
	}

	base := BaseFilter(m.Preference)
	query = strings.TrimSpace(query)

	var found []student.Student
	if query == "" {
		found, err = s.students.Find(ctx, base)
	} else {
		found, err = s.students.Find(ctx, ExactFilter(base, query))
		if err == nil && len(found) == 0 {
			found, err = s.students.Find(ctx, FuzzyFilter(base, query))
		}
	}
	if err != nil {
		return nil, apperror.Dependency("Failed to search students", err)
	}
	return GenderBuckets(m.About.Gender, found), nil
}
