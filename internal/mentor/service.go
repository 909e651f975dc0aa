package mentor

import (
	"context"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/store"
	"MentorDesk/internal/student"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoMentors      = apperror.NotFound("No mentors found")
	ErrMentorNotFound = apperror.NotFound("Mentor not found")
	ErrInvalidStatus  = apperror.Validation("Status must be Verified or NotVerified")
)

type Store interface {
	FindAll(ctx context.Context) ([]Mentor, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Mentor, error)
	FindRoster(ctx context.Context, id primitive.ObjectID) (*Roster, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
}

type UnallocatedFinder interface {
	FindUnallocated(ctx context.Context) ([]student.Student, error)
}

type MentorService struct {
	repo     Store
	students UnallocatedFinder
}

func NewMentorService(repo Store, students UnallocatedFinder) *MentorService {
	return &MentorService{repo: repo, students: students}
}

func (s *MentorService) List(ctx context.Context) ([]Mentor, error) {
	mentors, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Dependency("Failed to load mentors", err)
	}
	if len(mentors) == 0 {
		return nil, ErrNoMentors
	}
	return mentors, nil
}

func (s *MentorService) Get(ctx context.Context, rawID string) (*Mentor, error) {
	id, err := store.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load mentor", err)
	}
	if m == nil {
		return nil, ErrMentorNotFound
	}
	return m, nil
}

func (s *MentorService) Verify(ctx context.Context, rawID, status string) error {
	id, err := store.ParseID(rawID)
	if err != nil {
		return err
	}
	if status != StatusVerified && status != StatusNotVerified {
		return ErrInvalidStatus
	}
	found, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return apperror.Dependency("Failed to update mentor", err)
	}
	if !found {
		return ErrMentorNotFound
	}
	return nil
}

// Roster lists the mentor's students first, then every unallocated student.
func (s *MentorService) Roster(ctx context.Context, rawID string) (*Roster, error) {
	id, err := store.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	roster, err := s.repo.FindRoster(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load mentor", err)
	}
	if roster == nil {
		return nil, ErrMentorNotFound
	}
	unallocated, err := s.students.FindUnallocated(ctx)
	if err != nil {
		return nil, apperror.Dependency("Failed to load students", err)
	}
	if roster.Students == nil {
		roster.Students = []student.Student{}
	}
	roster.Students = append(roster.Students, unallocated...)
	return roster, nil
}
