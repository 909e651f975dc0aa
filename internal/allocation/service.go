// Package allocation moves students on and off mentor rosters while keeping
// student.mentor and mentor.students in agreement.
package allocation

import (
	"context"
	"fmt"
	"net/http"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/metrics"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"
	"MentorDesk/internal/student"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMentorNotFound     = apperror.NotFound("Mentor not found")
	ErrStudentNotFound    = apperror.NotFound("Student not found")
	ErrAlreadyAllocated   = apperror.Conflict("Student already allocated to a mentor")
	ErrAllocationFailed   = apperror.New(apperror.KindInternal, http.StatusInternalServerError, "Failed to allocate student")
	ErrDeallocationFailed = apperror.New(apperror.KindInternal, http.StatusInternalServerError, "Failed to deallocate student")
	ErrNoStudentIDs       = apperror.Validation("studentIds must be a non-empty array")
	ErrNotInstituteAdmin  = apperror.Forbidden("You are not an admin of this institute")
)

type Students interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*student.Student, error)
	AssignMentor(ctx context.Context, studentID, mentorID primitive.ObjectID) (bool, error)
	ClearMentor(ctx context.Context, studentID primitive.ObjectID) (bool, error)
}

type Mentors interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*mentor.Mentor, error)
	AddStudent(ctx context.Context, mentorID, studentID primitive.ObjectID) error
	PullStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error)
}

type Service struct {
	students    Students
	mentors     Mentors
	tx          store.Transactor
	metrics     *metrics.Metrics
	log         *zap.Logger
	concurrency int
}

func NewService(students Students, mentors Mentors, tx store.Transactor, m *metrics.Metrics, log *zap.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		students:    students,
		mentors:     mentors,
		tx:          tx,
		metrics:     m,
		log:         log.Named("allocation"),
		concurrency: concurrency,
	}
}

// Allocate assigns an unallocated student to a mentor. The caller must
// administer the institutes of both.
func (s *Service) Allocate(ctx context.Context, caller *principal.Principal, rawStudentID, rawMentorID string) error {
	studentID, err := store.ParseID(rawStudentID)
	if err != nil {
		return err
	}
	mentorID, err := store.ParseID(rawMentorID)
	if err != nil {
		return err
	}
	return s.allocate(ctx, caller, studentID, mentorID)
}

func administersMentor(caller *principal.Principal, m *mentor.Mentor) bool {
	if caller.IsSuperAdmin() {
		return true
	}
	return m.Institute != nil && caller.Administers(*m.Institute)
}

func (s *Service) allocate(ctx context.Context, caller *principal.Principal, studentID, mentorID primitive.ObjectID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.mentors.FindByID(ctx, mentorID)
		if err != nil {
			return apperror.Dependency("Failed to load mentor", err)
		}
		if m == nil {
			return ErrMentorNotFound
		}
		if !administersMentor(caller, m) {
			return ErrNotInstituteAdmin
		}
		st, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			return apperror.Dependency("Failed to load student", err)
		}
		if st == nil {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrStudentNotFound)
		}
		if !caller.Administers(st.Institute.ID) {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrNotInstituteAdmin)
		}
		if st.Allocated() {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrAlreadyAllocated)
		}

		changed, err := s.students.AssignMentor(ctx, studentID, mentorID)
		if err != nil {
			return apperror.Dependency("Failed to allocate student", err)
		}
		if !changed {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrAllocationFailed)
		}
		if err := s.mentors.AddStudent(ctx, mentorID, studentID); err != nil {
			return apperror.Dependency("Failed to update mentor roster", err)
		}
		return nil
	})
	s.observe("allocate", err)
	return err
}

// Deallocate marks a student unallocated and removes it from every roster.
func (s *Service) Deallocate(ctx context.Context, caller *principal.Principal, rawStudentID string) error {
	studentID, err := store.ParseID(rawStudentID)
	if err != nil {
		return err
	}
	return s.deallocate(ctx, caller, studentID)
}

func (s *Service) deallocate(ctx context.Context, caller *principal.Principal, studentID primitive.ObjectID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		st, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			return apperror.Dependency("Failed to load student", err)
		}
		if st != nil && !caller.Administers(st.Institute.ID) {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrNotInstituteAdmin)
		}
		changed, err := s.students.ClearMentor(ctx, studentID)
		if err != nil {
			return apperror.Dependency("Failed to deallocate student", err)
		}
		if !changed {
			return fmt.Errorf("student %s: %w", studentID.Hex(), ErrDeallocationFailed)
		}
		if _, err := s.mentors.PullStudent(ctx, studentID); err != nil {
			return apperror.Dependency("Failed to update mentor roster", err)
		}
		return nil
	})
	s.observe("deallocate", err)
	return err
}

func (s *Service) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperror.KindOf(err))
		if k := apperror.KindOf(err); k == apperror.KindDependency || k == apperror.KindInternal {
			s.log.Error(op+" failed", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.Allocations.WithLabelValues(op, outcome).Inc()
	}
}

const (
	ItemAllocated   = "allocated"
	ItemDeallocated = "deallocated"
	ItemError       = "error"
)

// ItemResult is the outcome for one student id of a bulk request.
type ItemResult struct {
	StudentID string        `json:"studentId"`
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Kind      apperror.Kind `json:"kind,omitempty"`

	err error
}

// BulkResult holds per-id outcomes in input order.
type BulkResult struct {
	Items     []ItemResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// HTTPStatus is 200 when every id succeeded, 207 when some did, and the status
// of the first failure when none did.
func (r *BulkResult) HTTPStatus() int {
	switch {
	case r.Failed == 0:
		return http.StatusOK
	case r.Succeeded > 0:
		return http.StatusMultiStatus
	}
	for _, it := range r.Items {
		if it.err != nil {
			return apperror.StatusOf(it.err)
		}
	}
	return http.StatusInternalServerError
}

// FirstError returns the failure of the earliest failed id, if any.
func (r *BulkResult) FirstError() error {
	for _, it := range r.Items {
		if it.err != nil {
			return it.err
		}
	}
	return nil
}

// AllocateMany validates every id before touching anything, then allocates
// each student independently. One failure never stops the others.
func (s *Service) AllocateMany(ctx context.Context, caller *principal.Principal, rawMentorID string, rawStudentIDs []string) (*BulkResult, error) {
	mentorID, err := store.ParseID(rawMentorID)
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(rawStudentIDs)
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
	if !administersMentor(caller, m) {
		return nil, ErrNotInstituteAdmin
	}
	return s.fanOut(ctx, ids, ItemAllocated, func(ctx context.Context, id primitive.ObjectID) error {
		return s.allocate(ctx, caller, id, mentorID)
	}), nil
}

func (s *Service) DeallocateMany(ctx context.Context, caller *principal.Principal, rawStudentIDs []string) (*BulkResult, error) {
	ids, err := parseIDs(rawStudentIDs)
	if err != nil {
		return nil, err
	}
	return s.fanOut(ctx, ids, ItemDeallocated, func(ctx context.Context, id primitive.ObjectID) error {
		return s.deallocate(ctx, caller, id)
	}), nil
}

// parseIDs keeps the first occurrence of each id so one request never races
// itself on the same student.
func parseIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, ErrNoStudentIDs
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	var bad []string
	for _, r := range raw {
		id, err := store.ParseID(r)
		if err != nil {
			bad = append(bad, r)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("%w: invalid student ids %q", store.ErrInvalidID, bad)
	}
	return ids, nil
}

func (s *Service) fanOut(ctx context.Context, ids []primitive.ObjectID, okStatus string, fn func(context.Context, primitive.ObjectID) error) *BulkResult {
	items := make([]ItemResult, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			item := ItemResult{StudentID: id.Hex(), Status: okStatus}
			if err := fn(ctx, id); err != nil {
				item.Status = ItemError
				item.Message = apperror.PublicMessage(err)
				item.Kind = apperror.KindOf(err)
				item.err = err
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	res := &BulkResult{Items: items}
	for _, it := range items {
		if it.err != nil {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res
}
