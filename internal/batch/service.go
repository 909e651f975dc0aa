// Package batch manages class groups: one mentor teaching a set of enrolled
// students on a weekly schedule.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrBatchNotFound        = apperror.NotFound("Batch not found")
	ErrNotAuthorized        = apperror.Forbidden("Not authorized to access this batch")
	ErrInstituteNotFound    = apperror.NotFound("Institute not found")
	ErrMentorNotFound       = apperror.NotFound("Mentor not found")
	ErrMentorNotInInstitute = apperror.Validation("Mentor does not belong to this institute")
	ErrStudentNotFound      = apperror.Validation("One or more students not found")
	ErrAttendeeNotEnrolled  = apperror.Validation("Attended student is not enrolled in this batch")
	ErrIncompleteSchedule   = apperror.Validation("Please provide complete schedule details")
)

// maxCodeAttempts bounds retries when a generated share code collides.
const maxCodeAttempts = 5

type Store interface {
	Insert(ctx context.Context, b *Batch) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Batch, error)
	Find(ctx context.Context, filter bson.M) ([]Batch, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Batch, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (*Batch, error)
	AddClass(ctx context.Context, id primitive.ObjectID, class ClassRecord) (*Batch, error)
}

type Institutes interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*institute.Institute, error)
	AddBatch(ctx context.Context, id, batchID primitive.ObjectID) error
	PullBatch(ctx context.Context, id, batchID primitive.ObjectID) error
}

type MentorFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*mentor.Mentor, error)
}

type StudentCounter interface {
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type BatchService struct {
	repo       Store
	institutes Institutes
	mentors    MentorFinder
	students   StudentCounter
	tx         store.Transactor
	linkBase   string
	log        *zap.Logger
	now        func() time.Time
}

func NewBatchService(repo Store, institutes Institutes, mentors MentorFinder, students StudentCounter, tx store.Transactor, cfg *config.AppConfig, log *zap.Logger) *BatchService {
	return &BatchService{
		repo:       repo,
		institutes: institutes,
		mentors:    mentors,
		students:   students,
		tx:         tx,
		linkBase:   cfg.ShareLinkBase,
		log:        log.Named("batch"),
		now:        time.Now,
	}
}

func (s *BatchService) Create(ctx context.Context, caller *principal.Principal, req CreateRequest) (*Batch, error) {
	instituteID, err := store.ParseID(req.Institute)
	if err != nil {
		return nil, err
	}
	mentorID, err := store.ParseID(req.Mentor)
	if err != nil {
		return nil, err
	}
	if req.Schedule == nil || len(req.Schedule.Days) == 0 || req.Schedule.StartTime == "" || req.Schedule.EndTime == "" {
		return nil, ErrIncompleteSchedule
	}
	if !caller.Administers(instituteID) {
		return nil, ErrNotAuthorized
	}
	if err := s.checkMentor(ctx, mentorID, instituteID); err != nil {
		return nil, err
	}

	schedule := *req.Schedule
	if schedule.Timezone == "" {
		schedule.Timezone = DefaultTimezone
	}
	now := s.now()
	b := &Batch{
		Name:      strings.TrimSpace(req.Name),
		Institute: instituteID,
		Standard:  req.Standard,
		Subjects:  req.Subjects,
		Mentor:    mentorID,
		Students:  []primitive.ObjectID{},
		Schedule:  schedule,
		Classes:   []ClassRecord{},
		Report:    Report{LastUpdated: now},
		Status:    StatusActive,
		StartDate: *req.StartDate,
		EndDate:   req.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inst, err := s.institutes.FindByID(ctx, instituteID)
		if err != nil {
			return apperror.Dependency("Failed to load institute", err)
		}
		if inst == nil {
			return ErrInstituteNotFound
		}
		if err := s.insertWithCode(ctx, b); err != nil {
			return err
		}
		if err := s.institutes.AddBatch(ctx, instituteID, b.ID); err != nil {
			return apperror.Dependency("Failed to link batch to institute", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("batch created", zap.Stringer("id", b.ID), zap.String("shareCode", b.ShareCode))
	return b, nil
}

// insertWithCode draws share codes until the unique index accepts one.
func (s *BatchService) insertWithCode(ctx context.Context, b *Batch) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewShareCode()
		if err != nil {
			return apperror.Internal(err)
		}
		b.ShareCode, b.ShareLink = code, ShareLink(s.linkBase, code)
		err = s.repo.Insert(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateShareCode) {
			return apperror.Dependency("Failed to create batch", err)
		}
	}
	return apperror.Internal(fmt.Errorf("no free share code after %d attempts", maxCodeAttempts))
}

func (s *BatchService) checkMentor(ctx context.Context, mentorID, instituteID primitive.ObjectID) error {
	m, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		return apperror.Dependency("Failed to load mentor", err)
	}
	if m == nil {
		return ErrMentorNotFound
	}
	if m.Institute != nil && *m.Institute != instituteID {
		return ErrMentorNotInInstitute
	}
	return nil
}

// List returns batches the caller can see, newest first.
func (s *BatchService) List(ctx context.Context, caller *principal.Principal, f Filter) ([]Batch, error) {
	filter := bson.M{}
	if f.Mentor != "" {
		id, err := store.ParseID(f.Mentor)
		if err != nil {
			return nil, err
		}
		filter["mentor"] = id
	}
	switch {
	case f.Institute != "":
		id, err := store.ParseID(f.Institute)
		if err != nil {
			return nil, err
		}
		if !caller.Administers(id) {
			return nil, ErrNotAuthorized
		}
		filter["institute"] = id
	case !caller.IsSuperAdmin():
		filter["institute"] = bson.M{"$in": append([]primitive.ObjectID{}, caller.Institutes...)}
	}
	batches, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, apperror.Dependency("Failed to load batches", err)
	}
	return batches, nil
}

// load fetches a batch and checks the caller administers its institute.
func (s *BatchService) load(ctx context.Context, caller *principal.Principal, rawID string) (*Batch, error) {
	id, err := store.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load batch", err)
	}
	if b == nil {
		return nil, ErrBatchNotFound
	}
	if !caller.Administers(b.Institute) {
		return nil, ErrNotAuthorized
	}
	return b, nil
}

func (s *BatchService) Get(ctx context.Context, caller *principal.Principal, rawID string) (*Batch, error) {
	return s.load(ctx, caller, rawID)
}

func (s *BatchService) Update(ctx context.Context, caller *principal.Principal, rawID string, req UpdateRequest) (*Batch, error) {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Standard != nil {
		set["standard"] = *req.Standard
	}
	if req.Subjects != nil {
		set["subjects"] = *req.Subjects
	}
	if req.Mentor != nil {
		mentorID, err := store.ParseID(*req.Mentor)
		if err != nil {
			return nil, err
		}
		if err := s.checkMentor(ctx, mentorID, b.Institute); err != nil {
			return nil, err
		}
		set["mentor"] = mentorID
	}
	if req.Schedule != nil {
		sch := *req.Schedule
		if len(sch.Days) == 0 || sch.StartTime == "" || sch.EndTime == "" {
			return nil, ErrIncompleteSchedule
		}
		if sch.Timezone == "" {
			sch.Timezone = DefaultTimezone
		}
		set["schedule"] = sch
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.StartDate != nil {
		set["startDate"] = *req.StartDate
	}
	if req.EndDate != nil {
		set["endDate"] = *req.EndDate
	}

	updated, err := s.repo.Update(ctx, b.ID, set)
	if err != nil {
		return nil, apperror.Dependency("Failed to update batch", err)
	}
	if updated == nil {
		return nil, ErrBatchNotFound
	}
	return updated, nil
}

// Delete removes the batch and its id from the owning institute.
func (s *BatchService) Delete(ctx context.Context, caller *principal.Principal, rawID string) error {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		deleted, err := s.repo.Delete(ctx, b.ID)
		if err != nil {
			return apperror.Dependency("Failed to delete batch", err)
		}
		if !deleted {
			return ErrBatchNotFound
		}
		if err := s.institutes.PullBatch(ctx, b.Institute, b.ID); err != nil {
			return apperror.Dependency("Failed to unlink batch from institute", err)
		}
		return nil
	})
}

func (s *BatchService) RegenerateCode(ctx context.Context, caller *principal.Principal, rawID string) (*Batch, error) {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewShareCode()
		if err != nil {
			return nil, apperror.Internal(err)
		}
		updated, err := s.repo.Update(ctx, b.ID, bson.M{"shareCode": code, "shareLink": ShareLink(s.linkBase, code)})
		if errors.Is(err, ErrDuplicateShareCode) {
			continue
		}
		if err != nil {
			return nil, apperror.Dependency("Failed to regenerate share code", err)
		}
		if updated == nil {
			return nil, ErrBatchNotFound
		}
		return updated, nil
	}
	return nil, apperror.Internal(fmt.Errorf("no free share code after %d attempts", maxCodeAttempts))
}

func (s *BatchService) Enroll(ctx context.Context, caller *principal.Principal, rawID string, rawStudentIDs []string) (*Batch, error) {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(rawStudentIDs)
	if err != nil {
		return nil, err
	}
	n, err := s.students.CountByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Dependency("Failed to load students", err)
	}
	if int(n) != len(ids) {
		return nil, ErrStudentNotFound
	}
	updated, err := s.repo.AddStudents(ctx, b.ID, ids)
	if err != nil {
		return nil, apperror.Dependency("Failed to enroll students", err)
	}
	if updated == nil {
		return nil, ErrBatchNotFound
	}
	return updated, nil
}

func (s *BatchService) RecordClass(ctx context.Context, caller *principal.Principal, rawID string, req ClassRequest) (*Batch, error) {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	attended, err := parseIDs(req.AttendedStudents)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[primitive.ObjectID]bool, len(b.Students))
	for _, id := range b.Students {
		enrolled[id] = true
	}
	for _, id := range attended {
		if !enrolled[id] {
			return nil, fmt.Errorf("%w: %s", ErrAttendeeNotEnrolled, id.Hex())
		}
	}
	class := ClassRecord{
		ID:               primitive.NewObjectID(),
		Date:             req.Date,
		Duration:         req.Duration,
		Status:           req.Status,
		AttendedStudents: attended,
	}
	updated, err := s.repo.AddClass(ctx, b.ID, class)
	if err != nil {
		return nil, apperror.Dependency("Failed to record class", err)
	}
	if updated == nil {
		return nil, ErrBatchNotFound
	}
	return updated, nil
}

// RefreshReport recomputes and stores the batch report.
func (s *BatchService) RefreshReport(ctx context.Context, caller *principal.Principal, rawID string) (*Report, error) {
	b, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	report := ComputeReport(b.Classes, len(b.Students), s.now())
	if _, err := s.repo.Update(ctx, b.ID, bson.M{"batchReport": report}); err != nil {
		return nil, apperror.Dependency("Failed to save batch report", err)
	}
	return &report, nil
}

// parseIDs dedupes while keeping order.
func parseIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for _, r := range raw {
		id, err := store.ParseID(r)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
