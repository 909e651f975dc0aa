package batch

import (
	"context"
	"net/http"
	"testing"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	items      map[primitive.ObjectID]*Batch
	codes      map[string]bool
	collisions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[primitive.ObjectID]*Batch{}, codes: map[string]bool{}}
}

func (f *fakeStore) Insert(_ context.Context, b *Batch) error {
	if f.collisions > 0 || f.codes[b.ShareCode] {
		f.collisions--
		return ErrDuplicateShareCode
	}
	b.ID = primitive.NewObjectID()
	f.codes[b.ShareCode] = true
	cp := *b
	f.items[b.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Batch, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Find(_ context.Context, filter bson.M) ([]Batch, error) {
	out := []Batch{}
	for _, b := range f.items {
		if id, ok := filter["institute"].(primitive.ObjectID); ok && b.Institute != id {
			continue
		}
		if in, ok := filter["institute"].(bson.M); ok && !contains(in["$in"].([]primitive.ObjectID), b.Institute) {
			continue
		}
		if id, ok := filter["mentor"].(primitive.ObjectID); ok && b.Mentor != id {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*Batch, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	for k, v := range set {
		switch k {
		case "name":
			b.Name = v.(string)
		case "status":
			b.Status = v.(string)
		case "mentor":
			b.Mentor = v.(primitive.ObjectID)
		case "shareCode":
			b.ShareCode = v.(string)
		case "shareLink":
			b.ShareLink = v.(string)
		case "batchReport":
			b.Report = v.(Report)
		}
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.items[id]
	delete(f.items, id)
	return ok, nil
}

func (f *fakeStore) AddStudents(_ context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*Batch, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	for _, s := range ids {
		if !contains(b.Students, s) {
			b.Students = append(b.Students, s)
		}
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) AddClass(_ context.Context, id primitive.ObjectID, class ClassRecord) (*Batch, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	b.Classes = append(b.Classes, class)
	cp := *b
	return &cp, nil
}

type fakeInstitutes map[primitive.ObjectID]*institute.Institute

func (f fakeInstitutes) FindByID(_ context.Context, id primitive.ObjectID) (*institute.Institute, error) {
	return f[id], nil
}

func (f fakeInstitutes) AddBatch(_ context.Context, id, batchID primitive.ObjectID) error {
	f[id].Batches = append(f[id].Batches, batchID)
	return nil
}

func (f fakeInstitutes) PullBatch(_ context.Context, id, batchID primitive.ObjectID) error {
	kept := f[id].Batches[:0]
	for _, b := range f[id].Batches {
		if b != batchID {
			kept = append(kept, b)
		}
	}
	f[id].Batches = kept
	return nil
}

type fakeMentors map[primitive.ObjectID]*mentor.Mentor

func (f fakeMentors) FindByID(_ context.Context, id primitive.ObjectID) (*mentor.Mentor, error) {
	return f[id], nil
}

type fakeStudents map[primitive.ObjectID]bool

func (f fakeStudents) CountByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	var n int64
	for _, id := range ids {
		if f[id] {
			n++
		}
	}
	return n, nil
}

type fixture struct {
	svc        *BatchService
	repo       *fakeStore
	institutes fakeInstitutes
	students   fakeStudents
	inst       *institute.Institute
	mentorID   primitive.ObjectID
	caller     *principal.Principal
}

func newFixture() *fixture {
	inst := &institute.Institute{ID: primitive.NewObjectID(), Name: "Springfield High"}
	instID := inst.ID
	m := &mentor.Mentor{ID: primitive.NewObjectID(), Institute: &instID}
	f := &fixture{
		repo:       newFakeStore(),
		institutes: fakeInstitutes{inst.ID: inst},
		students:   fakeStudents{},
		inst:       inst,
		mentorID:   m.ID,
		caller:     &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin, Institutes: []primitive.ObjectID{inst.ID}},
	}
	cfg := &config.AppConfig{ShareLinkBase: "https://leadlly.in"}
	f.svc = NewBatchService(f.repo, f.institutes, fakeMentors{m.ID: m}, f.students, store.Direct{}, cfg, zap.NewNop())
	return f
}

func (f *fixture) createRequest() CreateRequest {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return CreateRequest{
		Name:      " JEE 2026 ",
		Institute: f.inst.ID.Hex(),
		Standard:  "11",
		Subjects:  []string{"physics", "maths"},
		Mentor:    f.mentorID.Hex(),
		Schedule:  &Schedule{Days: []string{"Monday", "Thursday"}, StartTime: "16:00", EndTime: "17:30"},
		StartDate: &start,
	}
}

func TestCreateAssignsCodeAndLinksInstitute(t *testing.T) {
	f := newFixture()
	b, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, "JEE 2026", b.Name)
	assert.Len(t, b.ShareCode, 7)
	assert.Equal(t, "https://leadlly.in/join-batch/"+b.ShareCode, b.ShareLink)
	assert.Equal(t, DefaultTimezone, b.Schedule.Timezone)
	assert.Equal(t, StatusActive, b.Status)
	assert.Equal(t, []primitive.ObjectID{b.ID}, f.inst.Batches)
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	f := newFixture()
	f.repo.collisions = 2
	b, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)
	assert.False(t, b.ID.IsZero())
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	f.repo.collisions = maxCodeAttempts
	_, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Empty(t, f.inst.Batches)
}

func TestCreateChecks(t *testing.T) {
	f := newFixture()

	outsider := &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin}
	_, err := f.svc.Create(context.Background(), outsider, f.createRequest())
	assert.ErrorIs(t, err, ErrNotAuthorized)

	req := f.createRequest()
	req.Schedule.EndTime = ""
	_, err = f.svc.Create(context.Background(), f.caller, req)
	assert.ErrorIs(t, err, ErrIncompleteSchedule)

	req = f.createRequest()
	req.Mentor = primitive.NewObjectID().Hex()
	_, err = f.svc.Create(context.Background(), f.caller, req)
	assert.ErrorIs(t, err, ErrMentorNotFound)

	req = f.createRequest()
	req.Institute = "nope"
	_, err = f.svc.Create(context.Background(), f.caller, req)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}

func TestSuperAdminSeesEveryBatch(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)

	super := &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleSuperAdmin}
	all, err := f.svc.List(context.Background(), super, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stranger := &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin}
	none, err := f.svc.List(context.Background(), stranger, Filter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.List(context.Background(), stranger, Filter{Institute: f.inst.ID.Hex()})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDeleteUnlinksInstitute(t *testing.T) {
	f := newFixture()
	b, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.caller, b.ID.Hex()))
	assert.Empty(t, f.inst.Batches)

	_, err = f.svc.Get(context.Background(), f.caller, b.ID.Hex())
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestRegenerateCode(t *testing.T) {
	f := newFixture()
	b, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)

	updated, err := f.svc.RegenerateCode(context.Background(), f.caller, b.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, updated.ShareCode, 7)
	assert.Equal(t, "https://leadlly.in/join-batch/"+updated.ShareCode, updated.ShareLink)
}

func TestEnrollRecordAndReport(t *testing.T) {
	f := newFixture()
	b, err := f.svc.Create(context.Background(), f.caller, f.createRequest())
	require.NoError(t, err)

	s1, s2 := primitive.NewObjectID(), primitive.NewObjectID()
	f.students[s1], f.students[s2] = true, true

	_, err = f.svc.Enroll(context.Background(), f.caller, b.ID.Hex(), []string{s1.Hex(), primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	enrolled, err := f.svc.Enroll(context.Background(), f.caller, b.ID.Hex(), []string{s1.Hex(), s2.Hex(), s1.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{s1, s2}, enrolled.Students)

	_, err = f.svc.RecordClass(context.Background(), f.caller, b.ID.Hex(), ClassRequest{
		Date: time.Now(), Duration: 60, Status: ClassCompleted, AttendedStudents: []string{primitive.NewObjectID().Hex()},
	})
	assert.ErrorIs(t, err, ErrAttendeeNotEnrolled)

	_, err = f.svc.RecordClass(context.Background(), f.caller, b.ID.Hex(), ClassRequest{
		Date: time.Now(), Duration: 60, Status: ClassCompleted, AttendedStudents: []string{s1.Hex(), s2.Hex()},
	})
	require.NoError(t, err)
	_, err = f.svc.RecordClass(context.Background(), f.caller, b.ID.Hex(), ClassRequest{
		Date: time.Now(), Duration: 60, Status: ClassCancelled,
	})
	require.NoError(t, err)

	report, err := f.svc.RefreshReport(context.Background(), f.caller, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalClasses)
	assert.Equal(t, 60, report.TotalDuration)
	assert.Equal(t, 50, report.AverageAttendance)
	assert.Equal(t, 50, report.SyllabusProgress)
	assert.Equal(t, *report, f.repo.items[b.ID].Report)
}
