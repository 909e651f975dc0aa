package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"
	"MentorDesk/internal/credential"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/metrics"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/student"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStudents struct {
	mu      sync.Mutex
	byEmail map[string]*student.Student
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{byEmail: map[string]*student.Student{}}
}

func (f *fakeStudents) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeStudents) Insert(_ context.Context, s *student.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[s.Email]; ok {
		return student.ErrDuplicateEmail
	}
	s.ID = primitive.NewObjectID()
	f.byEmail[s.Email] = s
	return nil
}

type fakeMentors struct {
	inserted []*mentor.Mentor
}

func (f *fakeMentors) EmailExists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeMentors) Insert(_ context.Context, m *mentor.Mentor) error {
	f.inserted = append(f.inserted, m)
	return nil
}

type fakeInstitutes map[primitive.ObjectID]*institute.Institute

func (f fakeInstitutes) FindByID(_ context.Context, id primitive.ObjectID) (*institute.Institute, error) {
	return f[id], nil
}

type sentMail struct {
	to, role, url string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]bool
}

func (f *fakeMailer) SendSetPassword(_ context.Context, to, _, role, _, setURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[to] {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, role: role, url: setURL})
	return nil
}

func setup() (*Service, *fakeMailer, fakeInstitutes, *metrics.Metrics) {
	inst := &institute.Institute{ID: primitive.NewObjectID(), Name: "Springfield High"}
	institutes := fakeInstitutes{inst.ID: inst}
	mailer := &fakeMailer{fail: map[string]bool{}}
	m := metrics.New()
	return NewService(institutes, mailer, m, zap.NewNop(), 4), mailer, institutes, m
}

var super = &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleSuperAdmin}

func firstInstitute(f fakeInstitutes) *institute.Institute {
	for _, inst := range f {
		return inst
	}
	return nil
}

func studentTarget(repo *fakeStudents) Target {
	return Target{Role: student.Role, Noun: "students", WebURL: "students.example", Accounts: StudentAccounts{Repo: repo}}
}

func TestCleanEmails(t *testing.T) {
	got, err := CleanEmails([]string{" a@b.com ", "", "  ", "C@D.org"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com", "c@d.org"}, got)

	for _, bad := range []string{"a@b", "abc", "a b@c.com"} {
		_, err := CleanEmails([]string{"ok@x.com", bad})
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	svc, mailer, institutes, m := setup()
	inst := firstInstitute(institutes)
	repo := newFakeStudents()
	emails := []string{"one@school.edu", "two@school.edu", "three@school.edu"}

	first, err := svc.Import(context.Background(), super, studentTarget(repo), inst.ID.Hex(), emails, "https")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, "Processed 3 students: 3 added, 0 skipped, 0 failed", first.Summary("students"))

	second, err := svc.Import(context.Background(), super, studentTarget(repo), inst.ID.Hex(), emails, "https")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 3, second.Skipped)

	assert.Len(t, mailer.sent, 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ImportItems.WithLabelValues(student.Role, StatusSkipped)))
}

func TestImportStoresHashedTokenAndMailsPlain(t *testing.T) {
	svc, mailer, institutes, _ := setup()
	inst := firstInstitute(institutes)
	repo := newFakeStudents()

	_, err := svc.Import(context.Background(), super, studentTarget(repo), inst.ID.Hex(), []string{"jane.doe@school.edu"}, "https")
	require.NoError(t, err)

	created := repo.byEmail["jane.doe@school.edu"]
	require.NotNil(t, created)
	assert.Equal(t, "jane.doe", created.Firstname)
	assert.Equal(t, "", created.Lastname)
	assert.Equal(t, student.Role, created.Role)
	assert.Equal(t, inst.ID, created.Institute.ID)
	assert.Nil(t, created.Mentor.ID)

	require.Len(t, mailer.sent, 1)
	prefix := "https://students.example/reset-password/"
	require.True(t, strings.HasPrefix(mailer.sent[0].url, prefix))
	plain := strings.TrimPrefix(mailer.sent[0].url, prefix)
	assert.Equal(t, credential.HashToken(plain), created.ResetPasswordToken)
	require.NotNil(t, created.ResetTokenExpiry)
}

func TestImportInvalidEmailCreatesNothing(t *testing.T) {
	svc, _, institutes, _ := setup()
	repo := newFakeStudents()

	_, err := svc.Import(context.Background(), super, studentTarget(repo), firstInstitute(institutes).ID.Hex(), []string{"a@b.com", "abc", ""}, "https")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	assert.Empty(t, repo.byEmail)
}

func TestImportValidatesBeforeInstituteLookup(t *testing.T) {
	svc, _, _, _ := setup()
	repo := newFakeStudents()

	_, err := svc.Import(context.Background(), super, studentTarget(repo), primitive.NewObjectID().Hex(), []string{"abc"}, "https")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Import(context.Background(), super, studentTarget(repo), primitive.NewObjectID().Hex(), []string{"a@b.com"}, "https")
	assert.ErrorIs(t, err, ErrInstituteNotFound)

	_, err = svc.Import(context.Background(), super, studentTarget(repo), primitive.NewObjectID().Hex(), nil, "https")
	assert.ErrorIs(t, err, ErrEmailsNotArray)
}

func TestImportMailFailureIsPerItem(t *testing.T) {
	svc, mailer, institutes, m := setup()
	mailer.fail["bad@school.edu"] = true
	repo := newFakeStudents()

	res, err := svc.Import(context.Background(), super, studentTarget(repo), firstInstitute(institutes).ID.Hex(), []string{"good@school.edu", "bad@school.edu"}, "http")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, StatusSuccess, res.Details[0].Status)
	assert.Equal(t, StatusError, res.Details[1].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailFailures))
}

func TestImportDuplicateInBatchIsSkipped(t *testing.T) {
	svc, _, institutes, _ := setup()
	repo := newFakeStudents()

	res, err := svc.Import(context.Background(), super, studentTarget(repo), firstInstitute(institutes).ID.Hex(), []string{"x@school.edu", "X@School.edu"}, "https")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
}

func TestImportTeachersHandler(t *testing.T) {
	svc, mailer, institutes, _ := setup()
	inst := firstInstitute(institutes)
	mentors := &fakeMentors{}
	cfg := &config.AppConfig{StudentWebURL: "students.example", MentorWebURL: "mentors.example"}
	h := NewHandler(svc, cfg, newFakeStudents(), mentors)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/mentor/import/"+inst.ID.Hex(), strings.NewReader(`{"emails":["t@school.edu"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("instituteId")
	c.SetParamValues(inst.ID.Hex())
	principal.Set(c, &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin, Institutes: []primitive.ObjectID{inst.ID}})

	require.NoError(t, h.ImportTeachers(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Processed 1 teachers: 1 added, 0 skipped, 0 failed")
	require.Len(t, mentors.inserted, 1)
	assert.Equal(t, mentor.Role, mentors.inserted[0].Role)
	assert.Equal(t, inst.ID, *mentors.inserted[0].Institute)
	require.Len(t, mailer.sent, 1)
	assert.True(t, strings.HasPrefix(mailer.sent[0].url, "http://mentors.example/reset-password/"))
}

func TestImportRequiresInstituteAdmin(t *testing.T) {
	svc, mailer, institutes, _ := setup()
	inst := firstInstitute(institutes)
	students := newFakeStudents()
	cfg := &config.AppConfig{StudentWebURL: "students.example", MentorWebURL: "mentors.example"}
	h := NewHandler(svc, cfg, students, &fakeMentors{})

	e := echo.New()
	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/api/student/import/"+inst.ID.Hex(), strings.NewReader(`{"emails":["s@school.edu"]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("instituteId")
		c.SetParamValues(inst.ID.Hex())
		return c
	}

	assert.ErrorIs(t, h.ImportStudents(newCtx()), principal.ErrNotAuthenticated)

	c := newCtx()
	principal.Set(c, &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin, Institutes: []primitive.ObjectID{primitive.NewObjectID()}})
	err := h.ImportStudents(c)
	assert.ErrorIs(t, err, ErrNotInstituteAdmin)
	assert.Equal(t, http.StatusForbidden, apperror.StatusOf(err))
	assert.Empty(t, students.byEmail)
	assert.Empty(t, mailer.sent)
}
