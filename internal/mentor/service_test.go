package mentor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/store"
	"MentorDesk/internal/student"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	mentors map[primitive.ObjectID]*Mentor
	roster  map[primitive.ObjectID][]student.Student
}

func (f *fakeStore) FindAll(context.Context) ([]Mentor, error) {
	out := []Mentor{}
	for _, m := range f.mentors {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Mentor, error) {
	return f.mentors[id], nil
}

func (f *fakeStore) FindRoster(_ context.Context, id primitive.ObjectID) (*Roster, error) {
	m, ok := f.mentors[id]
	if !ok {
		return nil, nil
	}
	return &Roster{ID: m.ID, Firstname: m.Firstname, Students: f.roster[id]}, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) (bool, error) {
	m, ok := f.mentors[id]
	if !ok {
		return false, nil
	}
	m.Status = status
	return true, nil
}

type fakeUnallocated []student.Student

func (f fakeUnallocated) FindUnallocated(context.Context) ([]student.Student, error) {
	return f, nil
}

func TestListWithoutMentors(t *testing.T) {
	svc := NewMentorService(&fakeStore{mentors: map[primitive.ObjectID]*Mentor{}}, fakeUnallocated(nil))

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrNoMentors)
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
}

func TestVerify(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &fakeStore{mentors: map[primitive.ObjectID]*Mentor{id: {ID: id, Status: StatusNotVerified}}}
	svc := NewMentorService(repo, fakeUnallocated(nil))

	require.NoError(t, svc.Verify(context.Background(), id.Hex(), StatusVerified))
	assert.Equal(t, StatusVerified, repo.mentors[id].Status)

	assert.ErrorIs(t, svc.Verify(context.Background(), id.Hex(), "Maybe"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.Verify(context.Background(), primitive.NewObjectID().Hex(), StatusVerified), ErrMentorNotFound)
	assert.ErrorIs(t, svc.Verify(context.Background(), "xyz", StatusVerified), store.ErrInvalidID)
}

func TestRosterAppendsUnallocated(t *testing.T) {
	id := primitive.NewObjectID()
	mine := student.Student{ID: primitive.NewObjectID(), Firstname: "Mine"}
	free := student.Student{ID: primitive.NewObjectID(), Firstname: "Free"}
	repo := &fakeStore{
		mentors: map[primitive.ObjectID]*Mentor{id: {ID: id}},
		roster:  map[primitive.ObjectID][]student.Student{id: {mine}},
	}
	svc := NewMentorService(repo, fakeUnallocated{free})

	roster, err := svc.Roster(context.Background(), id.Hex())
	require.NoError(t, err)
	require.Len(t, roster.Students, 2)
	assert.Equal(t, "Mine", roster.Students[0].Firstname)
	assert.Equal(t, "Free", roster.Students[1].Firstname)
}

func TestVerifyHandler(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &fakeStore{mentors: map[primitive.ObjectID]*Mentor{id: {ID: id}}}
	h := NewMentorHandler(NewMentorService(repo, fakeUnallocated(nil)))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/mentor/verify/"+id.Hex(), strings.NewReader(`{"status":"Verified"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())

	require.NoError(t, h.Verify(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mentor Verified")
}
