package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu         sync.Mutex
	items      map[primitive.ObjectID]*Notification
	recipients map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[primitive.ObjectID]*Notification{}, recipients: map[string][]string{}}
}

func (f *fakeStore) Create(_ context.Context, n *Notification) error {
	n.ID = primitive.NewObjectID()
	f.items[n.ID] = n
	return nil
}

func (f *fakeStore) ClaimDue(_ context.Context, now time.Time) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.Status == StatusScheduled && !n.SendTime.After(now) {
			n.Status = StatusSending
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, sentTo []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return errNotificationNotFound
	}
	n.Status, n.SentTo = status, sentTo
	return nil
}

func (f *fakeStore) ListByInstitute(_ context.Context, institute primitive.ObjectID) ([]*Notification, error) {
	var out []*Notification
	for _, n := range f.items {
		if n.Institute == institute {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Notification, error) {
	return f.items[id], nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeStore) Recipients(_ context.Context, _ primitive.ObjectID, roles []string) ([]string, error) {
	var out []string
	for _, r := range roles {
		out = append(out, f.recipients[r]...)
	}
	return out, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newService(repo Store, sender Sender, now time.Time) *NotificationService {
	s := NewNotificationService(repo, sender, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleValidates(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	institute := primitive.NewObjectID()
	admin := &principal.Principal{ID: primitive.NewObjectID(), Role: principal.RoleAdmin, Institutes: []primitive.ObjectID{institute}}
	svc := newService(newFakeStore(), &recordingSender{}, now)

	_, err := svc.Schedule(context.Background(), admin, ScheduleRequest{Institute: institute.Hex(), Message: "hi", SendTime: now.Add(-time.Minute)})
	assert.ErrorIs(t, err, ErrSendTimeInPast)

	_, err = svc.Schedule(context.Background(), admin, ScheduleRequest{Institute: institute.Hex(), Message: "hi", SendTime: now.Add(time.Hour), Roles: []string{"parent"}})
	assert.ErrorIs(t, err, ErrUnknownAudience)

	other := primitive.NewObjectID()
	_, err = svc.Schedule(context.Background(), admin, ScheduleRequest{Institute: other.Hex(), Message: "hi", SendTime: now.Add(time.Hour)})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	n, err := svc.Schedule(context.Background(), admin, ScheduleRequest{Institute: institute.Hex(), Message: "hi", SendTime: now.Add(time.Hour), Roles: []string{"Student", "student"}})
	require.NoError(t, err)
	assert.Equal(t, []string{AudienceStudent}, n.Roles)
	assert.Equal(t, "Notification", n.Subject)
	assert.Equal(t, StatusScheduled, n.Status)
}

func TestSendDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeStore()
	repo.recipients[AudienceTeacher] = []string{"t@school.edu"}
	repo.recipients[AudienceStudent] = []string{"s1@school.edu", "s2@school.edu"}
	sender := &recordingSender{fail: map[string]bool{"s2@school.edu": true}}
	svc := newService(repo, sender, now)

	due := &Notification{Status: StatusScheduled, SendTime: now.Add(-time.Minute), Roles: []string{AudienceTeacher, AudienceStudent}, Subject: "Exam", Message: "Exam moved"}
	later := &Notification{Status: StatusScheduled, SendTime: now.Add(time.Hour), Roles: []string{AudienceTeacher}}
	require.NoError(t, repo.Create(context.Background(), due))
	require.NoError(t, repo.Create(context.Background(), later))

	svc.SendDue(context.Background())

	assert.Equal(t, StatusSent, due.Status)
	assert.Equal(t, []string{"t@school.edu", "s1@school.edu"}, due.SentTo)
	assert.Equal(t, StatusScheduled, later.Status)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "Exam", sender.sent[0].Subject)
	assert.True(t, strings.Contains(sender.sent[0].HTML, "Exam moved"))
}

func TestSendDueWithNoDeliveryFails(t *testing.T) {
	now := time.Now()
	repo := newFakeStore()
	svc := newService(repo, &recordingSender{}, now)
	n := &Notification{Status: StatusScheduled, SendTime: now.Add(-time.Minute), Roles: []string{AudienceTeacher}}
	require.NoError(t, repo.Create(context.Background(), n))

	svc.SendDue(context.Background())

	assert.Equal(t, StatusFailed, n.Status)
}

func TestSendDueClaimsOnce(t *testing.T) {
	now := time.Now()
	repo := newFakeStore()
	repo.recipients[AudienceTeacher] = []string{"t@school.edu"}
	sender := &recordingSender{}
	for i := 0; i < 5; i++ {
		n := &Notification{Status: StatusScheduled, SendTime: now.Add(-time.Minute), Roles: []string{AudienceTeacher}}
		require.NoError(t, repo.Create(context.Background(), n))
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newService(repo, sender, now).SendDue(context.Background())
		}()
	}
	wg.Wait()

	assert.Len(t, sender.sent, 5)
	for _, n := range repo.items {
		assert.Equal(t, StatusSent, n.Status)
	}
}

func TestClaimQueryOnlyMatchesScheduled(t *testing.T) {
	now := time.Now()
	filter, update := claimQuery(now)

	assert.Equal(t, StatusScheduled, filter["status"])
	assert.Equal(t, bson.M{"$lte": now}, filter["sendTime"])
	assert.Equal(t, StatusSending, update["$set"].(bson.M)["status"])
}

func TestMailerSetPassword(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender)

	err := m.SendSetPassword(context.Background(), "new@school.edu", "new", "student", "Springfield High", "https://students.example/reset-password/abc")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Set Your Password", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "https://students.example/reset-password/abc")
	assert.Contains(t, sender.sent[0].HTML, "24 hours")
}
