package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, n *Notification) error
	ClaimDue(ctx context.Context, now time.Time) (*Notification, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, sentTo []string) error
	ListByInstitute(ctx context.Context, institute primitive.ObjectID) ([]*Notification, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Notification, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Recipients(ctx context.Context, institute primitive.ObjectID, roles []string) ([]string, error)
}

var (
	ErrSendTimeInPast       = apperror.Validation("Send time must be in the future")
	ErrUnknownAudience      = apperror.Validation("Roles may only contain teacher and student")
	ErrNotificationNotFound = apperror.NotFound("Notification not found")
	ErrNotInstituteAdmin    = apperror.Forbidden("You are not an admin of this institute")
)

// NotificationService schedules institute announcements and mails them once
// they are due.
type NotificationService struct {
	repo   Store
	sender Sender
	log    *zap.Logger
	now    func() time.Time
}

func NewNotificationService(repo Store, sender Sender, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, sender: sender, log: log.Named("notification"), now: time.Now}
}

func (s *NotificationService) Schedule(ctx context.Context, caller *principal.Principal, req ScheduleRequest) (*Notification, error) {
	institute, err := store.ParseID(req.Institute)
	if err != nil {
		return nil, err
	}
	if !caller.Administers(institute) {
		return nil, ErrNotInstituteAdmin
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperror.Validation("Message is required")
	}
	now := s.now()
	if !req.SendTime.After(now) {
		return nil, ErrSendTimeInPast
	}
	roles, err := normalizeRoles(req.Roles)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Notification"
	}

	n := &Notification{
		Institute: institute,
		Subject:   subject,
		Message:   req.Message,
		SendTime:  req.SendTime,
		Roles:     roles,
		Status:    StatusScheduled,
		CreatedBy: caller.ID,
		SentTo:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperror.Dependency("Failed to schedule notification", err)
	}
	return n, nil
}

func normalizeRoles(roles []string) ([]string, error) {
	if len(roles) == 0 {
		return []string{AudienceTeacher, AudienceStudent}, nil
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != AudienceTeacher && r != AudienceStudent {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAudience, r)
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// SendDue claims and mails due notifications one at a time until none are
// left. A notification with no successful delivery is marked failed.
func (s *NotificationService) SendDue(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := s.repo.ClaimDue(ctx, s.now())
		if err != nil {
			s.log.Error("claim due notification", zap.Error(err))
			return
		}
		if n == nil {
			return
		}
		sentTo, err := s.deliver(ctx, n)
		if err != nil {
			s.log.Error("deliver notification", zap.Stringer("id", n.ID), zap.Error(err))
		}
		status := StatusSent
		if len(sentTo) == 0 {
			status = StatusFailed
			sentTo = []string{}
		}
		if err := s.repo.UpdateStatus(ctx, n.ID, status, sentTo); err != nil {
			s.log.Error("update notification status", zap.Stringer("id", n.ID), zap.Error(err))
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, n *Notification) ([]string, error) {
	recipients, err := s.repo.Recipients(ctx, n.Institute, n.Roles)
	if err != nil {
		return nil, err
	}
	html, err := render(announcementTmpl, n)
	if err != nil {
		return nil, err
	}
	sentTo := []string{}
	for _, to := range recipients {
		if err := s.sender.Send(ctx, Message{To: to, Subject: n.Subject, HTML: html}); err != nil {
			s.log.Warn("notification mail failed", zap.String("to", to), zap.Error(err))
			continue
		}
		sentTo = append(sentTo, to)
	}
	return sentTo, nil
}

func (s *NotificationService) List(ctx context.Context, caller *principal.Principal, rawInstitute string) ([]*Notification, error) {
	institute, err := store.ParseID(rawInstitute)
	if err != nil {
		return nil, err
	}
	if !caller.Administers(institute) {
		return nil, ErrNotInstituteAdmin
	}
	list, err := s.repo.ListByInstitute(ctx, institute)
	if err != nil {
		return nil, apperror.Dependency("Failed to list notifications", err)
	}
	return list, nil
}

func (s *NotificationService) Delete(ctx context.Context, caller *principal.Principal, rawID string) error {
	id, err := store.ParseID(rawID)
	if err != nil {
		return err
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.Dependency("Failed to load notification", err)
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if !caller.Administers(n.Institute) {
		return ErrNotInstituteAdmin
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Dependency("Failed to delete notification", err)
	}
	return nil
}
