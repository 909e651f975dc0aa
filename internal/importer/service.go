// Package importer provisions student and teacher accounts from a list of
// emails and mails each new account a link to set its password.
package importer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/credential"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/metrics"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrEmailsNotArray    = apperror.Validation("Emails must be provided as an array")
	ErrInvalidEmail      = apperror.Validation("Invalid email format")
	ErrInstituteNotFound = apperror.NotFound("Institute not found")
	ErrNotInstituteAdmin = apperror.Forbidden("You are not an admin of this institute")
)

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

type Mailer interface {
	SendSetPassword(ctx context.Context, to, name, role, institute, setURL string) error
}

type ItemResult struct {
	Email   string `json:"email"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Result struct {
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
	Details []ItemResult `json:"details"`
}

// Summary reads e.g. "Processed 3 students: 2 added, 1 skipped, 0 failed".
func (r *Result) Summary(noun string) string {
	return fmt.Sprintf("Processed %d %s: %d added, %d skipped, %d failed",
		len(r.Details), noun, r.Created, r.Skipped, r.Failed)
}

type Service struct {
	institutes  InstituteFinder
	mailer      Mailer
	metrics     *metrics.Metrics
	log         *zap.Logger
	concurrency int
}

func NewService(institutes InstituteFinder, mailer Mailer, m *metrics.Metrics, log *zap.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		institutes:  institutes,
		mailer:      mailer,
		metrics:     m,
		log:         log.Named("importer"),
		concurrency: concurrency,
	}
}

// CleanEmails trims and drops empty entries, then rejects the whole batch if
// any address is malformed.
func CleanEmails(emails []string) ([]string, error) {
	cleaned := make([]string, 0, len(emails))
	var invalid []string
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !emailPattern.MatchString(e) {
			invalid = append(invalid, e)
			continue
		}
		cleaned = append(cleaned, store.NormalizeEmail(e))
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w found in %d records: %s", ErrInvalidEmail, len(invalid), strings.Join(invalid, ", "))
	}
	return cleaned, nil
}

// Import creates an account per email. Existing accounts are skipped; a
// failure on one email never affects the others. scheme prefixes the link
// in the set-password mail. Only admins of the institute may import into it.
func (s *Service) Import(ctx context.Context, caller *principal.Principal, target Target, rawInstituteID string, emails []string, scheme string) (*Result, error) {
	if emails == nil {
		return nil, ErrEmailsNotArray
	}
	instituteID, err := store.ParseID(rawInstituteID)
	if err != nil {
		return nil, err
	}
	if !caller.Administers(instituteID) {
		return nil, ErrNotInstituteAdmin
	}
	list, err := CleanEmails(emails)
	if err != nil {
		return nil, err
	}
	inst, err := s.institutes.FindByID(ctx, instituteID)
	if err != nil {
		return nil, apperror.Dependency("Failed to load institute", err)
	}
	if inst == nil {
		return nil, ErrInstituteNotFound
	}

	details := make([]ItemResult, len(list))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, email := range list {
		g.Go(func() error {
			details[i] = s.importOne(ctx, target, inst, email, scheme)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Details: details}
	for _, d := range details {
		switch d.Status {
		case StatusSuccess:
			res.Created++
		case StatusSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
		if s.metrics != nil {
			s.metrics.ImportItems.WithLabelValues(target.Role, d.Status).Inc()
		}
	}
	s.log.Info("import finished",
		zap.String("role", target.Role),
		zap.Stringer("institute", inst.ID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Service) importOne(ctx context.Context, target Target, inst *institute.Institute, email, scheme string) ItemResult {
	item := ItemResult{Email: email}
	fail := func(msg string, err error) ItemResult {
		s.log.Warn("import item failed", zap.String("email", email), zap.Error(err))
		item.Status, item.Message = StatusError, msg
		return item
	}

	exists, err := target.Accounts.EmailExists(ctx, email)
	if err != nil {
		return fail("Failed to look up user", err)
	}
	if exists {
		item.Status, item.Message = StatusSkipped, "User already exists"
		return item
	}

	tok, err := credential.IssueResetToken(credential.ProvisioningTTL)
	if err != nil {
		return fail("Failed to issue token", err)
	}
	if err := target.Accounts.Create(ctx, email, inst, tok); err != nil {
		if errors.Is(err, ErrDuplicate) {
			item.Status, item.Message = StatusSkipped, "User already exists"
			return item
		}
		return fail("Failed to create user", err)
	}

	setURL := fmt.Sprintf("%s://%s/reset-password/%s", scheme, target.WebURL, tok.Plain)
	if err := s.mailer.SendSetPassword(ctx, email, localPart(email), target.Role, inst.Name, setURL); err != nil {
		if s.metrics != nil {
			s.metrics.MailFailures.Inc()
		}
		return fail("User created but the email could not be sent", err)
	}
	item.Status, item.Message = StatusSuccess, "User created and email sent"
	return item
}
