package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"MentorDesk/internal/credential"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/student"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned by Accounts.Create when the email was taken
// concurrently.
var ErrDuplicate = errors.New("account already exists")

// Accounts provisions one kind of account.
type Accounts interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email string, inst *institute.Institute, tok credential.ResetToken) error
}

// Target describes what an import creates and where its users set their
// password.
type Target struct {
	Role     string
	Noun     string
	WebURL   string
	Accounts Accounts
}

type StudentInserter interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, s *student.Student) error
}

type StudentAccounts struct {
	Repo StudentInserter
}

func (a StudentAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	return a.Repo.EmailExists(ctx, email)
}

func (a StudentAccounts) Create(ctx context.Context, email string, inst *institute.Institute, tok credential.ResetToken) error {
	now := time.Now()
	expiry := tok.ExpiresAt
	err := a.Repo.Insert(ctx, &student.Student{
		Firstname:          localPart(email),
		Email:              email,
		Role:               student.Role,
		Institute:          student.InstituteRef{ID: inst.ID, Name: inst.Name, Logo: inst.Logo},
		ResetPasswordToken: tok.Hash,
		ResetTokenExpiry:   &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if errors.Is(err, student.ErrDuplicateEmail) {
		return ErrDuplicate
	}
	return err
}

type MentorInserter interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, m *mentor.Mentor) error
}

type MentorAccounts struct {
	Repo MentorInserter
}

func (a MentorAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	return a.Repo.EmailExists(ctx, email)
}

func (a MentorAccounts) Create(ctx context.Context, email string, inst *institute.Institute, tok credential.ResetToken) error {
	now := time.Now()
	expiry := tok.ExpiresAt
	instID := inst.ID
	err := a.Repo.Insert(ctx, &mentor.Mentor{
		Firstname:          localPart(email),
		Email:              email,
		Role:               mentor.Role,
		Institute:          &instID,
		Status:             mentor.StatusNotVerified,
		Preference:         mentor.Preference{Standard: []string{}, CompetitiveExam: []string{}},
		Students:           []mentor.StudentRef{},
		ResetPasswordToken: tok.Hash,
		ResetTokenExpiry:   &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if errors.Is(err, mentor.ErrDuplicateEmail) {
		return ErrDuplicate
	}
	return err
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// InstituteFinder resolves the institute an import attaches accounts to.
type InstituteFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*institute.Institute, error)
}
