package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"
	"MentorDesk/internal/credential"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/session"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrUserExists         = apperror.Conflict("User already exists")
	ErrInvalidCredentials = apperror.Validation("Invalid email or password")
	ErrAccountInactive    = apperror.Forbidden("Your account is not active")
	ErrEmailNotRegistered = apperror.Validation("Email not registered")
	ErrUnknownAccountKind = apperror.NotFound("Unknown account type")
	ErrAdminNotFound      = apperror.NotFound("User not found")
)

// Account kinds that can reset a password through a mailed link.
const (
	KindAdmin   = "admin"
	KindStudent = "student"
	KindMentor  = "mentor"
)

type Store interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Admin, error)
	Insert(ctx context.Context, admin *Admin) error
	RecordLogin(ctx context.Context, id primitive.ObjectID, entry Activity) error
	Promote(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tok credential.ResetToken) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	credential.TokenStore
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// ResetTargets are the non-admin collections whose accounts reset their
// password through this service.
type ResetTargets struct {
	Students credential.TokenStore
	Mentors  credential.TokenStore
}

type AuthService struct {
	repo        Store
	tokens      *TokenIssuer
	mailer      Mailer
	revoker     session.Revoker
	resets      map[string]credential.TokenStore
	frontendURL string
	log         *zap.Logger
}

func NewAuthService(repo Store, targets ResetTargets, tokens *TokenIssuer, mailer Mailer, revoker session.Revoker, cfg *config.AppConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		revoker: revoker,
		resets: map[string]credential.TokenStore{
			KindAdmin:   repo,
			KindStudent: targets.Students,
			KindMentor:  targets.Mentors,
		},
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		log:         log.Named("auth"),
	}
}

// Session is a signed token together with the admin it belongs to.
type Session struct {
	Admin     *Admin
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	return s.create(ctx, req, principal.RoleAdmin)
}

// CreateSuperAdmin registers a superadmin, or promotes the admin that already
// owns the email.
func (s *AuthService) CreateSuperAdmin(ctx context.Context, req RegisterRequest) (*Admin, error) {
	sess, err := s.create(ctx, req, principal.RoleSuperAdmin)
	if errors.Is(err, ErrUserExists) {
		existing, ferr := s.repo.FindByEmail(ctx, req.Email)
		if ferr != nil {
			return nil, apperror.Dependency("Failed to load admin", ferr)
		}
		if existing == nil {
			return nil, ErrAdminNotFound
		}
		if err := s.repo.Promote(ctx, existing.ID); err != nil {
			return nil, apperror.Dependency("Failed to promote admin", err)
		}
		existing.Role = principal.RoleSuperAdmin
		existing.Permissions = DefaultPermissions(principal.RoleSuperAdmin)
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.Admin, nil
}

func (s *AuthService) create(ctx context.Context, req RegisterRequest, role string) (*Session, error) {
	secret, err := credential.NewSecret(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	now := time.Now()
	admin := &Admin{
		Firstname:   strings.TrimSpace(req.Firstname),
		Lastname:    strings.TrimSpace(req.Lastname),
		Email:       store.NormalizeEmail(req.Email),
		Phone:       req.Phone,
		Password:    secret.Hash,
		Salt:        secret.Salt,
		Role:        role,
		Institutes:  []primitive.ObjectID{},
		Permissions: DefaultPermissions(role),
		Status:      StatusActive,
		ActivityLog: []Activity{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, apperror.Dependency("Failed to register user", err)
	}
	s.log.Info("admin registered", zap.Stringer("id", admin.ID), zap.String("role", role))
	return s.issue(admin)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*Session, error) {
	admin, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Dependency("Failed to log in", err)
	}
	if admin == nil || !credential.Verify(req.Password, admin.Password, admin.Salt) {
		return nil, ErrInvalidCredentials
	}
	if admin.Status != StatusActive {
		return nil, fmt.Errorf("%w (%s)", ErrAccountInactive, admin.Status)
	}

	now := time.Now()
	entry := Activity{Action: "login", Timestamp: now, IPAddress: ip}
	if err := s.repo.RecordLogin(ctx, admin.ID, entry); err != nil {
		s.log.Warn("record login failed", zap.Stringer("id", admin.ID), zap.Error(err))
	} else {
		admin.LastLogin = &now
	}
	return s.issue(admin)
}

func (s *AuthService) issue(admin *Admin) (*Session, error) {
	signed, claims, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &Session{Admin: admin, Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the token id until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		return apperror.Dependency("Failed to log out", err)
	}
	return nil
}

// ForgotPassword stores a fresh reset token and mails its link. When the
// mail cannot be sent the token is removed again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return apperror.Dependency("Failed to look up user", err)
	}
	if acc == nil {
		return ErrEmailNotRegistered
	}
	tok, err := credential.IssueResetToken(credential.SelfServiceTTL)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.repo.SetResetToken(ctx, acc.ID, tok); err != nil {
		return apperror.Dependency("Failed to save reset token", err)
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.frontendURL, tok.Plain)
	if err := s.mailer.SendPasswordReset(ctx, acc.Email, resetURL); err != nil {
		if cerr := s.repo.ClearResetToken(ctx, acc.ID); cerr != nil {
			s.log.Error("clear reset token failed", zap.Stringer("id", acc.ID), zap.Error(cerr))
		}
		return apperror.Dependency("Failed to send reset email", err)
	}
	return nil
}

// ResetPassword consumes a mailed token for the given account kind.
func (s *AuthService) ResetPassword(ctx context.Context, kind, token, password string) error {
	target, ok := s.resets[kind]
	if !ok || target == nil {
		return ErrUnknownAccountKind
	}
	return credential.ResetPassword(ctx, target, token, password)
}

func (s *AuthService) Profile(ctx context.Context, id primitive.ObjectID) (*Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load user", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// Resolve turns a raw session token into the principal it authenticates.
// Expired, revoked or orphaned tokens yield ErrNotAuthenticated.
func (s *AuthService) Resolve(ctx context.Context, raw string) (*principal.Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, principal.ErrNotAuthenticated
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.Dependency("Failed to check session", err)
	}
	if revoked {
		return nil, principal.ErrNotAuthenticated
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, principal.ErrNotAuthenticated
	}
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load user", err)
	}
	if admin == nil || admin.Status != StatusActive {
		return nil, principal.ErrNotAuthenticated
	}
	return &principal.Principal{
		ID:         admin.ID,
		Email:      admin.Email,
		Role:       admin.Role,
		TokenID:    claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
		Institutes: admin.Institutes,
	}, nil
}
