// Package routes assembles the application graph and the HTTP surface.
package routes

import (
	"MentorDesk/internal/allocation"
	"MentorDesk/internal/auth"
	"MentorDesk/internal/batch"
	"MentorDesk/internal/config"
	"MentorDesk/internal/importer"
	"MentorDesk/internal/institute"
	"MentorDesk/internal/matching"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/metrics"
	"MentorDesk/internal/notification"
	"MentorDesk/internal/session"
	"MentorDesk/internal/store"
	"MentorDesk/internal/student"
	"MentorDesk/pkg/middleware"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Infra provides configuration, logging and the external clients. The CLI
// reuses it without the HTTP server.
var Infra = fx.Module("infra",
	fx.Provide(
		config.Load,
		config.NewLogger,
		config.NewMongoClient,
		config.NewRedisClient,
		metrics.New,
		session.NewRevoker,
		fx.Annotate(store.NewTransactor, fx.As(new(store.Transactor))),
		notification.NewSender,
		notification.NewMailer,
	),
)

// Domain provides repositories and services.
var Domain = fx.Module("domain",
	fx.Provide(
		auth.NewAdminRepository,
		student.NewStudentRepository,
		mentor.NewMentorRepository,
		institute.NewInstituteRepository,
		batch.NewBatchRepository,
		notification.NewNotificationRepository,

		auth.NewTokenIssuer,
		newAuthService,
		newMentorService,
		newAllocationService,
		newMatchingService,
		newImportService,
		newInstituteService,
		newBatchService,
		newNotificationService,
		notification.NewNotificationScheduler,
	),
)

// HTTP provides handlers and the echo server and registers all routes.
var HTTP = fx.Module("http",
	fx.Provide(
		auth.NewAuthHandler,
		mentor.NewMentorHandler,
		allocation.NewHandler,
		matching.NewHandler,
		newImportHandler,
		institute.NewInstituteHandler,
		batch.NewBatchHandler,
		notification.NewNotificationHandler,
		middleware.NewRBAC,
		NewEchoServer,
	),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(s *notification.NotificationScheduler, lc fx.Lifecycle) { s.Start(lc) }),
)

func newAuthService(
	admins *auth.AdminRepository,
	students *student.StudentRepository,
	mentors *mentor.MentorRepository,
	tokens *auth.TokenIssuer,
	mailer *notification.Mailer,
	revoker session.Revoker,
	cfg *config.AppConfig,
	log *zap.Logger,
) *auth.AuthService {
	targets := auth.ResetTargets{Students: students, Mentors: mentors}
	return auth.NewAuthService(admins, targets, tokens, mailer, revoker, cfg, log)
}

func newMentorService(mentors *mentor.MentorRepository, students *student.StudentRepository) *mentor.MentorService {
	return mentor.NewMentorService(mentors, students)
}

func newAllocationService(
	students *student.StudentRepository,
	mentors *mentor.MentorRepository,
	tx store.Transactor,
	m *metrics.Metrics,
	cfg *config.AppConfig,
	log *zap.Logger,
) *allocation.Service {
	return allocation.NewService(students, mentors, tx, m, log, cfg.BulkConcurrency)
}

func newMatchingService(students *student.StudentRepository, mentors *mentor.MentorRepository) *matching.Service {
	return matching.NewService(students, mentors)
}

func newImportService(
	institutes *institute.InstituteRepository,
	mailer *notification.Mailer,
	m *metrics.Metrics,
	cfg *config.AppConfig,
	log *zap.Logger,
) *importer.Service {
	return importer.NewService(institutes, mailer, m, log, cfg.ImportConcurrency)
}

func newImportHandler(
	service *importer.Service,
	cfg *config.AppConfig,
	students *student.StudentRepository,
	mentors *mentor.MentorRepository,
) *importer.Handler {
	return importer.NewHandler(service, cfg, students, mentors)
}

func newInstituteService(repo *institute.InstituteRepository, admins *auth.AdminRepository, tx store.Transactor) *institute.InstituteService {
	return institute.NewInstituteService(repo, admins, tx)
}

func newBatchService(
	repo *batch.BatchRepository,
	institutes *institute.InstituteRepository,
	mentors *mentor.MentorRepository,
	students *student.StudentRepository,
	tx store.Transactor,
	cfg *config.AppConfig,
	log *zap.Logger,
) *batch.BatchService {
	return batch.NewBatchService(repo, institutes, mentors, students, tx, cfg, log)
}

func newNotificationService(repo *notification.NotificationRepository, sender notification.Sender, log *zap.Logger) *notification.NotificationService {
	return notification.NewNotificationService(repo, sender, log)
}
