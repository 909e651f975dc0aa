package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

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
	"MentorDesk/internal/principal"
	"MentorDesk/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEchoServer(lc fx.Lifecycle, cfg *config.AppConfig, log *zap.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	middleware.Setup(e, cfg, log, m)
	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("server listening", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

type Handlers struct {
	fx.In

	Auth         *auth.AuthHandler
	AuthService  *auth.AuthService
	Mentor       *mentor.MentorHandler
	Allocation   *allocation.Handler
	Matching     *matching.Handler
	Import       *importer.Handler
	Institute    *institute.InstituteHandler
	Batch        *batch.BatchHandler
	Notification *notification.NotificationHandler
	RBAC         *middleware.RBAC
	Metrics      *metrics.Metrics
	Mongo        *mongo.Client
	Config       *config.AppConfig
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", health(h.Mongo))
	e.GET("/metrics", echo.WrapHandler(h.Metrics.Handler()))

	api := e.Group("/api")
	authenticate := middleware.JWT(h.AuthService, auth.CookieName)
	requireAdmin := []echo.MiddlewareFunc{authenticate, h.RBAC.Authorize()}
	session := []echo.MiddlewareFunc{authenticate, h.RBAC.RequireRole(principal.RoleAdmin)}

	authGroup := api.Group("/auth", middleware.AuthRateLimit(h.Config.AuthRateLimit))
	adminAuth := authGroup.Group("/admin")
	adminAuth.POST("/register", h.Auth.Register)
	adminAuth.POST("/login", h.Auth.Login)
	adminAuth.POST("/forgetpassword", h.Auth.ForgotPassword)
	adminAuth.PUT("/resetpassword/:token", h.Auth.ResetPassword(auth.KindAdmin))
	adminAuth.GET("/logout", h.Auth.Logout, session...)
	adminAuth.GET("/user", h.Auth.Profile, session...)
	authGroup.PUT("/student/resetpassword/:token", h.Auth.ResetPassword(auth.KindStudent))
	authGroup.PUT("/mentor/resetpassword/:token", h.Auth.ResetPassword(auth.KindMentor))

	mentors := api.Group("/mentor", requireAdmin...)
	mentors.GET("/getmentor", h.Mentor.List)
	mentors.GET("/getMentor/:id", h.Mentor.Get)
	mentors.PUT("/verify/:id", h.Mentor.Verify)
	mentors.GET("/getstudent/:id", h.Mentor.Students)
	mentors.POST("/import/:instituteId", h.Import.ImportTeachers)

	students := api.Group("/student", requireAdmin...)
	students.POST("/allocate-student/:mentorId", h.Allocation.Allocate)
	students.POST("/deallocate-student", h.Allocation.Deallocate)
	students.GET("/getmentorstudent", h.Matching.Candidates)
	students.POST("/import/:instituteId", h.Import.ImportStudents)

	institutes := api.Group("/institute", requireAdmin...)
	institutes.POST("/create", h.Institute.Create)
	institutes.GET("/my", h.Institute.Mine)
	institutes.GET("/:id", h.Institute.Get)
	institutes.PUT("/:id", h.Institute.Update)

	batches := api.Group("/batch", requireAdmin...)
	batches.POST("/create", h.Batch.Create)
	batches.GET("/all", h.Batch.List)
	batches.GET("/:id", h.Batch.Get)
	batches.PUT("/:id", h.Batch.Update)
	batches.DELETE("/:id", h.Batch.Delete)
	batches.POST("/:id/regenerate-code", h.Batch.RegenerateCode)
	batches.POST("/:id/students", h.Batch.Enroll)
	batches.POST("/:id/classes", h.Batch.RecordClass)
	batches.POST("/:id/report", h.Batch.Report)

	notifications := api.Group("/notification", requireAdmin...)
	notifications.POST("/schedule", h.Notification.Schedule)
	notifications.GET("/all", h.Notification.List)
	notifications.DELETE("/:id", h.Notification.Delete)
}

func health(client *mongo.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "mongo": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	}
}
