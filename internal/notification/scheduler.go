package notification

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const schedulerInterval = time.Minute

// NotificationScheduler periodically sends due notifications.
type NotificationScheduler struct {
	service *NotificationService
	log     *zap.Logger
}

func NewNotificationScheduler(service *NotificationService, log *zap.Logger) *NotificationScheduler {
	return &NotificationScheduler{service: service, log: log.Named("scheduler")}
}

// Start ties the polling loop to the fx lifecycle.
func (s *NotificationScheduler) Start(lc fx.Lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("starting notification scheduler", zap.Duration("interval", schedulerInterval))
			go s.run(ctx, done)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			s.log.Info("stopping notification scheduler")
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func (s *NotificationScheduler) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.service.SendDue(ctx)
		case <-ctx.Done():
			return
		}
	}
}
