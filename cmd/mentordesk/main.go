package main

import (
	"MentorDesk/internal/bootstrap"
	"MentorDesk/pkg/routes"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		routes.Infra,
		routes.Domain,
		routes.HTTP,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}
