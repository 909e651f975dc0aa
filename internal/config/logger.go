package config

import (
	"go.uber.org/zap"
)

func NewLogger(cfg *AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
