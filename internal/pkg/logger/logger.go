package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	IsDevelopment     bool
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// NewZapLogger builds the application logger from config. Unknown levels fall
// back to info rather than failing startup.
func NewZapLogger(cfg *Config) *zap.Logger {
	var zapCfg zap.Config
	if cfg.IsDevelopment {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Encoding != "" {
		zapCfg.Encoding = cfg.Encoding
	}
	zapCfg.DisableCaller = cfg.DisableCaller
	zapCfg.DisableStacktrace = cfg.DisableStacktrace

	log, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
