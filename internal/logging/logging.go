// Package logging builds the launcher's structured logger: a zap.Config
// assembled from a small Level/Format/OutputPath triple rather than a
// canned zap.NewProduction()/NewDevelopment() call, so the launcher's
// own config layer controls it end to end.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger's level, encoding, and sink.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or a file path
}

// New builds a *zap.Logger from cfg. An unparseable Level falls back to
// info rather than failing logger construction — a bad log-level
// config value should not keep the launcher from starting.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	output := cfg.OutputPath
	if output == "" {
		output = "stderr"
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         nonEmptyOr(cfg.Format, "json"),
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zcfg.Build()
}

func nonEmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ChildLogFunc adapts a *zap.Logger into a protocol.LogFunc-shaped
// closure for a script session's stderr lines (internal/protocol.LogFunc).
func ChildLogFunc(logger *zap.Logger, scriptPath string) func(line string) {
	named := logger.With(zap.String("script", scriptPath))
	return func(line string) {
		named.Info("script stderr", zap.String("line", line))
	}
}
