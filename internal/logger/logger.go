// Package logger builds the zap logger shared by lector components.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerConfig selects level, encoding and development behavior.
type ZapLoggerConfig struct {
	IsDevelopment     bool
	Encoding          string // "json" or "console"
	Level             string // debug, info, warn, error
	DisableCaller     bool
	DisableStacktrace bool

	// OutputPaths defaults to stderr so that stdout stays free for command
	// output.
	OutputPaths []string
}

// DefaultConfig is a quiet console logger for interactive use.
func DefaultConfig() *ZapLoggerConfig {
	return &ZapLoggerConfig{
		Encoding:          "console",
		Level:             "warn",
		DisableCaller:     true,
		DisableStacktrace: true,
	}
}

// NewZapLogger builds a logger from cfg. A nil cfg uses DefaultConfig.
func NewZapLogger(cfg *ZapLoggerConfig) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.IsDevelopment {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	switch cfg.Encoding {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("log encoding %q: must be json or console", cfg.Encoding)
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace
	zc.Sampling = nil

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	zc.OutputPaths = outputs
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
