package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

// New builds the server logger. fields are attached to every entry, typically the
// service name.
func New(cfg config.LogConfig, fields ...zap.Field) (*zap.Logger, error) {
	return build(cfg, parseLevel(cfg.Level, zapcore.InfoLevel), fields...)
}

// NewCLI builds the logger for one-shot commands. Output goes to stderr so stdout stays
// clean for tables and JSON, and the default level is raised to warn so adapter
// chatter does not bury the results.
func NewCLI(cfg config.LogConfig) (*zap.Logger, error) {
	cfg.Output = "stderr"
	level := zapcore.WarnLevel
	if l := strings.ToLower(strings.TrimSpace(cfg.Level)); l != "" && l != "info" {
		level = parseLevel(l, zapcore.WarnLevel)
	}
	return build(cfg, level)
}

// ForSource scopes a logger to one discovery source. A nil base yields a no-op logger.
func ForSource(base *zap.Logger, source models.DataSource) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	name := strings.ToLower(string(source))
	return base.Named(name).With(zap.String("source", name))
}

func parseLevel(s string, fallback zapcore.Level) zapcore.Level {
	level := fallback
	if err := level.Set(strings.ToLower(strings.TrimSpace(s))); err != nil {
		return fallback
	}
	return level
}

func build(cfg config.LogConfig, level zapcore.Level, fields ...zap.Field) (*zap.Logger, error) {
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}

	enc := zap.NewProductionEncoderConfig()
	if encoding == "console" {
		enc = zap.NewDevelopmentEncoderConfig()
	}
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		EncoderConfig:     enc,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}
	// Discovery passes log one line per record at debug; sample so a large pass
	// cannot flood the sink.
	if cfg.Sampling {
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}
	return zc.Build(zap.Fields(fields...))
}
