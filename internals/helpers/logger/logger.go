package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kanisa_backend/internals/configs"
)

// L is the process-wide logger. It starts as a no-op so packages used from
// tests never need Init.
var L = zap.NewNop()

func Init(cfg *configs.Config) *zap.Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel))

	core := zapcore.NewCore(buildEncoder(cfg), zapcore.AddSync(os.Stdout), level)
	L = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	L.Info("logger initialized",
		zap.String("level", strings.ToUpper(cfg.LogLevel)),
		zap.String("format", cfg.LogFormat),
		zap.String("environment", cfg.Environment),
	)
	return L
}

func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

func buildEncoder(cfg *configs.Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if cfg.IsDevelopment() || strings.EqualFold(cfg.LogFormat, "console") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
