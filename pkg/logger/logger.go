// Package logger builds the zap loggers used across the service.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given level ("debug", "info", "warn",
// "error") and format ("json" or "console"). Unknown levels fall back to
// info, unknown formats to json.
func New(level, format string) *zap.Logger {
	atomic := zap.NewAtomicLevel()
	switch level {
	case "debug":
		atomic.SetLevel(zapcore.DebugLevel)
	case "info":
		atomic.SetLevel(zapcore.InfoLevel)
	case "warn":
		atomic.SetLevel(zapcore.WarnLevel)
	case "error":
		atomic.SetLevel(zapcore.ErrorLevel)
	default:
		atomic.SetLevel(zapcore.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomic)
	return zap.New(core, zap.AddCaller())
}
