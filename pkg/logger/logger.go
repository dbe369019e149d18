// Package logger provides structured logging utilities.
//
// The package keeps a printf-style API for call sites while writing structured
// entries through zap. When a file path is configured, entries are also written
// to a rotating log file.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the global logger.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Development switches to a human readable console encoder with caller info.
	Development bool
	// FilePath enables a rotated JSON log file next to console output.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// Initialize sets up the global logger.
func Initialize(opts Options) error {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	var consoleEncoder zapcore.Encoder
	if opts.Development {
		devConfig := encoderConfig
		devConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(devConfig)
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	zapOpts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development())
	}

	base = zap.New(zapcore.NewTee(cores...), zapOpts...)
	sugar = base.Sugar()
	return nil
}

// Debug logs debug messages.
func Debug(message string, args ...any) {
	sugar.Debugf(message, args...)
}

// Info logs informational messages.
func Info(message string, args ...any) {
	sugar.Infof(message, args...)
}

// Warn logs warnings.
func Warn(message string, args ...any) {
	sugar.Warnf(message, args...)
}

// Error logs error messages.
func Error(message string, args ...any) {
	sugar.Errorf(message, args...)
}

// Fatal logs fatal messages and terminates the program.
func Fatal(message string, args ...any) {
	sugar.Fatalf(message, args...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = base.Sync()
}
