// Package logging builds the zap loggers used for command-line diagnostics.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w at info level, or debug level
// when debug is set. Output goes to stderr in the CLI so stdout carries only
// results.
func New(debug bool, w io.Writer) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Quiet returns a logger that only reports warnings and errors, for runs
// where per-invocation info lines would drown the result.
func Quiet(w io.Writer) *zap.Logger {
	return New(false, w).WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
}

// Component tags l with the emitting component.
func Component(l *zap.Logger, name string) *zap.Logger {
	return l.With(zap.String("component", name))
}
