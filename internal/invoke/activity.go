package invoke

import (
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/boshu2/cursor-mcp/internal/stream"
)

// stderrTailBytes caps the stderr excerpt written to an activity log.
const stderrTailBytes = 4096

// activityLog records one invocation as JSON lines. A nil *activityLog is a
// valid no-op, so callers never branch on whether logging is enabled.
type activityLog struct {
	path   string
	file   *os.File
	logger *zap.Logger
}

// activityFileName names the log for invocation id started at t.
func activityFileName(t time.Time, id uuid.UUID) string {
	return "cursor-agent-" + t.Format("20060102") + "-" + id.String() + ".jsonl"
}

// openActivityLog creates the log under dir. Any failure, or a blank dir,
// yields nil and the invocation proceeds without one.
func openActivityLog(dir string, t time.Time, id uuid.UUID) *activityLog {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	path := filepath.Join(dir, activityFileName(t, id))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "record"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), zapcore.DebugLevel)

	return &activityLog{
		path:   path,
		file:   f,
		logger: zap.New(core).With(zap.String("invocation", id.String())),
	}
}

// Path returns the log file path, or "" for a nil log.
func (a *activityLog) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

func (a *activityLog) start(argv []string, dir string, envKeys []string) {
	if a == nil {
		return
	}
	a.logger.Info("start",
		zap.Strings("argv", argv),
		zap.String("cwd", dir),
		zap.Strings("env_keys", envKeys),
	)
}

func (a *activityLog) state(st State) {
	if a == nil {
		return
	}
	a.logger.Debug("state", zap.Stringer("state", st))
}

func (a *activityLog) progress(ev stream.Event) {
	if a == nil {
		return
	}
	a.logger.Info("progress",
		zap.Stringer("kind", ev.Kind),
		zap.Int("progress", ev.Progress),
		zap.Int("total", ev.Total),
		zap.String("message", ev.Message),
	)
}

func (a *activityLog) finish(o outcome) {
	if a == nil {
		return
	}
	if tail := tailString(o.Stderr, stderrTailBytes); tail != "" {
		a.logger.Info("stderr", zap.String("tail", tail))
	}
	fields := []zap.Field{
		zap.Stringer("state", o.State),
		zap.Int("exit_code", o.ExitCode),
		zap.Duration("elapsed", o.Elapsed),
		zap.Int("stdout_bytes", len(o.Stdout)),
	}
	if o.Err != nil {
		fields = append(fields, zap.Error(o.Err))
	}
	a.logger.Info("finish", fields...)
}

// Close flushes and closes the file.
func (a *activityLog) Close() error {
	if a == nil {
		return nil
	}
	_ = a.logger.Sync()
	return a.file.Close()
}

// tailString returns at most n trailing bytes of s, starting on a rune
// boundary.
func tailString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
