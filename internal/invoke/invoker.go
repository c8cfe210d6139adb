package invoke

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boshu2/cursor-mcp/internal/config"
	"github.com/boshu2/cursor-mcp/internal/safety"
	"github.com/boshu2/cursor-mcp/internal/stream"
)

// SettingsSource supplies the validated settings for each invocation.
// *config.Cache satisfies it.
type SettingsSource interface {
	Current() (*config.Settings, error)
}

// Invoker runs cursor-agent requests. It holds no per-invocation state and
// is safe for concurrent use.
type Invoker struct {
	src     SettingsSource
	logger  *zap.Logger
	environ func() []string
	grace   time.Duration
	now     func() time.Time
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(iv *Invoker) {
		if l != nil {
			iv.logger = l
		}
	}
}

// WithEnviron replaces os.Environ as the ambient environment source.
func WithEnviron(fn func() []string) Option {
	return func(iv *Invoker) {
		if fn != nil {
			iv.environ = fn
		}
	}
}

// WithGracePeriod bounds output draining after a kill.
func WithGracePeriod(d time.Duration) Option {
	return func(iv *Invoker) {
		iv.grace = d
	}
}

// New returns an Invoker reading settings from src.
func New(src SettingsSource, opts ...Option) *Invoker {
	iv := &Invoker{
		src:     src,
		logger:  zap.NewNop(),
		environ: os.Environ,
		grace:   defaultGrace,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Invoke validates req and runs one cursor-agent process for it.
//
// Configuration and validation failures (safety.ErrInvalidExecutable,
// safety.ErrPathEscape, config errors) are returned before any process is
// created. Once validation passes, every outcome is reported as a Result
// and the error is nil.
func (iv *Invoker) Invoke(ctx context.Context, req Request) (*Result, error) {
	settings, err := iv.src.Current()
	if err != nil {
		return nil, err
	}
	exe, err := safety.ValidateExecutable(req.Executable, settings.Executable)
	if err != nil {
		return nil, err
	}
	dir, err := safety.ValidateWorkingDirectory(settings.BaseDir, req.Dir)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	env := safety.BuildSafeEnvironment(iv.environ(), settings)
	argv := ComposeArgv(req.Args, ArgvOptions{
		Print:  req.printing(),
		Format: format,
		Stream: req.OnProgress != nil,
		Force:  resolveForce(req.Force, settings.Force),
		Model:  resolveModel(req.Model, settings.Model),
	})

	id := uuid.New()
	activity := openActivityLog(settings.LogDir, iv.now(), id)
	defer activity.Close()

	logger := iv.logger.With(zap.String("invocation", id.String()))
	logger.Debug("composed invocation",
		zap.String("executable", exe),
		zap.Strings("argv", argv),
		zap.String("cwd", dir),
		zap.Strings("env_keys", safety.EnvKeys(env)),
	)
	activity.start(argv, dir, safety.EnvKeys(env))

	sup := &supervisor{
		path:    exe,
		argv:    argv,
		dir:     dir,
		env:     safety.EnvList(env),
		timeout: settings.Timeout,
		idle:    settings.IdleTimeout,
		grace:   iv.grace,
		onState: activity.state,
	}
	var dec *stream.Decoder
	if req.OnProgress != nil {
		observe := req.OnProgress
		dec = stream.NewDecoder(func(ev stream.Event) {
			activity.progress(ev)
			observe(ev)
		})
		sup.onStdout = func(chunk []byte) { _, _ = dec.Write(chunk) }
	}

	o := sup.run(ctx)
	if dec != nil && spawned(o) {
		dec.Flush()
	}
	activity.finish(o)

	logger.Info("cursor-agent finished",
		zap.Stringer("state", o.State),
		zap.Int("exit_code", o.ExitCode),
		zap.Duration("elapsed", o.Elapsed),
	)

	var prompt string
	if settings.Echo {
		prompt, _ = TrailingPrompt(req.Args)
	}
	return assemble(o, prompt, activity.Path()), nil
}

// spawned reports whether a child process existed for o.
func spawned(o outcome) bool {
	return !o.PreSpawn && !o.SpawnFailed
}

func resolveForce(perCall *bool, def bool) bool {
	if perCall != nil {
		return *perCall
	}
	return def
}

func resolveModel(perCall, def string) string {
	if perCall != "" {
		return perCall
	}
	return def
}
