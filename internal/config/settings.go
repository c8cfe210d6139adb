package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Client is the identity of the host process driving cursor-mcp.
type Client string

const (
	ClientGeneric Client = "generic"
	ClientClaude  Client = "claude"
	ClientCursor  Client = "cursor"
	ClientVSCode  Client = "vscode"
)

// ParseClient canonicalizes and validates a client identity.
// Empty input yields ClientGeneric.
func ParseClient(s string) (Client, error) {
	switch c := Client(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ClientGeneric, nil
	case ClientGeneric, ClientClaude, ClientCursor, ClientVSCode:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: generic|claude|cursor|vscode)", ErrUnknownClient, s)
	}
}

// Settings is the validated, immutable configuration an invocation runs
// with. Values are never mutated after Validate returns them.
type Settings struct {
	// Executable is the absolute override path, or empty for PATH lookup.
	Executable string
	Model      string
	Force      bool
	Timeout    time.Duration
	// IdleTimeout of zero disables idle-kill.
	IdleTimeout time.Duration
	Echo        bool
	Debug       bool
	Client      Client
	// BaseDir is absolute and cleaned.
	BaseDir string
	// LogDir is empty when activity logs are disabled.
	LogDir string
}

// Validate turns a fully layered Config into Settings.
func Validate(cfg *Config) (*Settings, error) {
	s := &Settings{
		Model: strings.TrimSpace(cfg.Agent.Model),
		Force: boolValue(cfg.Agent.Force),
		Echo:  boolValue(cfg.Agent.EchoPrompt),
		Debug: boolValue(cfg.Debug),
	}

	exe := strings.TrimSpace(cfg.Agent.Path)
	if exe != "" && !filepath.IsAbs(exe) {
		return nil, fmt.Errorf("%w: %q", ErrRelativeExecutable, exe)
	}
	s.Executable = exe

	switch {
	case cfg.Agent.TimeoutMS < 0:
		return nil, fmt.Errorf("%w: timeout_ms=%d must not be negative", ErrInvalidValue, cfg.Agent.TimeoutMS)
	case cfg.Agent.TimeoutMS == 0:
		s.Timeout = defaultTimeoutMS * time.Millisecond
	default:
		s.Timeout = time.Duration(cfg.Agent.TimeoutMS) * time.Millisecond
	}
	if cfg.Agent.IdleExitMS < 0 {
		return nil, fmt.Errorf("%w: idle_exit_ms=%d must not be negative", ErrInvalidValue, cfg.Agent.IdleExitMS)
	}
	s.IdleTimeout = time.Duration(cfg.Agent.IdleExitMS) * time.Millisecond

	client, err := ParseClient(cfg.Client)
	if err != nil {
		return nil, err
	}
	s.Client = client

	if cfg.BaseDir == "" || !filepath.IsAbs(cfg.BaseDir) {
		return nil, fmt.Errorf("%w: base_dir %q must be absolute", ErrInvalidValue, cfg.BaseDir)
	}
	s.BaseDir = filepath.Clean(cfg.BaseDir)

	if cfg.LogDir != logDirOff {
		s.LogDir = cfg.LogDir
	}
	return s, nil
}

// recognizedVars lists the variables whose values key the settings cache.
var recognizedVars = []string{
	EnvAgentPath,
	EnvModel,
	EnvForce,
	EnvTimeoutMS,
	EnvIdleExitMS,
	EnvEchoPrompt,
	EnvDebug,
	EnvClient,
}

// RecognizedVars returns the names of the recognized agent variables.
func RecognizedVars() []string {
	return append([]string(nil), recognizedVars...)
}

// Snapshot holds the set (non-empty) recognized variables at one instant.
type Snapshot map[string]string

// TakeSnapshot reads the recognized variables through lookup.
func TakeSnapshot(lookup func(string) string) Snapshot {
	snap := make(Snapshot, len(recognizedVars))
	for _, key := range recognizedVars {
		if v := lookup(key); v != "" {
			snap[key] = v
		}
	}
	return snap
}

// Key renders the snapshot as a stable string for cache comparison.
func (s Snapshot) Key() string {
	var b strings.Builder
	for _, key := range recognizedVars {
		v, ok := s[key]
		if !ok {
			continue
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(0)
	}
	return b.String()
}
