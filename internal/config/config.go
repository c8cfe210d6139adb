// Package config provides configuration management for cursor-mcp.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CURSOR_AGENT_*, CURSOR_MCP_*, DEBUG_CURSOR_MCP)
// 3. Project config (.cursor-mcp/config.yaml in cwd)
// 4. Home config (~/.cursor-mcp/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recognized environment variables. The agent variables form the snapshot
// key of the settings cache.
const (
	EnvAgentPath  = "CURSOR_AGENT_PATH"
	EnvModel      = "CURSOR_AGENT_MODEL"
	EnvForce      = "CURSOR_AGENT_FORCE"
	EnvTimeoutMS  = "CURSOR_AGENT_TIMEOUT_MS"
	EnvIdleExitMS = "CURSOR_AGENT_IDLE_EXIT_MS"
	EnvEchoPrompt = "CURSOR_AGENT_ECHO_PROMPT"
	EnvDebug      = "DEBUG_CURSOR_MCP"
	EnvClient     = "CURSOR_MCP_CLIENT"

	// EnvConfig names an explicit project config file.
	EnvConfig = "CURSOR_MCP_CONFIG"
	// EnvRoot overrides the base directory.
	EnvRoot = "CURSOR_MCP_ROOT"
	// EnvLogDir overrides the activity log directory ("off" disables it).
	EnvLogDir = "CURSOR_MCP_LOG_DIR"
	// EnvOutput overrides the CLI output format.
	EnvOutput = "CURSOR_MCP_OUTPUT"
)

// Config holds all cursor-mcp configuration as loaded from files and flags.
type Config struct {
	// Output controls the CLI result format (text, json, markdown).
	Output string `yaml:"output" json:"output"`

	// BaseDir is the directory every working directory and file path must
	// stay inside. Default: the process working directory.
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// LogDir is where per-invocation activity logs are written.
	// Default: $TMPDIR/cursor-mcp. "off" disables activity logs.
	LogDir string `yaml:"log_dir" json:"log_dir"`

	// Verbose enables verbose CLI output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Debug enables debug diagnostics.
	Debug *bool `yaml:"debug" json:"debug,omitempty"`

	// Client identifies the host driving cursor-mcp.
	Client string `yaml:"client" json:"client"`

	// Agent settings for the wrapped cursor-agent CLI.
	Agent AgentConfig `yaml:"agent" json:"agent"`
}

// AgentConfig holds settings passed through to every invocation.
type AgentConfig struct {
	// Path is an absolute executable override. Empty means PATH lookup.
	Path string `yaml:"path" json:"path"`

	// Model is the default model name.
	Model string `yaml:"model" json:"model"`

	// Force appends --force when the caller does not decide.
	Force *bool `yaml:"force" json:"force,omitempty"`

	// TimeoutMS is the hard wall-clock ceiling per invocation.
	// Default: 30000.
	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`

	// IdleExitMS kills the child after this much output silence.
	// Default: 0 (disabled).
	IdleExitMS int `yaml:"idle_exit_ms" json:"idle_exit_ms"`

	// EchoPrompt adds the prompt to every result.
	EchoPrompt *bool `yaml:"echo_prompt" json:"echo_prompt,omitempty"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput    = "text"
	defaultClient    = string(ClientGeneric)
	defaultTimeoutMS = 30000
	logDirOff        = "off"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: defaultOutput,
		Client: defaultClient,
		Agent: AgentConfig{
			TimeoutMS:  defaultTimeoutMS,
			IdleExitMS: 0,
		},
	}
}

// DefaultLogDir is the activity log directory used when none is configured.
func DefaultLogDir() string {
	return filepath.Join(os.TempDir(), "cursor-mcp")
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cursor-mcp", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath(lookup func(string) string) string {
	if override := strings.TrimSpace(lookup(EnvConfig)); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".cursor-mcp", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// loadOptional reads path, treating a missing file as absent.
func loadOptional(path string) (*Config, error) {
	cfg, err := loadFromPath(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// parseBool accepts 1/true/yes/on and 0/false/no/off.
func parseBool(key, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, v)
	}
}

func parseMillis(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s=%d must not be negative", ErrInvalidValue, key, n)
	}
	return n, nil
}

// applyEnv applies the recognized agent variables from snap onto cfg.
func applyEnv(cfg *Config, snap Snapshot) (*Config, error) {
	if v, ok := snap[EnvAgentPath]; ok {
		cfg.Agent.Path = strings.TrimSpace(v)
	}
	if v, ok := snap[EnvModel]; ok {
		cfg.Agent.Model = strings.TrimSpace(v)
	}
	if v, ok := snap[EnvForce]; ok {
		b, err := parseBool(EnvForce, v)
		if err != nil {
			return nil, err
		}
		cfg.Agent.Force = &b
	}
	if v, ok := snap[EnvTimeoutMS]; ok {
		n, err := parseMillis(EnvTimeoutMS, v)
		if err != nil {
			return nil, err
		}
		cfg.Agent.TimeoutMS = n
	}
	if v, ok := snap[EnvIdleExitMS]; ok {
		n, err := parseMillis(EnvIdleExitMS, v)
		if err != nil {
			return nil, err
		}
		cfg.Agent.IdleExitMS = n
	}
	if v, ok := snap[EnvEchoPrompt]; ok {
		b, err := parseBool(EnvEchoPrompt, v)
		if err != nil {
			return nil, err
		}
		cfg.Agent.EchoPrompt = &b
	}
	if v, ok := snap[EnvDebug]; ok {
		b, err := parseBool(EnvDebug, v)
		if err != nil {
			return nil, err
		}
		cfg.Debug = &b
	}
	if v, ok := snap[EnvClient]; ok {
		cfg.Client = strings.TrimSpace(v)
	}
	return cfg, nil
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// mergeBool overwrites dst with src when src was set.
func mergeBool(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	if src == nil {
		return dst
	}
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.BaseDir, src.BaseDir)
	mergeStr(&dst.LogDir, src.LogDir)
	mergeStr(&dst.Client, src.Client)
	if src.Verbose {
		dst.Verbose = true
	}
	mergeBool(&dst.Debug, src.Debug)
	mergeAgent(&dst.Agent, &src.Agent)
	return dst
}

// mergeAgent merges agent-specific config fields.
func mergeAgent(dst, src *AgentConfig) {
	mergeStr(&dst.Path, src.Path)
	mergeStr(&dst.Model, src.Model)
	mergeBool(&dst.Force, src.Force)
	mergeInt(&dst.TimeoutMS, src.TimeoutMS)
	mergeInt(&dst.IdleExitMS, src.IdleExitMS)
	mergeBool(&dst.EchoPrompt, src.EchoPrompt)
}

// clone returns a deep copy of cfg.
func clone(cfg *Config) *Config {
	out := *cfg
	out.Debug = nil
	out.Agent.Force = nil
	out.Agent.EchoPrompt = nil
	mergeBool(&out.Debug, cfg.Debug)
	mergeBool(&out.Agent.Force, cfg.Agent.Force)
	mergeBool(&out.Agent.EchoPrompt, cfg.Agent.EchoPrompt)
	return &out
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
