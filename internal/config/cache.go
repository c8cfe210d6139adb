package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// Options controls where configuration layers are read from.
type Options struct {
	// Flags contains command-line overrides; nil means none.
	Flags *Config
	// EnvLookup returns environment variable values; defaults to os.Getenv.
	EnvLookup func(string) string
	// HomePath and ProjectPath override the default config file locations.
	HomePath    string
	ProjectPath string
}

func (o Options) lookup() func(string) string {
	if o.EnvLookup != nil {
		return o.EnvLookup
	}
	return os.Getenv
}

// layers holds the per-source configs needed for resolution and display.
type layers struct {
	home    *Config
	project *Config
	flags   *Config
}

func readLayers(opts Options) (layers, error) {
	lookup := opts.lookup()
	homePath := opts.HomePath
	if homePath == "" {
		homePath = homeConfigPath()
	}
	projectPath := opts.ProjectPath
	if projectPath == "" {
		projectPath = projectConfigPath(lookup)
	}

	home, err := loadOptional(homePath)
	if err != nil {
		return layers{}, err
	}
	project, err := loadOptional(projectPath)
	if err != nil {
		return layers{}, err
	}
	return layers{home: home, project: project, flags: opts.Flags}, nil
}

// fileConfig merges defaults < home < project.
func (l layers) fileConfig() *Config {
	cfg := Default()
	cfg = merge(cfg, l.home)
	cfg = merge(cfg, l.project)
	return cfg
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(opts Options) (*Config, error) {
	l, err := readLayers(opts)
	if err != nil {
		return nil, err
	}
	lookup := opts.lookup()
	cfg, err := applyEnv(l.fileConfig(), TakeSnapshot(lookup))
	if err != nil {
		return nil, err
	}
	applyPathEnv(cfg, lookup)
	return merge(cfg, l.flags), nil
}

// applyPathEnv applies the variables that are read once at startup.
func applyPathEnv(cfg *Config, lookup func(string) string) {
	if v := strings.TrimSpace(lookup(EnvRoot)); v != "" {
		cfg.BaseDir = v
	}
	if v := strings.TrimSpace(lookup(EnvLogDir)); v != "" {
		cfg.LogDir = v
	}
	if v := strings.TrimSpace(lookup(EnvOutput)); v != "" {
		cfg.Output = v
	}
}

// Cache serves validated Settings, recomputing them only when the snapshot
// of recognized variables changes. Recomputation is idempotent, so
// concurrent callers may race; the last store wins.
type Cache struct {
	lookup  func(string) string
	layers  layers
	base    *Config
	current atomic.Pointer[cacheEntry]
}

type cacheEntry struct {
	key      string
	settings *Settings
}

// NewCache reads config files once and fixes the base and log directories.
func NewCache(opts Options) (*Cache, error) {
	l, err := readLayers(opts)
	if err != nil {
		return nil, err
	}
	lookup := opts.lookup()

	base := l.fileConfig()
	applyPathEnv(base, lookup)
	base = merge(base, l.flags)

	if base.BaseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve base directory: %w", err)
		}
		base.BaseDir = cwd
	}
	abs, err := filepath.Abs(base.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", base.BaseDir, err)
	}
	base.BaseDir = abs

	if base.LogDir == "" {
		base.LogDir = DefaultLogDir()
	}

	c := &Cache{lookup: lookup, layers: l, base: base}
	if _, err := c.Current(); err != nil {
		return nil, err
	}
	return c, nil
}

// Current returns Settings for the present environment.
func (c *Cache) Current() (*Settings, error) {
	snap := TakeSnapshot(c.lookup)
	key := snap.Key()
	if e := c.current.Load(); e != nil && e.key == key {
		return e.settings, nil
	}

	cfg, err := applyEnv(clone(c.base), snap)
	if err != nil {
		return nil, err
	}
	// Flags beat the environment; the directories were fixed at construction.
	cfg = merge(cfg, c.layers.flags)
	cfg.BaseDir = c.base.BaseDir
	cfg.LogDir = c.base.LogDir

	s, err := Validate(cfg)
	if err != nil {
		return nil, err
	}
	c.current.Store(&cacheEntry{key: key, settings: s})
	return s, nil
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.cursor-mcp/config.yaml"
	SourceProject Source = ".cursor-mcp/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  string `json:"value" yaml:"value"`
	Source Source `json:"source" yaml:"source"`
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output     resolved `json:"output" yaml:"output"`
	BaseDir    resolved `json:"base_dir" yaml:"base_dir"`
	LogDir     resolved `json:"log_dir" yaml:"log_dir"`
	Client     resolved `json:"client" yaml:"client"`
	Debug      resolved `json:"debug" yaml:"debug"`
	AgentPath  resolved `json:"agent_path" yaml:"agent_path"`
	Model      resolved `json:"model" yaml:"model"`
	Force      resolved `json:"force" yaml:"force"`
	TimeoutMS  resolved `json:"timeout_ms" yaml:"timeout_ms"`
	IdleExitMS resolved `json:"idle_exit_ms" yaml:"idle_exit_ms"`
	EchoPrompt resolved `json:"echo_prompt" yaml:"echo_prompt"`
}

// field extracts one string-rendered value from a possibly nil layer.
func field(cfg *Config, get func(*Config) string) string {
	if cfg == nil {
		return ""
	}
	return get(cfg)
}

func boolString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func (c *Cache) Resolve() *ResolvedConfig {
	l := c.layers
	chain := func(get func(*Config) string, envKey, def string) resolved {
		env := ""
		if envKey != "" {
			env = strings.TrimSpace(c.lookup(envKey))
		}
		return resolveStringField(field(l.home, get), field(l.project, get), env, field(l.flags, get), def)
	}

	return &ResolvedConfig{
		Output:     chain(func(c *Config) string { return c.Output }, EnvOutput, defaultOutput),
		BaseDir:    resolved{Value: c.base.BaseDir, Source: chain(func(c *Config) string { return c.BaseDir }, EnvRoot, "").Source},
		LogDir:     chain(func(c *Config) string { return c.LogDir }, EnvLogDir, DefaultLogDir()),
		Client:     chain(func(c *Config) string { return c.Client }, EnvClient, defaultClient),
		Debug:      chain(func(c *Config) string { return boolString(c.Debug) }, EnvDebug, "false"),
		AgentPath:  chain(func(c *Config) string { return c.Agent.Path }, EnvAgentPath, ""),
		Model:      chain(func(c *Config) string { return c.Agent.Model }, EnvModel, ""),
		Force:      chain(func(c *Config) string { return boolString(c.Agent.Force) }, EnvForce, "false"),
		TimeoutMS:  chain(func(c *Config) string { return intString(c.Agent.TimeoutMS) }, EnvTimeoutMS, strconv.Itoa(defaultTimeoutMS)),
		IdleExitMS: chain(func(c *Config) string { return intString(c.Agent.IdleExitMS) }, EnvIdleExitMS, "0"),
		EchoPrompt: chain(func(c *Config) string { return boolString(c.Agent.EchoPrompt) }, EnvEchoPrompt, "false"),
	}
}
