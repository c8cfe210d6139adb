package safety

import (
	"sort"
	"strconv"
	"strings"

	"github.com/boshu2/cursor-mcp/internal/config"
)

// systemAllowlist names ambient variables a child may inherit verbatim.
var systemAllowlist = map[string]struct{}{
	"PATH":    {},
	"HOME":    {},
	"USER":    {},
	"LOGNAME": {},
	"SHELL":   {},
	"TMPDIR":  {},
	"TMP":     {},
	"TEMP":    {},
	"LANG":    {},
	"TERM":    {},
	// Windows equivalents.
	"SystemRoot":   {},
	"USERPROFILE":  {},
	"APPDATA":      {},
	"LOCALAPPDATA": {},
	"PATHEXT":      {},
	"COMSPEC":      {},
}

// allowedPrefixes are matched case-sensitively against ambient keys:
// cursor tool config, npm config, and locale categories.
var allowedPrefixes = []string{"CURSOR_", "npm_config_", "LC_"}

// Allowed reports whether key may be copied from the ambient environment.
func Allowed(key string) bool {
	if _, ok := systemAllowlist[key]; ok {
		return true
	}
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// BuildSafeEnvironment constructs the child environment from validated
// settings plus allow-listed entries of ambient (os.Environ form).
func BuildSafeEnvironment(ambient []string, s *config.Settings) map[string]string {
	env := make(map[string]string, 16)

	env[config.EnvClient] = string(s.Client)
	if s.Executable != "" {
		env[config.EnvAgentPath] = s.Executable
	}
	env[config.EnvDebug] = strconv.FormatBool(s.Debug)
	env[config.EnvEchoPrompt] = strconv.FormatBool(s.Echo)
	if s.Model != "" {
		env[config.EnvModel] = s.Model
	}
	env[config.EnvForce] = strconv.FormatBool(s.Force)
	env[config.EnvIdleExitMS] = strconv.FormatInt(s.IdleTimeout.Milliseconds(), 10)
	env[config.EnvTimeoutMS] = strconv.FormatInt(s.Timeout.Milliseconds(), 10)

	for _, kv := range ambient {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if _, set := env[key]; set {
			continue
		}
		if Allowed(key) {
			env[key] = value
		}
	}
	return env
}

// EnvList renders env as a sorted KEY=value slice for exec.Cmd.Env.
func EnvList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// EnvKeys returns the sorted keys of env, for logs that must not carry values.
func EnvKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
