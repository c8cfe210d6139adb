package safety

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathLookupExecutable is the sentinel resolved through the ambient PATH.
const PathLookupExecutable = "cursor-agent"

// ValidateExecutable resolves the executable identity for one invocation.
// A blank explicit value falls back to override, or to the sentinel when no
// override is configured. Otherwise explicit must be the sentinel or exactly
// equal to override.
func ValidateExecutable(explicit, override string) (string, error) {
	if strings.TrimSpace(explicit) == "" {
		if override != "" {
			return override, nil
		}
		return PathLookupExecutable, nil
	}
	if explicit == PathLookupExecutable {
		return explicit, nil
	}
	if override != "" && explicit == override {
		return explicit, nil
	}
	return "", fmt.Errorf("%w: %q (allowed: %q or the configured override)", ErrInvalidExecutable, explicit, PathLookupExecutable)
}

// ValidateWorkingDirectory resolves raw against base and requires the result
// to be base or inside it. Blank input yields base.
func ValidateWorkingDirectory(base, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return filepath.Clean(base), nil
	}
	return contain(base, raw)
}

// ValidateFilePath applies the working-directory policy to a required path.
func ValidateFilePath(base, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrMissingPath
	}
	return contain(base, raw)
}

// contain resolves raw (relative paths against base), normalizes "..", and
// checks separator-bounded containment.
func contain(base, raw string) (string, error) {
	base = filepath.Clean(base)
	p := raw
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)
	if !Within(base, p) {
		return "", fmt.Errorf("%w: %q is outside %q", ErrPathEscape, raw, base)
	}
	return p, nil
}

// Within reports whether the cleaned absolute path p equals base or is a
// descendant of it. A shared string prefix alone is not enough.
func Within(base, p string) bool {
	if p == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
