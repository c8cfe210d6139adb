// Package formatter renders invocation results for the command line.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/boshu2/cursor-mcp/internal/invoke"
)

// Formatter writes one invocation result to w.
type Formatter interface {
	Format(w io.Writer, r *invoke.Result) error
}

// For returns the formatter registered under name: text, json, or markdown.
func For(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return TextFormatter{}, nil
	case "json":
		return NewJSONFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (valid: text, json, markdown)", name)
	}
}
