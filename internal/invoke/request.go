// Package invoke runs one cursor-agent process per request: it composes the
// argument vector, supervises the child under a hard timeout, an optional
// idle limit and the caller's context, and assembles a single Result.
package invoke

import (
	"fmt"
	"strings"

	"github.com/boshu2/cursor-mcp/internal/stream"
)

// Format selects the output format requested from cursor-agent.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, json or markdown. Blank means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, markdown)", s)
	}
}

// wire maps a Format to the value passed to --output-format. cursor-agent
// has no markdown mode; its text output already is markdown.
func (f Format) wire() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Request describes one invocation. Zero values select defaults: text
// format, the base directory, the configured executable, model and force
// settings, and print mode on.
type Request struct {
	// Args are the raw argument tokens. A trailing non-flag token is the prompt.
	Args   []string
	Format Format

	// Dir is the working directory, absolute or relative to the base directory.
	Dir string

	// Executable must be blank, "cursor-agent", or the configured override.
	Executable string

	Model string
	Force *bool
	Print *bool

	// OnProgress, when set, switches the child to stream-json output and
	// receives decoded progress events synchronously in arrival order.
	OnProgress func(stream.Event)
}

func (r Request) printing() bool {
	return r.Print == nil || *r.Print
}

// Bool returns a pointer to b, for the optional Request fields.
func Bool(b bool) *bool {
	return &b
}
