package invoke

import (
	"fmt"
	"strings"
	"time"
)

const (
	// agentName prefixes every diagnostic about the child process.
	agentName = "cursor-agent"

	noOutput = "(no output)"

	// ActivityLogSeparator joins result text and the activity log path.
	ActivityLogSeparator = "\n\nActivity log: "
)

// Content is one text part of a Result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the single terminal report of an invocation.
type Result struct {
	Content         []Content `json:"content"`
	IsError         bool      `json:"isError,omitempty"`
	ProgressLogFile string    `json:"progressLogFile,omitempty"`

	State    State         `json:"-"`
	ExitCode int           `json:"-"`
	Elapsed  time.Duration `json:"-"`
}

// Text joins all content parts with blank lines.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n\n")
}

func textContent(s string) Content {
	return Content{Type: "text", Text: s}
}

// assemble converts a terminal outcome into a Result. prompt, when
// non-empty, is echoed as a leading part; logPath, when non-empty, is
// appended to the main text on every path.
func assemble(o outcome, prompt, logPath string) *Result {
	text, isErr := describe(o)
	if logPath != "" {
		text += ActivityLogSeparator + logPath
	}

	res := &Result{
		IsError:         isErr,
		ProgressLogFile: logPath,
		State:           o.State,
		ExitCode:        o.ExitCode,
		Elapsed:         o.Elapsed,
	}
	if prompt != "" {
		res.Content = append(res.Content, textContent("Prompt: "+prompt))
	}
	res.Content = append(res.Content, textContent(text))
	return res
}

// describe returns the main result text and whether it reports an error.
func describe(o outcome) (string, bool) {
	stdout := strings.TrimSpace(o.Stdout)
	switch o.State {
	case StateSucceeded:
		if stdout == "" {
			return noOutput, false
		}
		return stdout, false

	case StateIdleKilled:
		// Any captured output counts, even whitespace.
		if len(o.Stdout) > 0 {
			if stdout == "" {
				return noOutput, false
			}
			return stdout, false
		}
		return fmt.Sprintf("%s produced no output for %s and was stopped", agentName, o.Limit), true

	case StateTimedOut:
		return fmt.Sprintf("%s timed out after %s", agentName, o.Limit), true

	case StateCancelled:
		reason := "cancelled"
		if o.Err != nil {
			reason = o.Err.Error()
		}
		if o.PreSpawn {
			return "cancelled before start: " + reason, true
		}
		return fmt.Sprintf("%s invocation cancelled: %s", agentName, reason), true

	case StateFailed:
		if o.SpawnFailed {
			return fmt.Sprintf("failed to start %s: %v", agentName, o.Err), true
		}
		detail := strings.TrimSpace(o.Stderr)
		if detail == "" {
			detail = stdout
		}
		if detail == "" {
			detail = noOutput
		}
		return fmt.Sprintf("%s exited with code %d: %s", agentName, o.ExitCode, detail), true
	}
	return fmt.Sprintf("%s ended in unexpected state %s", agentName, o.State), true
}
