package invoke

import "strings"

// cursor-agent flags managed by ComposeArgv.
const (
	flagPrint         = "--print"
	flagPrintShort    = "-p"
	flagOutputFormat  = "--output-format"
	flagStreamPartial = "--stream-partial-output"
	flagForce         = "--force"
	flagForceShort    = "-f"
	flagModel         = "--model"
	flagModelShort    = "-m"

	streamJSON = "stream-json"
)

// valueFlags take the following token as their value when not =-joined.
var valueFlags = map[string]bool{
	flagModel:        true,
	flagModelShort:   true,
	flagOutputFormat: true,
	"--resume":       true,
	"--api-key":      true,
}

// ArgvOptions are the resolved per-call settings ComposeArgv applies.
type ArgvOptions struct {
	Print  bool
	Format Format
	Stream bool
	Force  bool
	Model  string
}

// ComposeArgv builds the final argument vector from raw. Managed flags go
// before the caller's tokens, force and model are added only when raw does
// not already carry them, and a trailing prompt always stays last.
func ComposeArgv(raw []string, opts ArgvOptions) []string {
	out := make([]string, 0, len(raw)+8)

	if opts.Print {
		if !hasFlag(raw, flagPrintShort, flagPrint) {
			out = append(out, flagPrintShort)
		}
		switch {
		case opts.Stream:
			out = append(out, flagOutputFormat, streamJSON)
			if !hasFlag(raw, "", flagStreamPartial) {
				out = append(out, flagStreamPartial)
			}
		case !hasFlag(raw, "", flagOutputFormat):
			out = append(out, flagOutputFormat, opts.Format.wire())
		}
	}

	body := raw
	prompt, held := TrailingPrompt(raw)
	if held {
		body = raw[:len(raw)-1]
	}
	if opts.Print && opts.Stream {
		// Progress decoding needs stream-json whatever format the caller asked for.
		body = dropFlag(body, flagOutputFormat)
	}
	out = append(out, body...)

	if opts.Force && !hasFlag(raw, flagForceShort, flagForce) {
		out = append(out, flagForce)
	}
	if opts.Model != "" && !hasFlag(raw, flagModelShort, flagModel) {
		out = append(out, flagModel, opts.Model)
	}
	if held {
		out = append(out, prompt)
	}
	return out
}

// TrailingPrompt returns the last token of raw when it is a positional
// prompt: not a flag and not the value of a preceding value flag.
func TrailingPrompt(raw []string) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	last := raw[len(raw)-1]
	if strings.HasPrefix(last, "-") {
		return "", false
	}
	if len(raw) >= 2 && valueFlags[raw[len(raw)-2]] {
		return "", false
	}
	return last, true
}

// dropFlag returns raw without the value flag long, in either its
// space-joined or =-joined form. raw is not modified.
func dropFlag(raw []string, long string) []string {
	out := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		switch {
		case tok == long:
			i++
		case strings.HasPrefix(tok, long+"="):
		default:
			out = append(out, tok)
		}
	}
	return out
}

// hasFlag reports whether raw carries the flag in short or long form, bare
// or =-joined. An empty short form is skipped.
func hasFlag(raw []string, short, long string) bool {
	for _, tok := range raw {
		if tok == long || strings.HasPrefix(tok, long+"=") {
			return true
		}
		if short != "" && (tok == short || strings.HasPrefix(tok, short+"=")) {
			return true
		}
	}
	return false
}
