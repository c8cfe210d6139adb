package formatter

import (
	"io"
	"strings"

	"github.com/boshu2/cursor-mcp/internal/invoke"
)

// TextFormatter writes the result text as-is, one trailing newline.
type TextFormatter struct{}

// Format writes r's content parts separated by blank lines.
func (TextFormatter) Format(w io.Writer, r *invoke.Result) error {
	text := strings.TrimRight(r.Text(), "\n")
	_, err := io.WriteString(w, text+"\n")
	return err
}
