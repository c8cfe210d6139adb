package formatter

import (
	"encoding/json"
	"io"

	"github.com/boshu2/cursor-mcp/internal/invoke"
)

// JSONFormatter writes the public result shape as one JSON document.
type JSONFormatter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONFormatter creates an indented JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Pretty: true}
}

// Format encodes r.
func (jf *JSONFormatter) Format(w io.Writer, r *invoke.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // Agent output routinely contains < > &
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}
