package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/boshu2/cursor-mcp/internal/invoke"
)

// MarkdownFormatter renders a result as a markdown section with a status
// heading, the content parts, and a link to the activity log.
type MarkdownFormatter struct {
	tmpl *template.Template
}

// NewMarkdownFormatter creates a markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{
		tmpl: template.Must(template.New("result").Funcs(template.FuncMap{
			"trim": strings.TrimSpace,
		}).Parse(markdownTemplate)),
	}
}

// templateData holds the fields the markdown template renders.
type templateData struct {
	Status  string
	IsError bool
	Elapsed string
	Parts   []string
	LogFile string
}

// Format writes r as markdown.
func (mf *MarkdownFormatter) Format(w io.Writer, r *invoke.Result) error {
	data := templateData{
		Status:  r.State.String(),
		IsError: r.IsError,
		LogFile: r.ProgressLogFile,
	}
	if r.Elapsed > 0 {
		data.Elapsed = r.Elapsed.Round(10 * time.Millisecond).String()
	}
	for _, c := range r.Content {
		text := c.Text
		if r.ProgressLogFile != "" {
			text = strings.TrimSuffix(text, invoke.ActivityLogSeparator+r.ProgressLogFile)
		}
		data.Parts = append(data.Parts, text)
	}
	if err := mf.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	return nil
}

const markdownTemplate = `## cursor-agent: {{ .Status }}{{ if .IsError }} (error){{ end }}
{{- if .Elapsed }}

_Elapsed: {{ .Elapsed }}_
{{- end }}
{{ range .Parts }}
{{ trim . }}
{{ end }}
{{- if .LogFile }}
---
Activity log: ` + "`{{ .LogFile }}`" + `
{{ end -}}
`
