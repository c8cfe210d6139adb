// Package tools maps named, human-level operations onto cursor-agent
// invocation requests.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/boshu2/cursor-mcp/internal/invoke"
	"github.com/boshu2/cursor-mcp/internal/safety"
)

// Tool names.
const (
	Run          = "run"
	EditFile     = "edit_file"
	AnalyzeFiles = "analyze_files"
	SearchRepo   = "search_repo"
	PlanTask     = "plan_task"
)

// Input carries the fields any tool may read. Each tool documents which
// ones it requires; the rest are ignored.
type Input struct {
	Args        []string `yaml:"args,omitempty" json:"args,omitempty"`
	Prompt      string   `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	File        string   `yaml:"file,omitempty" json:"file,omitempty"`
	Instruction string   `yaml:"instruction,omitempty" json:"instruction,omitempty"`
	Paths       []string `yaml:"paths,omitempty" json:"paths,omitempty"`
	Question    string   `yaml:"question,omitempty" json:"question,omitempty"`
	Query       string   `yaml:"query,omitempty" json:"query,omitempty"`
	Include     []string `yaml:"include,omitempty" json:"include,omitempty"`
	Goal        string   `yaml:"goal,omitempty" json:"goal,omitempty"`
	Constraints []string `yaml:"constraints,omitempty" json:"constraints,omitempty"`

	// Invocation overrides shared by every tool.
	Dir    string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Model  string `yaml:"model,omitempty" json:"model,omitempty"`
	Force  *bool  `yaml:"force,omitempty" json:"force,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Tool is one named operation.
type Tool struct {
	Name        string
	Description string
	build       func(base string, in Input) ([]string, error)
}

// Catalog is the set of available tools.
type Catalog struct {
	tools map[string]Tool
}

// NewCatalog returns the built-in tools.
func NewCatalog() *Catalog {
	c := &Catalog{tools: make(map[string]Tool)}
	for _, t := range []Tool{
		{Name: Run, Description: "Pass raw arguments to cursor-agent; prompt is appended last", build: buildRun},
		{Name: EditFile, Description: "Edit one file inside the base directory per an instruction", build: buildEdit},
		{Name: AnalyzeFiles, Description: "Answer a question about a set of files", build: buildAnalyze},
		{Name: SearchRepo, Description: "Search the repository for code matching a query", build: buildSearch},
		{Name: PlanTask, Description: "Produce a step-by-step plan for a goal", build: buildPlan},
	} {
		c.tools[t.Name] = t
	}
	return c
}

// Names lists tool names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named tool.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Build validates in and turns it into a request. base is the directory
// file paths must stay within.
func (c *Catalog) Build(name, base string, in Input) (invoke.Request, error) {
	t, ok := c.tools[name]
	if !ok {
		return invoke.Request{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, strings.Join(c.Names(), ", "))
	}
	args, err := t.build(base, in)
	if err != nil {
		return invoke.Request{}, fmt.Errorf("%s: %w", name, err)
	}
	format, err := invoke.ParseFormat(in.Format)
	if err != nil {
		return invoke.Request{}, fmt.Errorf("%s: %w", name, err)
	}
	return invoke.Request{
		Args:   args,
		Format: format,
		Dir:    in.Dir,
		Model:  in.Model,
		Force:  in.Force,
	}, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingInput, field)
	}
	return nil
}

func buildRun(_ string, in Input) ([]string, error) {
	if len(in.Args) == 0 && strings.TrimSpace(in.Prompt) == "" {
		return nil, fmt.Errorf("%w: args or prompt", ErrMissingInput)
	}
	args := append([]string(nil), in.Args...)
	if p := strings.TrimSpace(in.Prompt); p != "" {
		args = append(args, p)
	}
	return args, nil
}

func buildEdit(base string, in Input) ([]string, error) {
	if err := required("instruction", in.Instruction); err != nil {
		return nil, err
	}
	path, err := safety.ValidateFilePath(base, in.File)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Edit the file %s.\n\nInstruction: %s", path, strings.TrimSpace(in.Instruction))
	return []string{prompt}, nil
}

func buildAnalyze(base string, in Input) ([]string, error) {
	if err := required("question", in.Question); err != nil {
		return nil, err
	}
	if len(in.Paths) == 0 {
		return nil, fmt.Errorf("%w: paths", ErrMissingInput)
	}
	var b strings.Builder
	b.WriteString("Analyze the following files:\n")
	for _, raw := range in.Paths {
		path, err := safety.ValidateFilePath(base, raw)
		if err != nil {
			return nil, err
		}
		b.WriteString("- " + path + "\n")
	}
	b.WriteString("\nQuestion: " + strings.TrimSpace(in.Question))
	return []string{b.String()}, nil
}

func buildSearch(_ string, in Input) ([]string, error) {
	if err := required("query", in.Query); err != nil {
		return nil, err
	}
	prompt := "Search the repository for: " + strings.TrimSpace(in.Query)
	if len(in.Include) > 0 {
		prompt += "\n\nOnly consider files matching: " + strings.Join(in.Include, ", ")
	}
	prompt += "\n\nReport each match as path:line with a one-line explanation."
	return []string{prompt}, nil
}

func buildPlan(_ string, in Input) ([]string, error) {
	if err := required("goal", in.Goal); err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("Create a step-by-step implementation plan for: " + strings.TrimSpace(in.Goal))
	if len(in.Constraints) > 0 {
		b.WriteString("\n\nConstraints:")
		for _, c := range in.Constraints {
			b.WriteString("\n- " + c)
		}
	}
	b.WriteString("\n\nDo not modify any files.")
	return []string{b.String()}, nil
}
