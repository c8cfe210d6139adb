package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Job is one entry of a batch file.
type Job struct {
	Name  string `yaml:"name" json:"name"`
	Tool  string `yaml:"tool" json:"tool"`
	Input Input  `yaml:"input" json:"input"`
}

// Batch is a parsed batch file.
type Batch struct {
	// Concurrency bounds parallel invocations; zero lets the caller decide.
	Concurrency int   `yaml:"concurrency" json:"concurrency"`
	Jobs        []Job `yaml:"jobs" json:"jobs"`
}

// ErrInvalidBatch is returned for a batch file that parses but cannot run.
var ErrInvalidBatch = errors.New("invalid batch file")

// LoadBatch reads and checks a YAML batch file.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch decodes YAML batch data. Unknown keys are rejected so typos in
// job inputs surface before any process starts. Unnamed jobs are named
// after their position.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(b.Jobs) == 0 {
		return nil, fmt.Errorf("%w: no jobs", ErrInvalidBatch)
	}
	if b.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency %d", ErrInvalidBatch, b.Concurrency)
	}
	seen := make(map[string]bool, len(b.Jobs))
	for i := range b.Jobs {
		j := &b.Jobs[i]
		if strings.TrimSpace(j.Name) == "" {
			j.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("%w: duplicate job name %q", ErrInvalidBatch, j.Name)
		}
		seen[j.Name] = true
		if strings.TrimSpace(j.Tool) == "" {
			return nil, fmt.Errorf("%w: job %q has no tool", ErrInvalidBatch, j.Name)
		}
	}
	return &b, nil
}
