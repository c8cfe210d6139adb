package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fakeAgentEnv makes the re-executed test binary act as cursor-agent.
const fakeAgentEnv = "CURSOR_FAKE_AGENT"

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeAgentEnv); mode != "" {
		os.Exit(fakeAgent(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

func fakeAgent(mode string, args []string) int {
	switch mode {
	case "echo":
		fmt.Println(strings.Join(args, "\n"))
		return 0
	case "fail":
		fmt.Fprint(os.Stderr, "model unavailable\n")
		return 3
	case "stream":
		fmt.Println(`{"type":"system","subtype":"init","model":"gpt-x"}`)
		fmt.Println(`{"type":"assistant","message":{"content":[{"type":"text","text":"done"}]}}`)
		fmt.Println(`{"type":"result","duration_ms":10}`)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown fake mode %q\n", mode)
		return 99
	}
}

// resetFlags restores every flag in the tree to its default so one test's
// flags do not leak into the next execute call.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupEnv isolates config files and points cursor-agent at the test
// binary running in mode. It returns the base directory.
func setupEnv(t *testing.T, mode string) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CURSOR_MCP_CONFIG", filepath.Join(home, "missing.yaml"))
	t.Setenv("CURSOR_MCP_LOG_DIR", "off")
	t.Setenv("CURSOR_MCP_OUTPUT", "")
	t.Setenv("CURSOR_MCP_ROOT", "")
	t.Setenv("CURSOR_AGENT_PATH", exe)
	t.Setenv("CURSOR_AGENT_MODEL", "")
	t.Setenv("CURSOR_AGENT_FORCE", "")
	t.Setenv("CURSOR_AGENT_TIMEOUT_MS", "20000")
	t.Setenv("CURSOR_AGENT_IDLE_EXIT_MS", "")
	t.Setenv("CURSOR_AGENT_ECHO_PROMPT", "")
	t.Setenv("DEBUG_CURSOR_MCP", "")
	t.Setenv(fakeAgentEnv, mode)
	return t.TempDir()
}

// run executes the CLI with args and returns its exit status and output.
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "cursor-mcp version "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestTools(t *testing.T) {
	code, out, _ := run(t, "tools")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"TOOL", "DESCRIPTION", "run", "edit_file", "analyze_files", "search_repo", "plan_task"} {
		if !strings.Contains(out, want) {
			t.Errorf("tools output missing %q:\n%s", want, out)
		}
	}
}

func TestToolsJSON(t *testing.T) {
	code, out, _ := run(t, "tools", "-o", "json")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(entries) != 5 || entries[0].Name != "analyze_files" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestConfigShowJSON(t *testing.T) {
	base := setupEnv(t, "echo")
	t.Setenv("CURSOR_AGENT_MODEL", "gpt-x")

	code, out, errOut := run(t, "config", "--show", "-o", "json", "--root", base)
	if code != 0 {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	var got map[string]struct {
		Value  string `json:"value"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got["base_dir"].Value != base || got["base_dir"].Source != "flag" {
		t.Errorf("base_dir = %+v, want %s from flag", got["base_dir"], base)
	}
	if got["model"].Value != "gpt-x" || got["model"].Source != "environment" {
		t.Errorf("model = %+v", got["model"])
	}
	if got["timeout_ms"].Value != "20000" {
		t.Errorf("timeout_ms = %+v", got["timeout_ms"])
	}
}

func TestConfigShowYAMLAndText(t *testing.T) {
	base := setupEnv(t, "echo")

	code, out, _ := run(t, "config", "--show", "-o", "yaml", "--root", base)
	if code != 0 || !strings.Contains(out, "timeout_ms:") || !strings.Contains(out, "source: flag") {
		t.Errorf("yaml exit=%d output:\n%s", code, out)
	}

	code, out, _ = run(t, "config", "--show", "--root", base)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"Resolved values:", "agent.timeout_ms:", "CURSOR_AGENT_TIMEOUT_MS=20000"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigWithoutShowPrintsHelp(t *testing.T) {
	code, out, _ := run(t, "config")
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Errorf("exit=%d output:\n%s", code, out)
	}
}

func TestRunCommand(t *testing.T) {
	base := setupEnv(t, "echo")

	code, out, errOut := run(t, "run", "--root", base, "--model", "gpt-y", "--", "summarize the repo")
	if code != 0 {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"-p", "--output-format", "text", "--model", "gpt-y", "summarize the repo"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("argv = %q, want %q", lines, want)
	}
}

func TestRunCommandFailure(t *testing.T) {
	base := setupEnv(t, "fail")

	code, out, errOut := run(t, "run", "--root", base, "--", "hello")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(out, "exited with code 3: model unavailable") {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(errOut, "Error:") {
		t.Errorf("reported result should not be repeated on stderr: %q", errOut)
	}
}

func TestRunCommandJSONOutput(t *testing.T) {
	base := setupEnv(t, "fail")

	code, out, _ := run(t, "run", "--root", base, "-o", "json", "--", "hello")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	var res struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if !res.IsError || len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Errorf("result = %+v", res)
	}
}

func TestRunCommandProgress(t *testing.T) {
	base := setupEnv(t, "stream")

	code, _, errOut := run(t, "run", "--root", base, "--progress", "--", "hello")
	if code != 0 {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	for _, want := range []string{"initializing, model=gpt-x", "[100/100] completed in 10ms"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("progress missing %q:\n%s", want, errOut)
		}
	}
}

func TestEditRejectsEscapingPath(t *testing.T) {
	base := setupEnv(t, "echo")

	code, out, errOut := run(t, "edit", "--root", base, "../outside.go", "rename", "foo")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if out != "" {
		t.Errorf("no result expected, got %q", out)
	}
	if !strings.Contains(errOut, "Error:") || !strings.Contains(errOut, "outside") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestEditCommand(t *testing.T) {
	base := setupEnv(t, "echo")

	code, out, errOut := run(t, "edit", "--root", base, "--force", "main.go", "rename", "foo")
	if code != 0 {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	for _, want := range []string{"--force", filepath.Join(base, "main.go"), "Instruction: rename foo"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeRequiresQuestion(t *testing.T) {
	base := setupEnv(t, "echo")

	code, _, errOut := run(t, "analyze", "--root", base, "a.go")
	if code != 1 || !strings.Contains(errOut, "question") {
		t.Errorf("exit=%d stderr=%q", code, errOut)
	}
}

func TestBatchCommand(t *testing.T) {
	base := setupEnv(t, "echo")
	file := filepath.Join(t.TempDir(), "jobs.yaml")
	data := `concurrency: 2
jobs:
  - name: plan
    tool: plan_task
    input:
      goal: add caching
  - name: escape
    tool: edit_file
    input:
      file: ../etc/passwd
      instruction: wipe it
`
	if err := os.WriteFile(file, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	code, out, _ := run(t, "batch", "--root", base, file)
	if code != 1 {
		t.Fatalf("exit = %d, want 1 when a job fails", code)
	}
	for _, want := range []string{"JOB", "plan", "succeeded", "escape", "not_run"} {
		if !strings.Contains(out, want) {
			t.Errorf("batch output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = run(t, "batch", "--root", base, "-o", "json", file)
	if code != 1 {
		t.Fatalf("exit = %d", code)
	}
	var reports []jobReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].Name != "plan" || reports[0].State != "succeeded" || reports[0].ExitCode != 0 {
		t.Errorf("report[0] = %+v", reports[0])
	}
	if reports[1].Error == "" || reports[1].Result != nil {
		t.Errorf("report[1] = %+v", reports[1])
	}
}

func TestBatchMissingFile(t *testing.T) {
	setupEnv(t, "echo")
	code, _, errOut := run(t, "batch", filepath.Join(t.TempDir(), "nope.yaml"))
	if code != 1 || !strings.Contains(errOut, "read batch file") {
		t.Errorf("exit=%d stderr=%q", code, errOut)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"one", "one"},
		{"  one\ntwo", "one"},
		{"\n\nlead\nrest", "lead"},
	}
	for _, tc := range tests {
		if got := firstLine(tc.in); got != tc.want {
			t.Errorf("firstLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
