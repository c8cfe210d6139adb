package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boshu2/cursor-mcp/internal/config"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `View cursor-mcp configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables
  3. Project config (.cursor-mcp/config.yaml)
  4. Home config (~/.cursor-mcp/config.yaml)
  5. Defaults

Environment variables:
  CURSOR_AGENT_PATH         - Absolute path of the cursor-agent executable
  CURSOR_AGENT_MODEL        - Default model
  CURSOR_AGENT_FORCE        - Pass --force by default (true/1)
  CURSOR_AGENT_TIMEOUT_MS   - Hard timeout per invocation (default: 30000)
  CURSOR_AGENT_IDLE_EXIT_MS - Kill after this much output silence (0 disables)
  CURSOR_AGENT_ECHO_PROMPT  - Add the prompt to every result (true/1)
  DEBUG_CURSOR_MCP          - Enable debug diagnostics (true/1)
  CURSOR_MCP_CLIENT         - Host identity (generic|claude|cursor|vscode)
  CURSOR_MCP_CONFIG         - Explicit project config file
  CURSOR_MCP_ROOT           - Base directory
  CURSOR_MCP_LOG_DIR        - Activity log directory, or "off"
  CURSOR_MCP_OUTPUT         - Default output format

Examples:
  cursor-mcp config --show           # Show resolved configuration
  cursor-mcp config --show -o json   # Output as JSON
  cursor-mcp config --show -o yaml   # Output as YAML`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

// configEnvVars lists every variable config --show reports when set.
var configEnvVars = append(config.RecognizedVars(),
	config.EnvConfig,
	config.EnvRoot,
	config.EnvLogDir,
	config.EnvOutput,
)

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	cache, err := loadCache(cmd)
	if err != nil {
		return err
	}
	resolved := cache.Resolve()
	w := cmd.OutOrStdout()

	switch output {
	case "json":
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resolved); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintln(w, "cursor-mcp Configuration")
	fmt.Fprintln(w, "========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Resolved values:")
	for _, row := range []struct {
		name string
		v    string
		src  config.Source
	}{
		{"output", resolved.Output.Value, resolved.Output.Source},
		{"base_dir", resolved.BaseDir.Value, resolved.BaseDir.Source},
		{"log_dir", resolved.LogDir.Value, resolved.LogDir.Source},
		{"client", resolved.Client.Value, resolved.Client.Source},
		{"debug", resolved.Debug.Value, resolved.Debug.Source},
		{"agent.path", orNone(resolved.AgentPath.Value), resolved.AgentPath.Source},
		{"agent.model", orNone(resolved.Model.Value), resolved.Model.Source},
		{"agent.force", resolved.Force.Value, resolved.Force.Source},
		{"agent.timeout_ms", resolved.TimeoutMS.Value, resolved.TimeoutMS.Source},
		{"agent.idle_exit_ms", resolved.IdleExitMS.Value, resolved.IdleExitMS.Source},
		{"agent.echo_prompt", resolved.EchoPrompt.Value, resolved.EchoPrompt.Source},
	} {
		fmt.Fprintf(w, "  %-19s %s  (from %s)\n", row.name+":", row.v, row.src)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(w, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(w, "  (none set)")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
