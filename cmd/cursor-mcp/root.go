package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	debug   bool
	output  string
	cfgFile string
	rootDir string
	logDir  string
)

// errReported marks a failure whose details were already written as a
// result, so Execute only sets the exit status.
var errReported = errors.New("invocation reported an error")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cursor-mcp",
	Short: "Run cursor-agent safely from scripts and tools",
	Long: `cursor-mcp runs the cursor-agent CLI one process per request, with a
validated executable, a working directory confined to the base directory,
an allow-listed environment, and a hard timeout.

Invocation Commands:
  run          Pass raw arguments to cursor-agent
  edit         Edit one file per an instruction
  analyze      Ask a question about files
  search       Search the repository
  plan         Produce an implementation plan
  batch        Run jobs from a YAML file in parallel

Other Commands:
  tools        List the available tools
  config       Show resolved configuration
  version      Show version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command tree and maps the outcome to an exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&debug, "debug", false, "Enable debug diagnostics (same as DEBUG_CURSOR_MCP=true)")
	pf.StringVarP(&output, "output", "o", "", "Output format (text, json, markdown; config shows yaml too)")
	pf.StringVar(&cfgFile, "config", "", "Project config file (default: ./.cursor-mcp/config.yaml)")
	pf.StringVar(&rootDir, "root", "", "Base directory all paths must stay inside (default: current directory)")
	pf.StringVar(&logDir, "log-dir", "", `Activity log directory, or "off"`)
}

// VerbosePrintf prints to stderr only when verbose mode is enabled.
func VerbosePrintf(cmd *cobra.Command, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}
