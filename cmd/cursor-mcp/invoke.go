package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/cursor-mcp/internal/invoke"
	"github.com/boshu2/cursor-mcp/internal/stream"
	"github.com/boshu2/cursor-mcp/internal/tools"
)

// invokeFlags are shared by every command that starts cursor-agent.
type invokeFlags struct {
	dir        string
	model      string
	force      bool
	format     string
	executable string
	progress   bool
}

func (f *invokeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.dir, "dir", "", "Working directory, inside the base directory")
	fl.StringVarP(&f.model, "model", "m", "", "Model for this call (overrides CURSOR_AGENT_MODEL)")
	fl.BoolVarP(&f.force, "force", "f", false, "Pass --force for this call (overrides CURSOR_AGENT_FORCE)")
	fl.StringVar(&f.format, "format", "text", "Format requested from cursor-agent (text, json, markdown)")
	fl.StringVar(&f.executable, "executable", "", `Executable: "cursor-agent" or the configured CURSOR_AGENT_PATH`)
	fl.BoolVar(&f.progress, "progress", false, "Stream progress events to stderr")
}

// apply copies the per-call overrides onto in.
func (f *invokeFlags) apply(cmd *cobra.Command, in *tools.Input) {
	in.Dir = f.dir
	in.Model = f.model
	in.Format = f.format
	if cmd.Flags().Changed("force") {
		in.Force = invoke.Bool(f.force)
	}
}

// progressPrinter writes one line per progress event.
func progressPrinter(w io.Writer) func(stream.Event) {
	return func(ev stream.Event) {
		msg := strings.ReplaceAll(ev.Message, "\n", " ")
		fmt.Fprintf(w, "[%3d/%d] %s\n", ev.Progress, ev.Total, msg)
	}
}

// runTool builds the named tool's request, runs it, and prints the result.
func runTool(cmd *cobra.Command, f *invokeFlags, tool string, in tools.Input) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	f.apply(cmd, &in)

	req, err := a.catalog.Build(tool, a.settings.BaseDir, in)
	if err != nil {
		return err
	}
	req.Executable = f.executable
	if f.progress {
		req.OnProgress = progressPrinter(cmd.ErrOrStderr())
	}
	fm, err := a.formatter()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	VerbosePrintf(cmd, "Running %s in %s\n", tool, a.settings.BaseDir)
	res, err := a.invoker.Invoke(ctx, req)
	if err != nil {
		return err
	}
	if err := fm.Format(cmd.OutOrStdout(), res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if res.IsError {
		return errReported
	}
	return nil
}

var runFlags invokeFlags

var runCmd = &cobra.Command{
	Use:   "run [flags] -- [cursor-agent args...] [prompt]",
	Short: "Pass raw arguments to cursor-agent",
	Long: `Run cursor-agent with raw arguments. A trailing argument that is not a
flag is the prompt; it stays last after managed flags are added.

Examples:
  cursor-mcp run -- "summarize README.md"
  cursor-mcp run --model gpt-5 -- --resume chat-1 "continue"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, &runFlags, tools.Run, tools.Input{Args: args})
	},
}

var editFlags invokeFlags

var editCmd = &cobra.Command{
	Use:   "edit <file> <instruction...>",
	Short: "Edit one file per an instruction",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, &editFlags, tools.EditFile, tools.Input{
			File:        args[0],
			Instruction: strings.Join(args[1:], " "),
		})
	},
}

var (
	analyzeFlags    invokeFlags
	analyzeQuestion string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze -q <question> <file>...",
	Short: "Ask a question about files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, &analyzeFlags, tools.AnalyzeFiles, tools.Input{
			Paths:    args,
			Question: analyzeQuestion,
		})
	},
}

var (
	searchFlags   invokeFlags
	searchInclude []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the repository",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, &searchFlags, tools.SearchRepo, tools.Input{
			Query:   strings.Join(args, " "),
			Include: searchInclude,
		})
	},
}

var (
	planFlags       invokeFlags
	planConstraints []string
)

var planCmd = &cobra.Command{
	Use:   "plan <goal...>",
	Short: "Produce an implementation plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, &planFlags, tools.PlanTask, tools.Input{
			Goal:        strings.Join(args, " "),
			Constraints: planConstraints,
		})
	},
}

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().SetInterspersed(false)

	editFlags.register(editCmd)

	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeQuestion, "question", "q", "", "Question to answer (required)")
	_ = analyzeCmd.MarkFlagRequired("question")

	searchFlags.register(searchCmd)
	searchCmd.Flags().StringSliceVar(&searchInclude, "include", nil, "Glob of files to consider (repeatable)")

	planFlags.register(planCmd)
	planCmd.Flags().StringArrayVar(&planConstraints, "constraint", nil, "Constraint the plan must respect (repeatable)")

	rootCmd.AddCommand(runCmd, editCmd, analyzeCmd, searchCmd, planCmd)
}
