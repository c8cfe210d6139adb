package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/cursor-mcp/internal/formatter"
	"github.com/boshu2/cursor-mcp/internal/invoke"
	"github.com/boshu2/cursor-mcp/internal/tools"
	"github.com/boshu2/cursor-mcp/internal/worker"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Run jobs from a YAML file in parallel",
	Long: `Run every job in a batch file, each as its own cursor-agent process.
Results are reported in file order. A failing job does not stop the others.

Batch file:
  concurrency: 2
  jobs:
    - name: plan-auth
      tool: plan_task
      input:
        goal: add token refresh
        constraints: [no new dependencies]
    - tool: search_repo
      input:
        query: TODO
        include: ["*.go"]

Examples:
  cursor-mcp batch jobs.yaml
  cursor-mcp batch jobs.yaml --concurrency 4 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel invocations (default: file value, then CPU count)")
}

// jobReport is one job's row in the batch output.
type jobReport struct {
	Name      string         `json:"name"`
	Tool      string         `json:"tool"`
	State     string         `json:"state"`
	ExitCode  int            `json:"exit_code"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Error     string         `json:"error,omitempty"`
	Result    *invoke.Result `json:"result,omitempty"`
}

func (r jobReport) failed() bool {
	return r.Error != "" || (r.Result != nil && r.Result.IsError)
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := tools.LoadBatch(args[0])
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	concurrency := batch.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = batchConcurrency
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	VerbosePrintf(cmd, "Running %d jobs from %s\n", len(batch.Jobs), args[0])
	pool := worker.NewPool[tools.Job, *invoke.Result](concurrency)
	results := pool.Process(ctx, batch.Jobs, func(ctx context.Context, job tools.Job) (*invoke.Result, error) {
		req, err := a.catalog.Build(job.Tool, a.settings.BaseDir, job.Input)
		if err != nil {
			return nil, err
		}
		return a.invoker.Invoke(ctx, req)
	})

	reports := make([]jobReport, len(results))
	anyFailed := false
	for i, r := range results {
		job := batch.Jobs[r.Index]
		rep := jobReport{Name: job.Name, Tool: job.Tool, State: "not_run", ExitCode: -1}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		if res := r.Value; res != nil {
			rep.State = res.State.String()
			rep.ExitCode = res.ExitCode
			rep.ElapsedMS = res.Elapsed.Milliseconds()
			rep.Result = res
		}
		anyFailed = anyFailed || rep.failed()
		reports[i] = rep
	}

	if err := writeBatchReport(cmd.OutOrStdout(), reports); err != nil {
		return err
	}
	if anyFailed {
		return errReported
	}
	return nil
}

func writeBatchReport(w io.Writer, reports []jobReport) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("write batch report: %w", err)
		}
		return nil
	}

	table := formatter.NewTable(w, "JOB", "TOOL", "STATE", "EXIT", "ELAPSED", "RESULT")
	table.SetMaxWidth(5, 60)
	for _, rep := range reports {
		summary := rep.Error
		if rep.Result != nil {
			summary = firstLine(rep.Result.Text())
		}
		table.AddRow(
			rep.Name,
			rep.Tool,
			rep.State,
			strconv.Itoa(rep.ExitCode),
			(time.Duration(rep.ElapsedMS) * time.Millisecond).String(),
			summary,
		)
	}
	if err := table.Render(); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	for _, rep := range reports {
		if rep.Result == nil {
			continue
		}
		fmt.Fprintf(w, "\n== %s ==\n%s\n", rep.Name, rep.Result.Text())
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
