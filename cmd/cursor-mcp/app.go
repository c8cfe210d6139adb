package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/cursor-mcp/internal/config"
	"github.com/boshu2/cursor-mcp/internal/formatter"
	"github.com/boshu2/cursor-mcp/internal/invoke"
	"github.com/boshu2/cursor-mcp/internal/logging"
	"github.com/boshu2/cursor-mcp/internal/tools"
)

// app bundles what an invocation command needs.
type app struct {
	cache    *config.Cache
	settings *config.Settings
	logger   *zap.Logger
	invoker  *invoke.Invoker
	catalog  *tools.Catalog
}

// flagConfig turns the persistent flags into the highest-precedence layer.
func flagConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{
		Output:  output,
		BaseDir: rootDir,
		LogDir:  logDir,
		Verbose: verbose,
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = &debug
	}
	return cfg
}

func loadCache(cmd *cobra.Command) (*config.Cache, error) {
	return config.NewCache(config.Options{
		Flags:       flagConfig(cmd),
		ProjectPath: cfgFile,
	})
}

func newApp(cmd *cobra.Command) (*app, error) {
	cache, err := loadCache(cmd)
	if err != nil {
		return nil, err
	}
	settings, err := cache.Current()
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	switch {
	case verbose || settings.Debug:
		logger = logging.New(settings.Debug, cmd.ErrOrStderr())
	default:
		logger = logging.Quiet(cmd.ErrOrStderr())
	}

	return &app{
		cache:    cache,
		settings: settings,
		logger:   logger,
		invoker:  invoke.New(cache, invoke.WithLogger(logging.Component(logger, "invoke"))),
		catalog:  tools.NewCatalog(),
	}, nil
}

// outputFormat resolves -o against the configured default.
func (a *app) outputFormat() string {
	if output != "" {
		return output
	}
	return a.cache.Resolve().Output.Value
}

func (a *app) formatter() (formatter.Formatter, error) {
	return formatter.For(a.outputFormat())
}

// signalContext returns a context cancelled with a descriptive cause on
// SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			cancel(fmt.Errorf("received %s", sig))
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigs)
		cancel(context.Canceled)
	}
}
