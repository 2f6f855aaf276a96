// Package cli wires the classlint commands to the application services.
package cli

import (
	coreapp "classlint/internal/core/app"
	"classlint/internal/core/config"
	"classlint/internal/shared/observability"
	"classlint/internal/shared/version"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// exitError carries a process exit code other than 1 through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(&cli{})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			fmt.Fprintln(stderr, exit.msg)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

// cli holds the persistent flags shared by every command.
type cli struct {
	configPath string
	verbose    bool
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "classlint",
		Short:         "Design-quality checks for compiled JVM classes",
		Long:          `classlint analyzes .class files, class directories and jars for design-principle and pattern issues.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultFile, "Path to config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newRunCommand(c),
		newWatchCommand(c),
		newChecksCommand(c),
		newHistoryCommand(c),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "classlint %s\n", version.Version)
		},
	}
}

// loadConfig reads the config file. The default file may be absent; a path
// given with --config must exist.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.LoadOrDefault(c.configPath, explicit)
	if err != nil {
		return nil, "", fmt.Errorf("load config %q: %w", c.configPath, err)
	}
	path := ""
	if _, statErr := os.Stat(c.configPath); statErr == nil {
		path = c.configPath
	}
	return cfg, path, nil
}

// openApp loads the configuration and builds the application. The returned
// cleanup stops observability and closes the app.
func (c *cli) openApp(cmd *cobra.Command, cfg *config.Config, cfgPath string) (*coreapp.App, func(), error) {
	a, err := coreapp.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	a.ConfigPath = cfgPath

	ctx := cmd.Context()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.Insecure)
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
	}

	var server *ObservabilityServer
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		server = NewObservabilityServer(addr, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			slog.Warn("observability server disabled", "addr", addr, "error", err)
			server = nil
		}
	}

	cleanup := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if server != nil {
			if err := server.Stop(stopCtx); err != nil {
				slog.Warn("observability server shutdown failed", "error", err)
			}
		}
		if err := shutdownTracing(stopCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
		if err := a.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	return a, cleanup, nil
}
