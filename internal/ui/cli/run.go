package cli

import (
	coreapp "classlint/internal/core/app"
	"classlint/internal/core/ports"
	"classlint/internal/ui/tui"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// analysisFlags are shared by run and watch.
type analysisFlags struct {
	checks        []string
	excludeChecks []string
	classpath     []string
	workers       int
	format        string
	output        string
	noColor       bool
	ui            bool
	save          bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.checks, "checks", nil, "Check names or globs to run (default: all)")
	flags.StringSliceVar(&f.excludeChecks, "exclude-checks", nil, "Check name globs to skip")
	flags.StringSliceVar(&f.classpath, "classpath", nil, "Directories and jars used only to resolve references")
	flags.IntVar(&f.workers, "workers", 0, "Parallel analysis workers (default: number of CPUs)")
	flags.StringVarP(&f.format, "format", "f", "", "Report format: text, markdown, json, tsv, sarif")
	flags.StringVarP(&f.output, "output", "o", "", `Report file ("-" for stdout)`)
	flags.BoolVar(&f.noColor, "no-color", false, "Disable styled text output")
	flags.BoolVar(&f.ui, "ui", false, "Browse findings in the terminal UI")
	flags.BoolVar(&f.save, "save", false, "Record the run in the history database")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "tsv", "sarif"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f *analysisFlags) request(paths []string) ports.RunRequest {
	return ports.RunRequest{
		Paths:     paths,
		Classpath: f.classpath,
		Include:   f.checks,
		Exclude:   f.excludeChecks,
		Workers:   f.workers,
		Save:      f.save,
	}
}

func (f *analysisFlags) report(cmd *cobra.Command) coreapp.ReportRequest {
	return coreapp.ReportRequest{
		Format: f.format,
		Output: f.output,
		Color:  !f.noColor,
		Stdout: cmd.OutOrStdout(),
	}
}

func newRunCommand(c *cli) *cobra.Command {
	var (
		flags          analysisFlags
		failOnFindings bool
	)
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Analyze class files, class directories and jars",
		Long: `Analyze the given .class files, directories and jars. Without paths the
inputs listed in the config file are analyzed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanupLogs := configureLogging(flags.ui, c.verbose, cmd.ErrOrStderr())
			defer cleanupLogs()

			cfg, cfgPath, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			a, cleanup, err := c.openApp(cmd, cfg, cfgPath)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := a.AnalysisService()
			res, err := svc.Run(cmd.Context(), flags.request(args))
			if err != nil {
				return err
			}
			for _, failure := range res.LoadFailures {
				slog.Warn("input skipped", "path", failure.Path, "error", failure.Error)
			}

			if flags.ui {
				opts := tui.Options{Initial: &res}
				if res.RunID != "" {
					if hist, err := svc.History(cmd.Context(), ports.HistoryRequest{Limit: 50}); err == nil {
						opts.Trend = hist.Trend
					}
				}
				if err := tui.Run(opts); err != nil {
					return err
				}
			} else {
				path, err := a.WriteReport(flags.report(cmd), res)
				if err != nil {
					return err
				}
				if path != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", path)
				}
			}
			if res.RunID != "" {
				slog.Info("run saved", "run_id", res.RunID)
			}

			if failOnFindings && len(res.Findings) > 0 {
				return &exitError{code: 3, msg: fmt.Sprintf("%d findings", len(res.Findings))}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&failOnFindings, "fail-on-findings", false, "Exit with status 3 when any finding is reported")
	return cmd
}
