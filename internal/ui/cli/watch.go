package cli

import (
	"classlint/internal/core/ports"
	"classlint/internal/ui/tui"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCommand(c *cli) *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-analyze whenever class files or jars change",
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

			ctx := cmd.Context()
			svc := a.AnalysisService()
			watch := svc.WatchService()
			req := flags.request(args)
			defer func() { _ = watch.Stop() }()

			if flags.ui {
				opts := tui.Options{
					Subscribe: watch.Subscribe,
					Start:     func() error { return watch.Start(ctx, req) },
				}
				if flags.save || cfg.DB.Enabled {
					if hist, err := svc.History(ctx, ports.HistoryRequest{Limit: 50}); err == nil {
						opts.Trend = hist.Trend
					}
				}
				return tui.Run(opts)
			}

			out := cmd.OutOrStdout()
			watch.Subscribe(func(update ports.WatchUpdate) {
				if update.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "analysis failed: %v\n", update.Err)
					return
				}
				fmt.Fprintf(out, "--- %s: %d classes, %d findings\n",
					time.Now().Format("15:04:05"), update.Result.Classes, len(update.Result.Findings))
				if _, err := a.WriteReport(flags.report(cmd), update.Result); err != nil {
					slog.Error("failed to write report", "error", err)
				}
			})
			if err := watch.Start(ctx, req); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
