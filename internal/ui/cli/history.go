package cli

import (
	"classlint/internal/core/ports"
	"classlint/internal/shared/util"
	"classlint/internal/ui/report"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(c *cli) *cobra.Command {
	var (
		limit     int
		runID     string
		trendTSV  string
		trendJSON string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs and per-check finding counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanupLogs := configureLogging(false, c.verbose, cmd.ErrOrStderr())
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

			res, err := a.AnalysisService().History(cmd.Context(), ports.HistoryRequest{Limit: limit, RunID: runID})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Runs) == 0 {
				fmt.Fprintf(out, "No saved runs for %s.\n", a.ProjectKey())
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tTIMESTAMP\tCLASSES\tFINDINGS\tFAILURES\tDURATION")
			for _, run := range res.Runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					run.ID,
					run.Timestamp.Local().Format(time.DateTime),
					run.ClassCount,
					run.FindingCount,
					run.LoadFailures,
					run.Duration.Round(time.Millisecond),
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(res.Counts) > 0 {
				fmt.Fprintf(out, "\nFindings by check (run %s):\n", res.Runs[0].ID)
				tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, count := range res.Counts {
					fmt.Fprintf(tw, "  %s\t%s\t%d\n", count.CheckName, count.Category, count.Count)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if res.Trend == nil {
				if trendTSV != "" || trendJSON != "" {
					return fmt.Errorf("trend export is not available for a single run")
				}
				return nil
			}
			if trendTSV != "" {
				data, err := report.RenderTrendTSV(*res.Trend)
				if err != nil {
					return fmt.Errorf("render trend TSV: %w", err)
				}
				if err := util.WriteFileWithDirs(trendTSV, data, 0o644); err != nil {
					return fmt.Errorf("write trend TSV %q: %w", trendTSV, err)
				}
			}
			if trendJSON != "" {
				data, err := report.RenderTrendJSON(*res.Trend)
				if err != nil {
					return fmt.Errorf("render trend JSON: %w", err)
				}
				if err := util.WriteFileWithDirs(trendJSON, data, 0o644); err != nil {
					return fmt.Errorf("write trend JSON %q: %w", trendJSON, err)
				}
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	flags.StringVar(&runID, "run", "", "Show a single run by id")
	flags.StringVar(&trendTSV, "tsv", "", "Write the trend report as TSV to this path")
	flags.StringVar(&trendJSON, "json", "", "Write the trend report as JSON to this path")
	cmd.MarkFlagsMutuallyExclusive("run", "tsv")
	cmd.MarkFlagsMutuallyExclusive("run", "json")
	return cmd
}
