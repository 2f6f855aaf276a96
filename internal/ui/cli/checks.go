package cli

import (
	"classlint/internal/engine/checks"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newChecksCommand(c *cli) *cobra.Command {
	var (
		long     bool
		category string
	)
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the available checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanupLogs := configureLogging(false, c.verbose, cmd.ErrOrStderr())
			defer cleanupLogs()

			var want checks.Category
			if category != "" {
				parsed, err := checks.ParseCategory(category)
				if err != nil {
					return err
				}
				want = parsed
			}

			cfg, cfgPath, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			a, cleanup, err := c.openApp(cmd, cfg, cfgPath)
			if err != nil {
				return err
			}
			defer cleanup()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range a.AnalysisService().Checks() {
				if want != "" && e.Category != want {
					continue
				}
				if long {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Category, e.Description)
				} else {
					fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Category)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Include check descriptions")
	cmd.Flags().StringVar(&category, "category", "", "Only list checks in this category (pattern, principle, style)")
	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"pattern", "principle", "style"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
