package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/report"
)

// exitUnsafe is the exit status of `check` for an unsafe URL.
const exitUnsafe = 2

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Check a single URL without touching the store",
		Long: `check runs both reputation oracles on one URL and prints each answer
and the combined verdict. The exit status is 0 when the URL is safe and
2 when it is not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", a.cfgPath, err)
			}

			panel, err := a.buildPanel()
			if err != nil {
				return err
			}

			c := panel.Check(cmd.Context(), args[0])
			a.flushMetrics()
			fmt.Fprintln(a.out, report.FormatConsensus(c))

			if !c.Safe {
				return &exitError{code: exitUnsafe}
			}
			return nil
		},
	}
}
