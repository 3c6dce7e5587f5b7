package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/pipeline"
	"github.com/nhle/linkscan/internal/report"
	"github.com/nhle/linkscan/internal/store"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the links of the oldest stored message",
		Long: `verify selects the oldest stored message and checks each of its links
that has no verdict yet. Links already checked, by this or any earlier
run, are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			panel, err := a.buildPanel()
			if err != nil {
				return err
			}

			console := report.NewConsole(a.out)
			v := pipeline.NewVerifier(s, panel, a.log, a.metrics, console)

			result, err := v.Run(cmd.Context())
			a.flushMetrics()
			if errors.Is(err, store.ErrNoMessages) {
				fmt.Fprintln(a.out, "No messages to verify. Run `linkscan ingest` first.")
				return nil
			}
			if err != nil {
				return err
			}

			console.VerifySummary(result)
			return nil
		},
	}
}
