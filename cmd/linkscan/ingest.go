package main

import (
	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/pipeline"
	"github.com/nhle/linkscan/internal/report"
)

func newIngestCmd(a *app) *cobra.Command {
	var folder string
	var limit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store the most recent messages with their attachments and links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("folder") {
				a.cfg.Source.Folder = folder
			}
			if cmd.Flags().Changed("limit") {
				a.cfg.Source.Limit = limit
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			src, err := a.buildSource(cmd.Context())
			if err != nil {
				return err
			}

			console := report.NewConsole(a.out)
			in := pipeline.NewIngester(src, s, a.log, a.metrics, console)

			result, err := in.Run(cmd.Context(), a.cfg.Source.Folder, a.cfg.Source.Limit)
			a.flushMetrics()
			if err != nil {
				return err
			}

			console.IngestSummary(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "mailbox folder or label (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of messages (default from config)")
	return cmd
}
