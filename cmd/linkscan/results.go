package main

import (
	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/report"
	"github.com/nhle/linkscan/internal/store"
)

func newResultsCmd(a *app) *cobra.Command {
	var filter store.VerdictFilter
	var emailID string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored verdicts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if emailID != "" {
				filter.EmailID = &emailID
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			verdicts, err := s.ListVerdicts(cmd.Context(), filter)
			if err != nil {
				return err
			}

			report.NewConsole(a.out).Verdicts(verdicts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&filter.UnsafeOnly, "unsafe", false, "only show unsafe verdicts")
	cmd.Flags().StringVar(&emailID, "email", "", "only show verdicts first seen in this message")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 50, "maximum number of rows (0 for all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")
	return cmd
}
