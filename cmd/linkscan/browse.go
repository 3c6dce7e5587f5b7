package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	browser "github.com/nhle/linkscan/internal/app"
	"github.com/nhle/linkscan/internal/store"
)

func newBrowseCmd(a *app) *cobra.Command {
	var filter store.VerdictFilter

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stored verdicts interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(
				browser.New(s, filter),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&filter.UnsafeOnly, "unsafe", false, "start with only unsafe verdicts")
	return cmd
}
