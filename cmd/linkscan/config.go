package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/model"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(a), newConfigPathCmd(a))
	return cmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.out, a.cfgPath)
			return nil
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force, defaults bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: `init writes the configuration file, asking for the message source
settings unless --defaults is given. An existing file is only replaced
with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.cfgPath)
			}

			cfg := a.cfg
			if !defaults {
				if err := sourceForm(cfg); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := model.SaveConfig(a.cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s.\n", a.cfgPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write defaults without prompting")
	return cmd
}

// sourceForm asks for the message source settings and fills them into cfg.
func sourceForm(cfg *model.AppConfig) error {
	sourceType := cfg.Source.Type
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Message source").
				Options(
					huh.NewOption("Gmail - REST API with OAuth", model.SourceTypeGmail),
					huh.NewOption("IMAP - any IMAP mailbox", model.SourceTypeIMAP),
				).
				Value(&sourceType),
		),
	).Run()
	if err != nil {
		return err
	}

	folder := cfg.Source.Folder
	limit := strconv.Itoa(cfg.Source.Limit)
	common := []huh.Field{
		huh.NewInput().
			Title("Folder").
			Description("Mailbox label (Gmail) or folder (IMAP)").
			Placeholder("INBOX").
			Value(&folder).
			Validate(validateRequired("Folder")),
		huh.NewInput().
			Title("Limit").
			Description("How many of the newest messages to ingest per run").
			Value(&limit).
			Validate(validateNumber),
	}

	var fields []huh.Field
	switch sourceType {
	case model.SourceTypeGmail:
		fields = append(common,
			huh.NewInput().
				Title("OAuth Client ID").
				Description("From a Google Cloud desktop OAuth client").
				Value(&cfg.Gmail.ClientID).
				Validate(validateRequired("Client ID")),
			huh.NewInput().
				Title("OAuth Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Gmail.ClientSecret).
				Validate(validateRequired("Client Secret")),
		)
	case model.SourceTypeIMAP:
		fields = append(common,
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.example.com").
				Value(&cfg.IMAP.Host).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&cfg.IMAP.Port).
				Validate(validateNumber),
			huh.NewInput().
				Title("Username").
				Description("Email account username").
				Placeholder("user@example.com").
				Value(&cfg.IMAP.Username).
				Validate(validateRequired("Username")),
			huh.NewConfirm().
				Title("Use TLS").
				Description("Connect with implicit TLS instead of STARTTLS").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.IMAP.TLS),
		)
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	cfg.Source.Type = sourceType
	cfg.Source.Folder = strings.TrimSpace(folder)
	cfg.Source.Limit, _ = strconv.Atoi(strings.TrimSpace(limit))
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a number is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return errors.New("must be a number")
		}
	}
	return nil
}
