package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/credential"
)

func newCredentialsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage API keys and passwords in the system keyring",
		Long: fmt.Sprintf(`Credentials are read from the environment first (for example %s)
and then from the system keyring. Known keys: %s.`,
			credential.EnvVar(credential.KeyIPQS), strings.Join(credential.Keys, ", ")),
	}

	cmd.AddCommand(newCredentialsSetCmd(a), newCredentialsDeleteCmd(a))
	return cmd
}

func newCredentialsSetCmd(a *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkKey(key); err != nil {
				return err
			}

			if value == "" {
				err := huh.NewInput().
					Title(key).
					Description("Stored in the system keyring").
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Validate(validateRequired(key)).
					Run()
				if err != nil {
					return err
				}
			}

			if err := credential.Set(key, strings.TrimSpace(value)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Stored %s.\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "credential value (prompted when empty)")
	return cmd
}

func newCredentialsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkKey(key); err != nil {
				return err
			}
			if err := credential.Delete(key); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", key)
			return nil
		},
	}
}

func checkKey(key string) error {
	if !credential.IsKnown(key) {
		return fmt.Errorf("unknown credential %q (known: %s)", key, strings.Join(credential.Keys, ", "))
	}
	return nil
}
