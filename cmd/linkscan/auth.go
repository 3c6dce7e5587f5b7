package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/linkscan/internal/credential"
	"github.com/nhle/linkscan/internal/source/gmail"
)

func newAuthCmd(a *app) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail access and store the token",
		Long: `auth prints the Google consent page URL. After approving access, paste
the authorization code (the "code" parameter of the redirect URL). The
resulting token is stored in the system keyring and refreshed
automatically on later runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Gmail.ClientID == "" || a.cfg.Gmail.ClientSecret == "" {
				return errors.New("gmail.client_id and gmail.client_secret must be configured")
			}

			conf := gmail.OAuthConfig(a.cfg.Gmail)
			state, err := randomState()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Open this URL in a browser and approve access:\n\n  %s\n\n",
				gmail.AuthCodeURL(conf, state))

			if code == "" {
				err := huh.NewInput().
					Title("Authorization code").
					Description("The code parameter from the redirect URL").
					Value(&code).
					Validate(validateRequired("Authorization code")).
					Run()
				if err != nil {
					return err
				}
			}

			tok, err := conf.Exchange(cmd.Context(), strings.TrimSpace(code))
			if err != nil {
				return fmt.Errorf("exchanging authorization code: %w", err)
			}
			if tok.RefreshToken == "" {
				a.log.Warn("token has no refresh token; re-run auth when it expires")
			}

			encoded, err := gmail.EncodeToken(tok)
			if err != nil {
				return err
			}
			if err := credential.Set(credential.KeyGmailToken, encoded); err != nil {
				return err
			}

			fmt.Fprintln(a.out, "Gmail authorization saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "authorization code (prompted when empty)")
	return cmd
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
