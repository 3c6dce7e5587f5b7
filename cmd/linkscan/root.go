package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/nhle/linkscan/internal/credential"
	"github.com/nhle/linkscan/internal/logging"
	"github.com/nhle/linkscan/internal/metrics"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
	"github.com/nhle/linkscan/internal/source"
	"github.com/nhle/linkscan/internal/source/email"
	"github.com/nhle/linkscan/internal/source/gmail"
	"github.com/nhle/linkscan/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
)

// exitError ends the process with code without printing an error.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app carries the state shared by all subcommands.
type app struct {
	cfgPath  string
	logLevel string

	cfg     *model.AppConfig
	log     *logrus.Logger
	metrics *metrics.Metrics
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "linkscan",
		Short: "Scan mailbox links against URL reputation services",
		Long: `linkscan ingests recent messages from a Gmail or IMAP mailbox,
extracts the links in their bodies and checks each link against
IPQualityScore and Google Safe Browsing, recording a fail-closed verdict.`,
		Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	// Disable completion command
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", model.DefaultConfigPath(), "config file path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newIngestCmd(a),
		newVerifyCmd(a),
		newCheckCmd(a),
		newResultsCmd(a),
		newBrowseCmd(a),
		newAuthCmd(a),
		newCredentialsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// load reads the configuration and builds the logger and metrics.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := model.LoadConfig(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.metrics = metrics.New()
	a.out = cmd.OutOrStdout()
	return nil
}

func (a *app) openStore() (*store.SQLiteStore, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", a.cfgPath, err)
	}
	s, err := store.NewSQLiteStore(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.log.WithField("path", a.cfg.Database.Path).Debug("store opened")
	return s, nil
}

// buildPanel creates both reputation oracles, IPQS first.
func (a *app) buildPanel() (oracle.Panel, error) {
	ipqsKey, err := credential.Resolve(credential.KeyIPQS)
	if err != nil {
		return nil, err
	}
	gsbKey, err := credential.Resolve(credential.KeySafeBrowsing)
	if err != nil {
		return nil, err
	}

	client := oracle.NewClient(a.cfg.Oracle.Timeout, a.cfg.Oracle.RatePerSec)
	return oracle.Panel{
		a.metrics.Instrument(oracle.NewIPQS(
			client, a.cfg.IPQS.BaseURL, ipqsKey, a.cfg.IPQS.Strictness, a.log,
		)),
		a.metrics.Instrument(oracle.NewSafeBrowsing(
			client, a.cfg.SafeBrowsing.BaseURL, gsbKey,
			a.cfg.SafeBrowsing.ClientID, a.cfg.SafeBrowsing.ClientVersion, a.log,
		)),
	}, nil
}

// buildSource creates the configured message source.
func (a *app) buildSource(ctx context.Context) (source.MessageSource, error) {
	switch a.cfg.Source.Type {
	case model.SourceTypeGmail:
		raw, err := credential.Resolve(credential.KeyGmailToken)
		if errors.Is(err, credential.ErrNotFound) {
			return nil, &source.AuthError{
				SourceType: source.SourceTypeGmail,
				Message:    "no stored token",
			}
		}
		if err != nil {
			return nil, err
		}
		tok, err := gmail.DecodeToken(raw)
		if err != nil {
			return nil, err
		}

		httpClient := gmail.NewHTTPClient(ctx, gmail.OAuthConfig(a.cfg.Gmail), tok,
			func(t *oauth2.Token) error {
				encoded, err := gmail.EncodeToken(t)
				if err != nil {
					return err
				}
				if err := credential.Set(credential.KeyGmailToken, encoded); err != nil {
					a.log.WithError(err).Warn("could not persist refreshed token")
					return err
				}
				a.log.Debug("refreshed gmail token saved")
				return nil
			})
		return gmail.NewAdapter(gmail.NewClient(a.cfg.Gmail.BaseURL, httpClient), a.cfg.Gmail.UserID), nil

	case model.SourceTypeIMAP:
		password, err := credential.Resolve(credential.KeyIMAPPassword)
		if err != nil {
			return nil, err
		}
		return email.NewAdapter(
			a.cfg.IMAP.Host, a.cfg.IMAP.Port, a.cfg.IMAP.Username, password, a.cfg.IMAP.TLS,
		), nil

	default:
		return nil, fmt.Errorf("unknown source type %q", a.cfg.Source.Type)
	}
}

// flushMetrics writes the metrics textfile when one is configured.
func (a *app) flushMetrics() {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.log.WithError(err).Warn("metrics not written")
	}
}
