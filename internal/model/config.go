package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Message source types.
const (
	SourceTypeGmail = "gmail"
	SourceTypeIMAP  = "imap"
)

// envPrefix is prepended to every environment override,
// e.g. LINKSCAN_DATABASE_PATH.
const envPrefix = "LINKSCAN"

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SourceConfig selects the message source and the batch to ingest.
type SourceConfig struct {
	// Type is "gmail" or "imap".
	Type string `mapstructure:"type" yaml:"type"`

	// Folder is the mailbox label (Gmail) or folder (IMAP) to list.
	Folder string `mapstructure:"folder" yaml:"folder"`

	// Limit caps how many of the most recent messages are ingested.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// GmailConfig holds the Gmail REST API and OAuth client settings.
type GmailConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	UserID       string `mapstructure:"user_id" yaml:"user_id"`
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url" yaml:"redirect_url"`
}

// IMAPConfig holds IMAP server settings. The password is read from the
// credential store.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// IPQSConfig configures the score-based reputation oracle.
type IPQSConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Strictness int    `mapstructure:"strictness" yaml:"strictness"`
}

// SafeBrowsingConfig configures the threat-match reputation oracle.
type SafeBrowsingConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	ClientID      string `mapstructure:"client_id" yaml:"client_id"`
	ClientVersion string `mapstructure:"client_version" yaml:"client_version"`
}

// OracleConfig holds settings shared by all oracles.
type OracleConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RatePerSec limits outgoing oracle requests. Zero means unlimited.
	RatePerSec float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the end-of-run metrics dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Source       SourceConfig       `mapstructure:"source" yaml:"source"`
	Gmail        GmailConfig        `mapstructure:"gmail" yaml:"gmail"`
	IMAP         IMAPConfig         `mapstructure:"imap" yaml:"imap"`
	IPQS         IPQSConfig         `mapstructure:"ipqs" yaml:"ipqs"`
	SafeBrowsing SafeBrowsingConfig `mapstructure:"safebrowsing" yaml:"safebrowsing"`
	Oracle       OracleConfig       `mapstructure:"oracle" yaml:"oracle"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
}

// Validate reports configuration values that would make a run fail
// later in a less obvious way.
func (c *AppConfig) Validate() error {
	switch c.Source.Type {
	case SourceTypeGmail, SourceTypeIMAP:
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	if c.Source.Limit < 0 {
		return fmt.Errorf("source.limit must not be negative, got %d", c.Source.Limit)
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle.timeout must be positive, got %s", c.Oracle.Timeout)
	}
	if c.Oracle.RatePerSec < 0 {
		return fmt.Errorf("oracle.rate_per_sec must not be negative, got %v", c.Oracle.RatePerSec)
	}
	if c.Source.Type == SourceTypeIMAP && c.IMAP.Host == "" {
		return errors.New("imap.host is required for the imap source")
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/linkscan/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "linkscan", "config.yaml")
}

// configDefaults maps every config key to its default value.
var configDefaults = map[string]interface{}{
	"database.path":               "emails.db",
	"source.type":                 SourceTypeGmail,
	"source.folder":               "INBOX",
	"source.limit":                10,
	"gmail.base_url":              "https://gmail.googleapis.com",
	"gmail.user_id":               "me",
	"gmail.client_id":             "",
	"gmail.client_secret":         "",
	"gmail.redirect_url":          "http://localhost",
	"imap.host":                   "",
	"imap.port":                   "993",
	"imap.username":               "",
	"imap.tls":                    true,
	"ipqs.base_url":               "https://www.ipqualityscore.com/api/json/url",
	"ipqs.strictness":             0,
	"safebrowsing.base_url":       "https://safebrowsing.googleapis.com/v4/threatMatches:find",
	"safebrowsing.client_id":      "aiagent",
	"safebrowsing.client_version": "1.0",
	"oracle.timeout":              "10s",
	"oracle.rate_per_sec":         0.0,
	"log.level":                   "info",
	"log.format":                  "text",
	"metrics.textfile":            "",
}

// newViper returns a viper instance with defaults and environment
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	for key, val := range configDefaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first so its variables
// can override file values. If the config file does not exist, defaults
// (plus environment overrides) are used.
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("source", cfg.Source)
	v.Set("gmail", cfg.Gmail)
	v.Set("imap", cfg.IMAP)
	v.Set("ipqs", cfg.IPQS)
	v.Set("safebrowsing", cfg.SafeBrowsing)
	v.Set("oracle", map[string]interface{}{
		"timeout":      cfg.Oracle.Timeout.String(),
		"rate_per_sec": cfg.Oracle.RatePerSec,
	})
	v.Set("log", cfg.Log)
	v.Set("metrics", cfg.Metrics)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
