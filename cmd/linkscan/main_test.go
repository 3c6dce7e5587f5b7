package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/credential"
	"github.com/nhle/linkscan/internal/model"
)

// setupOracles points both oracles at local servers. GSB flags any URL
// listed in unsafe.
func setupOracles(t *testing.T, unsafe ...string) {
	t.Helper()

	ipqs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "suspicious": false, "phishing": false,
			"malware": false, "risk_score": 0,
		})
	}))
	t.Cleanup(ipqs.Close)

	gsb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ThreatInfo struct {
				ThreatEntries []struct {
					URL string `json:"url"`
				} `json:"threatEntries"`
			} `json:"threatInfo"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, u := range unsafe {
			if body.ThreatInfo.ThreatEntries[0].URL == u {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"matches": []map[string]string{{"threatType": "SOCIAL_ENGINEERING"}},
				})
				return
			}
		}
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(gsb.Close)

	t.Setenv("LINKSCAN_IPQS_BASE_URL", ipqs.URL)
	t.Setenv("LINKSCAN_SAFEBROWSING_BASE_URL", gsb.URL)
	t.Setenv(credential.EnvVar(credential.KeyIPQS), "ipqs-key")
	t.Setenv(credential.EnvVar(credential.KeySafeBrowsing), "gsb-key")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_SafeURL(t *testing.T) {
	setupOracles(t)

	out, err := execute(t, "check", "http://example.com/path")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.com/path")
}

func TestCheck_UnsafeURLExitsTwo(t *testing.T) {
	setupOracles(t, "http://bad.example/login")

	out, err := execute(t, "check", "http://bad.example/login")
	require.Error(t, err)

	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitUnsafe, exitErr.code)
	assert.Contains(t, out, "http://bad.example/login")
}

func TestCheck_RequiresOneArgument(t *testing.T) {
	setupOracles(t)

	_, err := execute(t, "check")
	assert.Error(t, err)
}

func TestConfigInit_DefaultsWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nested", "config.yaml")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "config", "init", "--defaults"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(cfgPath)
	require.NoError(t, err)

	cfg, err := model.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, model.SourceTypeGmail, cfg.Source.Type)
	assert.Equal(t, 10, cfg.Source.Limit)

	// A second init without --force must not overwrite.
	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "config", "init", "--defaults"})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Host")
	assert.NoError(t, v("imap.example.com"))
	assert.EqualError(t, v("   "), "Host is required")
}

func TestValidateNumber(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"993", false},
		{" 10 ", false},
		{"", true},
		{"12a", true},
		{"-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
