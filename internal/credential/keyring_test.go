package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "LINKSCAN_IPQS_API_KEY", EnvVar(KeyIPQS))
	assert.Equal(t, "LINKSCAN_SAFEBROWSING_API_KEY", EnvVar(KeySafeBrowsing))
	assert.Equal(t, "LINKSCAN_GMAIL_TOKEN", EnvVar(KeyGmailToken))
}

func TestResolve_PrefersEnvironment(t *testing.T) {
	t.Setenv("LINKSCAN_IMAP_PASSWORD", "hunter2")

	v, err := Resolve(KeyIMAPPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)
}

func TestIsKnown(t *testing.T) {
	for _, k := range Keys {
		assert.True(t, IsKnown(k), k)
	}
	assert.False(t, IsKnown("jira-token"))
}
