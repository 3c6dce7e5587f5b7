package pipeline_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/metrics"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
	"github.com/nhle/linkscan/internal/pipeline"
	"github.com/nhle/linkscan/internal/store"
	storeutil "github.com/nhle/linkscan/tests/testutil"
)

func seed(t *testing.T, s *store.SQLiteStore, id string, urls ...string) {
	t.Helper()
	links := make([]model.ExtractedLink, len(urls))
	for i, u := range urls {
		links[i] = model.ExtractedLink{URL: u}
	}
	_, err := s.SaveMessage(context.Background(), model.Message{ID: id}, nil, links)
	require.NoError(t, err)
}

func TestVerify_ChecksOldestMessageLinks(t *testing.T) {
	s := storeutil.NewTestStore(t)
	seed(t, s, "first", "https://good.example.com", "https://bad.example.com")
	seed(t, s, "second", "https://other.example.com")

	ipqs := newCountingOracle(model.OracleIPQS, nil)
	gsb := newCountingOracle(model.OracleSafeBrowsing, map[string]oracle.Outcome{
		"https://bad.example.com": oracle.Unsafe,
	})
	progress := &recordingProgress{}
	m := metrics.New()

	result, err := pipeline.NewVerifier(s, oracle.Panel{ipqs, gsb}, nil, m, progress).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "first", result.MessageID)
	assert.Equal(t, 2, result.Links)
	assert.Equal(t, 1, result.Safe)
	assert.Equal(t, 1, result.Unsafe)
	assert.Equal(t, 2, result.Checked())
	assert.Equal(t, 0, ipqs.Calls("https://other.example.com"))

	ctx := context.Background()
	good, err := s.GetVerdict(ctx, "https://good.example.com")
	require.NoError(t, err)
	assert.True(t, good.IsSafe)
	assert.True(t, good.IPQSSafe)
	assert.True(t, good.GSBSafe)
	assert.Equal(t, "first", good.EmailID)

	bad, err := s.GetVerdict(ctx, "https://bad.example.com")
	require.NoError(t, err)
	assert.False(t, bad.IsSafe)
	assert.True(t, bad.IPQSSafe)
	assert.False(t, bad.GSBSafe)
	assert.Empty(t, bad.UnknownSources)

	require.Len(t, progress.checked, 2)
	assert.Equal(t, "https://good.example.com", progress.checked[0].URL)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("unsafe")))
}

func TestVerify_SecondRunNeverRequeriesCheckedURL(t *testing.T) {
	s := storeutil.NewTestStore(t)
	seed(t, s, "m1", "https://a.example.com", "https://b.example.com")

	ipqs := newCountingOracle(model.OracleIPQS, nil)
	gsb := newCountingOracle(model.OracleSafeBrowsing, nil)
	v := pipeline.NewVerifier(s, oracle.Panel{ipqs, gsb}, nil, nil, nil)

	_, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ipqs.Calls("https://a.example.com"))

	fresh := newCountingOracle(model.OracleIPQS, nil)
	progress := &recordingProgress{}
	result, err := pipeline.NewVerifier(s, oracle.Panel{fresh}, nil, nil, progress).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, fresh.Calls("https://a.example.com"))
	assert.Equal(t, 0, fresh.Calls("https://b.example.com"))
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Checked())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, progress.skipped)
}

func TestVerify_DuplicateURLInMessageCheckedOnce(t *testing.T) {
	s := storeutil.NewTestStore(t)
	seed(t, s, "m1", "www.dup.org", "www.dup.org")

	ipqs := newCountingOracle(model.OracleIPQS, nil)
	m := metrics.New()
	result, err := pipeline.NewVerifier(s, oracle.Panel{ipqs}, nil, m, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ipqs.Calls("www.dup.org"))
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinksSkipped))
}

func TestVerify_UnknownIsRecordedUnsafe(t *testing.T) {
	s := storeutil.NewTestStore(t)
	seed(t, s, "m1", "https://flaky.example.com")

	ipqs := newCountingOracle(model.OracleIPQS, nil)
	gsb := newCountingOracle(model.OracleSafeBrowsing, map[string]oracle.Outcome{
		"https://flaky.example.com": oracle.Unknown,
	})

	result, err := pipeline.NewVerifier(s, oracle.Panel{ipqs, gsb}, nil, nil, nil).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Unsafe)

	got, err := s.GetVerdict(context.Background(), "https://flaky.example.com")
	require.NoError(t, err)
	assert.False(t, got.IsSafe)
	assert.True(t, got.IPQSSafe)
	assert.False(t, got.GSBSafe)
	assert.Equal(t, []string{model.OracleSafeBrowsing}, got.UnknownSources)
}

func TestVerify_EmptyStore(t *testing.T) {
	s := storeutil.NewTestStore(t)

	_, err := pipeline.NewVerifier(s, oracle.Panel{}, nil, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, store.ErrNoMessages)
}

func TestVerify_MessageWithoutLinks(t *testing.T) {
	s := storeutil.NewTestStore(t)
	seed(t, s, "m1")

	result, err := pipeline.NewVerifier(s, oracle.Panel{}, nil, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerifyResult{MessageID: "m1"}, result)
}
