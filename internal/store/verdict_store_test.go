package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/tests/testutil"
)

func TestPutVerdict_RoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMessage(ctx, sampleMessage("m1"), nil, nil)
	require.NoError(t, err)

	has, err := s.HasVerdict(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, has)

	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err = s.PutVerdict(ctx, model.LinkVerdict{
		URL:            "https://example.com/a",
		EmailID:        "m1",
		IsSafe:         false,
		IPQSSafe:       true,
		GSBSafe:        false,
		CheckedAt:      checked,
		UnknownSources: []string{model.OracleSafeBrowsing},
	})
	require.NoError(t, err)

	has, err = s.HasVerdict(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, has)

	got, err := s.GetVerdict(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.EmailID)
	assert.False(t, got.IsSafe)
	assert.True(t, got.IPQSSafe)
	assert.False(t, got.GSBSafe)
	assert.Equal(t, []string{"gsb"}, got.UnknownSources)
	assert.True(t, checked.Equal(got.CheckedAt), "checked_at = %v", got.CheckedAt)
}

func TestPutVerdict_ReplacesExisting(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutVerdict(ctx, model.LinkVerdict{URL: "www.test.org"}))
	require.NoError(t, s.PutVerdict(ctx, model.LinkVerdict{
		URL: "www.test.org", IsSafe: true, IPQSSafe: true, GSBSafe: true,
	}))

	got, err := s.GetVerdict(ctx, "www.test.org")
	require.NoError(t, err)
	assert.True(t, got.IsSafe)
	assert.Empty(t, got.UnknownSources)

	all, err := s.ListVerdicts(ctx, store.VerdictFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPutVerdict_WithoutMessage(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutVerdict(ctx, model.LinkVerdict{URL: "https://x.io", IsSafe: true}))

	got, err := s.GetVerdict(ctx, "https://x.io")
	require.NoError(t, err)
	assert.Empty(t, got.EmailID)
	assert.False(t, got.CheckedAt.IsZero())
}

func TestPutVerdict_UnknownMessageRejected(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.PutVerdict(context.Background(), model.LinkVerdict{
		URL: "https://x.io", EmailID: "no-such-email",
	})
	assert.Error(t, err)
}

func TestListVerdicts_Filters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMessage(ctx, sampleMessage("m1"), nil, nil)
	require.NoError(t, err)
	_, err = s.SaveMessage(ctx, sampleMessage("m2"), nil, nil)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	verdicts := []model.LinkVerdict{
		{URL: "https://a.com", EmailID: "m1", IsSafe: true, CheckedAt: base},
		{URL: "https://b.com", EmailID: "m1", IsSafe: false, CheckedAt: base.Add(time.Minute)},
		{URL: "https://c.com", EmailID: "m2", IsSafe: false, CheckedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range verdicts {
		require.NoError(t, s.PutVerdict(ctx, v))
	}

	all, err := s.ListVerdicts(ctx, store.VerdictFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://c.com", all[0].URL)
	assert.Equal(t, "https://a.com", all[2].URL)

	unsafe, err := s.ListVerdicts(ctx, store.VerdictFilter{UnsafeOnly: true})
	require.NoError(t, err)
	assert.Len(t, unsafe, 2)

	m1 := "m1"
	unsafeM1, err := s.ListVerdicts(ctx, store.VerdictFilter{UnsafeOnly: true, EmailID: &m1})
	require.NoError(t, err)
	require.Len(t, unsafeM1, 1)
	assert.Equal(t, "https://b.com", unsafeM1[0].URL)

	page, err := s.ListVerdicts(ctx, store.VerdictFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "https://b.com", page[0].URL)

	tail, err := s.ListVerdicts(ctx, store.VerdictFilter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "https://a.com", tail[0].URL)
}
