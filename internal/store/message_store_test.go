package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/tests/testutil"
)

func sampleMessage(id string) model.Message {
	return model.Message{
		ID:       id,
		ThreadID: "t-" + id,
		Subject:  "Hello " + id,
		Sender:   "alice@example.com",
		Date:     "Mon, 1 Jan 2024 10:00:00 +0000",
		Body:     "visit https://example.com/a",
	}
}

func TestSaveMessage_RoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	inserted, err := s.SaveMessage(ctx, sampleMessage("m1"),
		[]model.Attachment{{Filename: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}},
		[]model.ExtractedLink{{URL: "https://example.com/a"}, {URL: "www.test.org"}},
	)
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := s.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, sampleMessage("m1"), *got)

	atts, err := s.GetAttachments(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "a.pdf", atts[0].Filename)
	assert.Equal(t, "m1", atts[0].EmailID)
	assert.Equal(t, []byte("%PDF"), atts[0].Data)
	assert.NotEmpty(t, atts[0].ID)

	links, err := s.GetLinks(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/a", links[0].URL)
	assert.Equal(t, "www.test.org", links[1].URL)
}

func TestSaveMessage_DuplicateKeepsFirstRowButAppendsChildren(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	links := []model.ExtractedLink{{URL: "https://example.com/a"}}
	inserted, err := s.SaveMessage(ctx, sampleMessage("m1"), nil, links)
	require.NoError(t, err)
	assert.True(t, inserted)

	changed := sampleMessage("m1")
	changed.Subject = "different"
	inserted, err = s.SaveMessage(ctx, changed, nil, links)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := s.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Hello m1", got.Subject)

	n, err := s.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := s.GetLinks(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestOldestMessage(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.OldestMessage(ctx)
	assert.ErrorIs(t, err, store.ErrNoMessages)

	for _, id := range []string{"zzz", "aaa", "mmm"} {
		_, err := s.SaveMessage(ctx, sampleMessage(id), nil, nil)
		require.NoError(t, err)
	}

	got, err := s.OldestMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zzz", got.ID)
}

func TestGetLinks_UnknownMessage(t *testing.T) {
	s := testutil.NewTestStore(t)

	links, err := s.GetLinks(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestSaveMessage_EmptyFieldsAllowed(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMessage(ctx, model.Message{ID: "bare"}, nil, nil)
	require.NoError(t, err)

	got, err := s.GetMessage(ctx, "bare")
	require.NoError(t, err)
	assert.Equal(t, model.Message{ID: "bare"}, *got)
}
