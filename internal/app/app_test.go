package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/internal/ui/detail"
	"github.com/nhle/linkscan/internal/ui/verdictlist"
	"github.com/nhle/linkscan/tests/testutil"
)

func seededStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMessage(ctx, model.Message{
		ID:      "m1",
		Subject: "Quarterly invoice",
		Sender:  "billing@example.com",
		Date:    "Mon, 1 Jan 2024 10:00:00 +0000",
		Body:    "Pay at http://bad.example/pay",
	}, nil, nil)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, s.PutVerdict(ctx, model.LinkVerdict{
		URL: "http://bad.example/pay", EmailID: "m1",
		IPQSSafe: true, CheckedAt: now,
	}))
	require.NoError(t, s.PutVerdict(ctx, model.LinkVerdict{
		URL: "http://good.example/", EmailID: "m1",
		IsSafe: true, IPQSSafe: true, GSBSafe: true, CheckedAt: now.Add(-time.Hour),
	}))
	return s
}

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// step applies msg and returns the model plus the message produced by
// the resulting command, if any.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func loaded(t *testing.T, s store.Store, filter store.VerdictFilter) Model {
	t.Helper()
	m := New(s, filter)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = step(t, m, m.verdictList.LoadVerdicts()())
	return m
}

func TestBrowser_ListsVerdictsNewestFirst(t *testing.T) {
	m := loaded(t, seededStore(t), store.VerdictFilter{})

	view := m.View()
	assert.Contains(t, view, "http://bad.example/pay")
	assert.Contains(t, view, "http://good.example/")
	assert.Contains(t, view, "all · 2")
	assert.Less(t,
		strings.Index(view, "http://bad.example/pay"),
		strings.Index(view, "http://good.example/"),
	)
}

func TestBrowser_OpenDetailAndBack(t *testing.T) {
	m := loaded(t, seededStore(t), store.VerdictFilter{})

	m, msg := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	selected, ok := msg.(verdictlist.SelectedVerdictMsg)
	require.True(t, ok)
	assert.Equal(t, "http://bad.example/pay", selected.Verdict.URL)

	m, msg = step(t, m, selected)
	assert.Equal(t, ViewDetail, m.CurrentView())
	loadedMsg, ok := msg.(detail.DetailLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loadedMsg.Err)

	m, _ = step(t, m, loadedMsg)
	view := m.View()
	assert.Contains(t, view, "UNSAFE")
	assert.Contains(t, view, "Quarterly invoice")
	assert.Contains(t, view, "billing@example.com")

	m, msg = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.IsType(t, detail.BackMsg{}, msg)
	m, _ = step(t, m, msg)
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestBrowser_ToggleUnsafeReloads(t *testing.T) {
	m := loaded(t, seededStore(t), store.VerdictFilter{})

	m, msg := step(t, m, runes('u'))
	// The batch carries the reload and a spinner tick.
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)

	var reloaded tea.Msg
	for _, cmd := range batch {
		if cmd == nil {
			continue
		}
		if out, ok := cmd().(verdictlist.VerdictsLoadedMsg); ok {
			reloaded = out
		}
	}
	require.NotNil(t, reloaded)
	assert.Len(t, reloaded.(verdictlist.VerdictsLoadedMsg).Verdicts, 1)

	m, _ = step(t, m, reloaded)
	assert.Contains(t, m.View(), "unsafe · 1")
	assert.NotContains(t, m.View(), "http://good.example/")
}

func TestBrowser_EmptyStore(t *testing.T) {
	m := loaded(t, testutil.NewTestStore(t), store.VerdictFilter{})
	assert.Contains(t, m.View(), "No verdicts yet")
}

func TestBrowser_HelpToggleAndQuit(t *testing.T) {
	m := loaded(t, seededStore(t), store.VerdictFilter{})

	m, _ = step(t, m, runes('?'))
	assert.Equal(t, ViewHelp, m.CurrentView())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = step(t, m, runes('?'))
	assert.Equal(t, ViewList, m.CurrentView())

	_, cmd := m.Update(runes('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
