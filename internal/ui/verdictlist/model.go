package verdictlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/linkscan/internal/keys"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/internal/theme"
)

// VerdictsLoadedMsg is sent when verdicts have been loaded from the store.
type VerdictsLoadedMsg struct {
	Verdicts []model.LinkVerdict
	Err      error
}

// SelectedVerdictMsg is sent when the user opens a verdict.
type SelectedVerdictMsg struct {
	Verdict model.LinkVerdict
}

// Model is the verdict list view component.
type Model struct {
	list   list.Model
	store  store.Store
	keys   *keys.KeyMap
	filter store.VerdictFilter
	err    error
	width  int
	height int
}

// New creates a new verdict list model. filter is the initial query;
// UnsafeOnly can be toggled from the keyboard afterwards.
func New(s store.Store, k *keys.KeyMap, filter store.VerdictFilter, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.Title = "Verdicts"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		store:  s,
		keys:   k,
		filter: filter,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the initial set of verdicts.
func (m Model) Init() tea.Cmd {
	return m.LoadVerdicts()
}

// Update handles messages for the verdict list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case VerdictsLoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Verdicts))
		for i, v := range msg.Verdicts {
			items[i] = VerdictItem{Verdict: v}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(VerdictItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedVerdictMsg{Verdict: item.Verdict}
			}

		case key.Matches(msg, m.keys.ToggleUnsafe):
			m.filter.UnsafeOnly = !m.filter.UnsafeOnly
			return m, m.LoadVerdicts()

		case key.Matches(msg, m.keys.Refresh):
			return m, m.LoadVerdicts()
		}
	}

	// Navigation keys (up/down/pgup/pgdn) go to the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the verdict list view.
func (m Model) View() string {
	if m.err != nil || len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.err != nil:
		return style.Foreground(theme.ColorRed).Render("Could not load verdicts:\n" + m.err.Error())
	case m.filter.UnsafeOnly:
		return style.Render("No unsafe verdicts.\nPress u to show all.")
	default:
		return style.Render("No verdicts yet.\n\nRun `linkscan ingest` then `linkscan verify`.")
	}
}

// LoadVerdicts returns a tea.Cmd that queries the store with the current filter.
func (m Model) LoadVerdicts() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		verdicts, err := s.ListVerdicts(context.Background(), filter)
		return VerdictsLoadedMsg{Verdicts: verdicts, Err: err}
	}
}

// Summary describes the active filter and item count for the header.
func (m Model) Summary() string {
	scope := "all"
	if m.filter.UnsafeOnly {
		scope = "unsafe"
	}
	return fmt.Sprintf("%s · %d", scope, len(m.list.Items()))
}

// UnsafeOnly reports whether the list is filtered to unsafe verdicts.
func (m Model) UnsafeOnly() bool {
	return m.filter.UnsafeOnly
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
