// Package app is the interactive verdict browser.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/linkscan/internal/keys"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/internal/ui"
	"github.com/nhle/linkscan/internal/ui/detail"
	helpview "github.com/nhle/linkscan/internal/ui/help"
	"github.com/nhle/linkscan/internal/ui/verdictlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
)

// Model is the root Bubble Tea model that routes between the verdict
// list, the verdict detail and the help overlay.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	verdictList  verdictlist.Model
	detail       detail.Model
	helpView     helpview.Model
	spinner      spinner.Model
	loading      bool
	ready        bool
}

// New creates the browser over s, starting with filter.
func New(s store.Store, filter store.VerdictFilter) Model {
	k := keys.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		currentView: ViewList,
		keys:        k,
		verdictList: verdictlist.New(s, k, filter, 80, 22),
		detail:      detail.New(s, k, 80, 22),
		helpView:    helpview.New(k, 80, 22),
		spinner:     sp,
		loading:     true,
	}
}

// Init loads the first page of verdicts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.verdictList.Init(), m.spinner.Tick)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		h := m.layout.ContentHeight()
		m.verdictList.SetSize(msg.Width, h)
		m.detail.SetSize(msg.Width, h)
		m.helpView.SetSize(msg.Width, h)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case verdictlist.VerdictsLoadedMsg:
		m.loading = false
		var cmd tea.Cmd
		m.verdictList, cmd = m.verdictList.Update(msg)
		return m, cmd

	case verdictlist.SelectedVerdictMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, m.detail.Load(msg.Verdict)

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit

		case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil

		case m.currentView == ViewList &&
			(key.Matches(msg, m.keys.Refresh) || key.Matches(msg, m.keys.ToggleUnsafe)):
			m.loading = true
			var cmd tea.Cmd
			m.verdictList, cmd = m.verdictList.Update(msg)
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.verdictList, cmd = m.verdictList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	}

	return m, cmd
}

// View renders the frame and the active view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := m.verdictList.Summary()
	if m.loading {
		status = m.spinner.View() + " loading"
	}
	header := m.layout.RenderHeader("linkscan", status)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.verdictList.View()
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k scroll | ? help"
	default:
		if m.verdictList.UnsafeOnly() {
			return "q quit | enter open | u show all | r reload | ? help"
		}
		return "q quit | enter open | u unsafe only | r reload | ? help"
	}
}

// CurrentView reports the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}
