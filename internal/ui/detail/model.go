package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/linkscan/internal/keys"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/store"
	"github.com/nhle/linkscan/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries a verdict and the message it was first seen
// in. Message is nil when the verdict has no email or the lookup failed.
type DetailLoadedMsg struct {
	Verdict model.LinkVerdict
	Message *model.Message
	Err     error
}

// Model is the verdict detail view component.
type Model struct {
	loaded   *DetailLoadedMsg
	viewport viewport.Model
	store    store.Store
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(s store.Store, keys *keys.KeyMap, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		store:    s,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Load returns a command that looks up the message a verdict was first
// seen in.
func (m *Model) Load(v model.LinkVerdict) tea.Cmd {
	m.loading = true
	s := m.store
	return func() tea.Msg {
		if v.EmailID == "" {
			return DetailLoadedMsg{Verdict: v}
		}
		msg, err := s.GetMessage(context.Background(), v.EmailID)
		return DetailLoadedMsg{Verdict: v, Message: msg, Err: err}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.loaded = &msg
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Scrolling (j/k, up/down, pgup/pgdn) goes to the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading...")
	}
	if m.loaded == nil {
		return placeholder.Render("No verdict selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.loaded == nil {
		return ""
	}
	v := m.loaded.Verdict

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-10s", label+":")), valStyle.Render(value))
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(v.URL))

	label := "SAFE"
	if !v.IsSafe {
		label = "UNSAFE"
	}
	sections = append(sections, theme.VerdictStyle(v.IsSafe).Render(label), "")

	sections = append(sections,
		row(model.OracleIPQS, outcome(v.IPQSSafe, v.UnknownSources, model.OracleIPQS)),
		row(model.OracleSafeBrowsing, outcome(v.GSBSafe, v.UnknownSources, model.OracleSafeBrowsing)),
	)
	if !v.CheckedAt.IsZero() {
		sections = append(sections, row("Checked", v.CheckedAt.Local().Format("2006-01-02 15:04")))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorBorder)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, headerStyle.Render("First seen in"))

	emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
	switch {
	case v.EmailID == "":
		sections = append(sections, emptyStyle.Render("No message recorded"))
	case m.loaded.Err != nil:
		sections = append(sections,
			row("Message", v.EmailID),
			emptyStyle.Render("Message not available: "+m.loaded.Err.Error()),
		)
	default:
		msg := m.loaded.Message
		sections = append(sections,
			row("Message", msg.ID),
			row("Subject", msg.Subject),
			row("From", msg.Sender),
			row("Date", msg.Date),
			"",
			msg.Body,
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// outcome describes one oracle's stored answer. An oracle listed in
// unknown reported neither safe nor unsafe.
func outcome(safe bool, unknown []string, oracle string) string {
	for _, name := range unknown {
		if name == oracle {
			return theme.OutcomeStyle("unknown").Render("unknown (counted as unsafe)")
		}
	}
	if safe {
		return theme.OutcomeStyle("safe").Render("safe")
	}
	return theme.OutcomeStyle("unsafe").Render("unsafe")
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if m.loaded != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
