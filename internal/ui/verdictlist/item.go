package verdictlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/theme"
)

// VerdictItem wraps a stored verdict so it can be used in a bubbles/list.
type VerdictItem struct {
	Verdict model.LinkVerdict
}

// FilterValue returns the string used for fuzzy filtering.
func (i VerdictItem) FilterValue() string { return i.Verdict.URL }

// Title returns the URL.
func (i VerdictItem) Title() string { return i.Verdict.URL }

// Description returns a short summary line for the list.
func (i VerdictItem) Description() string {
	return strings.Join([]string{
		verdictLabel(i.Verdict.IsSafe),
		model.OracleIPQS + " " + oracleMark(i.Verdict.IPQSSafe),
		model.OracleSafeBrowsing + " " + oracleMark(i.Verdict.GSBSafe),
		relativeTime(i.Verdict.CheckedAt),
	}, " | ")
}

// ItemDelegate renders one verdict per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	vi, ok := item.(VerdictItem)
	if !ok {
		return
	}
	v := vi.Verdict

	badge := theme.VerdictStyle(v.IsSafe).Render(fmt.Sprintf("%-6s", verdictLabel(v.IsSafe)))
	oracles := fmt.Sprintf("%s %s  %s %s",
		model.OracleIPQS, oracleStyle(v.IPQSSafe).Render(oracleMark(v.IPQSSafe)),
		model.OracleSafeBrowsing, oracleStyle(v.GSBSafe).Render(oracleMark(v.GSBSafe)),
	)
	if len(v.UnknownSources) > 0 {
		oracles += theme.OutcomeStyle("unknown").Render(" ?")
	}
	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(v.CheckedAt))

	line := fmt.Sprintf("%s %s  %s  %s", badge, v.URL, oracles, timeStr)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func verdictLabel(safe bool) string {
	if safe {
		return "SAFE"
	}
	return "UNSAFE"
}

func oracleMark(safe bool) string {
	if safe {
		return "✓"
	}
	return "✗"
}

func oracleStyle(safe bool) lipgloss.Style {
	if safe {
		return theme.OutcomeStyle("safe")
	}
	return theme.OutcomeStyle("unsafe")
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
