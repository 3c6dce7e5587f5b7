package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers such as the message being
// verified.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// ListItemStyle indents URLs listed under a message.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// HelpStyle is used for secondary text such as skip notices.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SummaryStyle frames the end-of-run summary.
var SummaryStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// VerdictStyle returns the style for a combined verdict label.
func VerdictStyle(safe bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if safe {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorRed)
}

// OutcomeStyle returns a color-coded style for a single oracle outcome
// ("safe", "unsafe" or "unknown").
func OutcomeStyle(outcome string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch outcome {
	case "safe":
		return base.Foreground(ColorGreen)
	case "unsafe":
		return base.Foreground(ColorRed)
	case "unknown":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

// SourceLabelStyle returns a color-coded style for the given source type label.
func SourceLabelStyle(sourceType string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch sourceType {
	case "gmail":
		return base.Foreground(ColorRed)
	case "imap":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// SelectedItemStyle highlights the cursor row in the verdict browser.
var SelectedItemStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorBorder).
	Bold(true).
	PaddingLeft(2)

// StatusBarStyle is the bottom key-hint bar of the verdict browser.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 1)

// DetailPanelStyle frames overlay panels such as the help screen.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)
