package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
	"github.com/nhle/linkscan/internal/pipeline"
	"github.com/nhle/linkscan/internal/theme"
)

// Console renders pipeline progress for a terminal.
type Console struct {
	out io.Writer
}

var _ pipeline.Progress = (*Console)(nil)

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// MessageStored prints the URLs found in a newly ingested message.
func (c *Console) MessageStored(msg model.Message, urls []string, inserted bool) {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	note := ""
	if !inserted {
		note = " " + theme.HelpStyle.Render("(already stored)")
	}
	fmt.Fprintf(c.out, "%s %s: %d URL(s) found%s\n",
		theme.HeaderStyle.Render(msg.ID), subject, len(urls), note)

	for _, u := range urls {
		fmt.Fprintln(c.out, theme.ListItemStyle.Render(u))
	}
}

// VerifyStarted prints the message whose links are about to be checked.
func (c *Console) VerifyStarted(msg model.Message, links int) {
	fmt.Fprintf(c.out, "%s %d link(s) from %q\n",
		theme.HeaderStyle.Render("verify "+msg.ID), links, msg.Subject)
}

// URLSkipped prints an already-checked notice.
func (c *Console) URLSkipped(url string) {
	fmt.Fprintln(c.out, theme.ListItemStyle.Render(
		theme.HelpStyle.Render("already scanned: "+url),
	))
}

// URLChecked prints the combined verdict and each oracle's outcome.
func (c *Console) URLChecked(cs oracle.Consensus) {
	fmt.Fprintln(c.out, theme.ListItemStyle.Render(FormatConsensus(cs)))
}

// IngestSummary prints the end-of-run ingestion summary.
func (c *Console) IngestSummary(r pipeline.IngestResult) {
	if r.Listed == 0 {
		fmt.Fprintln(c.out, theme.HelpStyle.Render("No messages found."))
		return
	}
	summary := fmt.Sprintf(
		"listed %d · stored %d · duplicates %d · attachments %d · links %d",
		r.Listed, r.Stored, r.Duplicates, r.Attachments, r.Links,
	)
	if r.Failed > 0 {
		summary += fmt.Sprintf(" · failed %d", r.Failed)
	}
	fmt.Fprintln(c.out, theme.SummaryStyle.Render(summary))
}

// VerifySummary prints the end-of-run verification summary.
func (c *Console) VerifySummary(r pipeline.VerifyResult) {
	fmt.Fprintln(c.out, theme.SummaryStyle.Render(fmt.Sprintf(
		"message %s · links %d · checked %d · skipped %d · safe %d · unsafe %d",
		r.MessageID, r.Links, r.Checked(), r.Skipped, r.Safe, r.Unsafe,
	)))
}

// Verdicts prints stored verdicts as an aligned table.
func (c *Console) Verdicts(verdicts []model.LinkVerdict) {
	if len(verdicts) == 0 {
		fmt.Fprintln(c.out, theme.HelpStyle.Render("No verdicts stored."))
		return
	}

	width := 0
	for _, v := range verdicts {
		if w := lipgloss.Width(v.URL); w > width {
			width = w
		}
	}
	urlCol := lipgloss.NewStyle().Width(width + 2)

	for _, v := range verdicts {
		line := urlCol.Render(v.URL) +
			verdictLabel(v.IsSafe) +
			fmt.Sprintf("  %s=%s %s=%s",
				model.OracleIPQS, passFail(v.IPQSSafe),
				model.OracleSafeBrowsing, passFail(v.GSBSafe)) +
			"  " + v.CheckedAt.Local().Format(time.DateTime)
		if len(v.UnknownSources) > 0 {
			line += "  " + theme.OutcomeStyle("unknown").Render(
				"unknown: "+strings.Join(v.UnknownSources, ","))
		}
		fmt.Fprintln(c.out, line)
	}
}

// FormatConsensus renders a verdict line such as
// "UNSAFE https://x (ipqs: safe, gsb: unsafe [MALWARE])".
func FormatConsensus(cs oracle.Consensus) string {
	parts := make([]string, 0, len(cs.Verdicts))
	for _, v := range cs.Verdicts {
		s := v.Oracle + ": " + theme.OutcomeStyle(v.Outcome.String()).Render(v.Outcome.String())
		if len(v.Threats) > 0 {
			s += " [" + strings.Join(v.Threats, ",") + "]"
		}
		if v.Err != nil {
			s += " (" + v.Err.Error() + ")"
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("%s %s (%s)", verdictLabel(cs.Safe), cs.URL, strings.Join(parts, ", "))
}

func verdictLabel(safe bool) string {
	if safe {
		return theme.VerdictStyle(true).Render("SAFE")
	}
	return theme.VerdictStyle(false).Render("UNSAFE")
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
