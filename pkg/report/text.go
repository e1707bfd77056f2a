package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/skew202/antislop/pkg/pattern"
	"github.com/skew202/antislop/pkg/scan"
)

var (
	styleFile    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	stylePos     = lipgloss.NewStyle().Faint(true)
	styleMessage = lipgloss.NewStyle().Faint(true)
	styleMatch   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleClean   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleScore   = lipgloss.NewStyle().Bold(true)

	severityStyles = map[pattern.Severity]lipgloss.Style{
		pattern.SevLow:      lipgloss.NewStyle().Faint(true),
		pattern.SevMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		pattern.SevHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		pattern.SevCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Underline(true),
	}

	categoryStyles = map[pattern.Category]lipgloss.Style{
		pattern.CatPlaceholder: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		pattern.CatDeferral:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		pattern.CatHedging:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		pattern.CatStub:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		pattern.CatNoise:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		pattern.CatNaming:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
)

func init() {
	// lipgloss picks this up itself for real TTYs; forcing the check
	// here keeps piped output clean even when a caller wraps stdout.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func renderText(w io.Writer, result *scan.Result) error {
	if len(result.Findings) == 0 {
		fmt.Fprintln(w, styleClean.Render("✓ No slop detected."))
		fmt.Fprintf(w, "%d files scanned\n", result.FilesScanned)
		return nil
	}

	for i := range result.Findings {
		f := &result.Findings[i]
		sevStyle := severityStyles[f.Severity]
		catStyle := categoryStyles[f.Category]

		fmt.Fprintf(w, "%s%s %s %s\n",
			styleFile.Render(f.File),
			stylePos.Render(fmt.Sprintf(":%d:%d", f.Line, f.Column)),
			sevStyle.Render(string(f.Severity)),
			catStyle.Render("["+string(f.Category)+"]"),
		)
		fmt.Fprintf(w, "  %s\n", styleMessage.Render(f.Message))
		fmt.Fprintf(w, "  → %s\n\n", styleMatch.Render(f.MatchText))
	}

	fmt.Fprintf(w, "%d files scanned, %d with findings\n", result.FilesScanned, result.FilesWithFindings)
	fmt.Fprintf(w, "%d total findings\n", result.TotalFindings)
	fmt.Fprintf(w, "sloppy score: %s\n", styleScore.Render(fmt.Sprintf("%d", result.Score)))

	fmt.Fprintf(w, "\n  by severity:")
	for i := len(pattern.Severities) - 1; i >= 0; i-- {
		sev := pattern.Severities[i]
		if n := result.BySeverity[sev]; n > 0 {
			fmt.Fprintf(w, " %s", severityStyles[sev].Render(fmt.Sprintf("%d %s", n, sev)))
		}
	}
	fmt.Fprintf(w, "\n  by category:")
	for _, cat := range pattern.Categories {
		if n := result.ByCategory[cat]; n > 0 {
			fmt.Fprintf(w, " %s", categoryStyles[cat].Render(fmt.Sprintf("%d %s", n, cat)))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\n%s\n", verdict(result.Score))
	return nil
}

// verdict maps the score to a one-line assessment.
func verdict(score int) string {
	switch {
	case score == 0:
		return "✓ Clean code"
	case score <= 10:
		return "minor slop detected"
	case score <= 50:
		return "moderate slop detected"
	case score <= 100:
		return "high slop detected"
	default:
		return "critical slop level"
	}
}
