package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// Reporter prints the end-of-run summary block.
type Reporter struct {
	w       io.Writer
	title   lipgloss.Style
	good    lipgloss.Style
	muted   lipgloss.Style
	bad     lipgloss.Style
	divider string
}

var _ ports.Reporter = (*Reporter)(nil)

// New styles output for w; non-terminal writers get plain text.
func New(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:       w,
		title:   r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("10")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		divider: strings.Repeat("=", 50),
	}
}

// Report writes counts, then updated titles, then errors with their messages.
func (r *Reporter) Report(s domain.Summary) error {
	var b strings.Builder

	b.WriteString("\n" + r.divider + "\n")
	b.WriteString(r.title.Render("SUMMARY") + "\n")
	b.WriteString(r.divider + "\n")
	b.WriteString(r.good.Render(fmt.Sprintf("Updated: %d", len(s.Updated))) + "\n")
	b.WriteString(r.muted.Render(fmt.Sprintf("Skipped: %d", len(s.Skipped))) + "\n")
	b.WriteString(r.bad.Render(fmt.Sprintf("Errors:  %d", len(s.Errors))) + "\n")

	if len(s.Updated) > 0 {
		b.WriteString("\nUpdated posts:\n")
		for _, res := range s.Updated {
			line := "  - " + label(res)
			if res.DryRun {
				line += " " + r.muted.Render("(dry run)")
			}
			b.WriteString(line + "\n")
		}
	}

	if len(s.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, res := range s.Errors {
			b.WriteString("  - " + label(res) + ": " + r.bad.Render(res.Message) + "\n")
		}
	}

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func label(res domain.EnrichmentResult) string {
	return domain.Movie{Title: res.Title, Year: res.Year}.Label()
}

// History prints ledger entries, newest first, one per line.
func (r *Reporter) History(entries []domain.LedgerEntry) error {
	var b strings.Builder

	if len(entries) == 0 {
		b.WriteString(r.muted.Render("No recorded results.") + "\n")
	}
	for _, e := range entries {
		outcome := string(e.Result.Outcome)
		switch e.Result.Outcome {
		case domain.OutcomeUpdated:
			if e.Result.DryRun {
				outcome += " (dry run)"
			}
			outcome = r.good.Render(outcome)
		case domain.OutcomeSkipped:
			outcome = r.muted.Render(outcome + ": " + string(e.Result.Reason))
		case domain.OutcomeError:
			outcome = r.bad.Render(outcome)
		}

		line := fmt.Sprintf("%s  %s  %s  %s", e.RecordedAt.Format("2006-01-02 15:04:05"), outcome, label(e.Result), e.Result.PostURL)
		if e.Result.Message != "" {
			line += "  " + e.Result.Message
		}
		b.WriteString(line + "\n")
	}

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
