// Package console prints human-facing progress and the run summary. The
// structured log is written separately.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

var (
	updatedLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	skippedLabel    = color.New(color.FgYellow).SprintFunc()
	failedLabel     = color.New(color.FgRed, color.Bold).SprintFunc()
	unresolvedLabel = color.New(color.FgMagenta).SprintFunc()
	dryRunLabel     = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint           = color.New(color.Faint).SprintFunc()
)

// Printer writes one line per outcome and a summary table.
type Printer struct {
	out    io.Writer
	dryRun bool
}

// NewPrinter creates a Printer. In dry-run mode updates are labelled as
// planned changes.
func NewPrinter(out io.Writer, dryRun bool) *Printer {
	return &Printer{out: out, dryRun: dryRun}
}

// Header prints the run target.
func (p *Printer) Header(modsDir, gameVersion, loader string) {
	_, _ = fmt.Fprintf(p.out, "Updating mods in %s for %s %s\n", modsDir, loader, gameVersion)
	if p.dryRun {
		_, _ = fmt.Fprintln(p.out, dryRunLabel("Dry run: nothing will be downloaded, moved or written."))
	}
}

// OnOutcome prints the line for o.
func (p *Printer) OnOutcome(o domain.Outcome) {
	_, _ = fmt.Fprintln(p.out, p.line(o))
}

func (p *Printer) line(o domain.Outcome) string {
	name := o.Title
	if name == "" {
		name = o.Identity
	}
	if o.Dependency {
		name = fmt.Sprintf("%s %s", name, faint(fmt.Sprintf("(dependency of %s)", o.Origin)))
	}

	switch o.Action {
	case domain.ActionUpdated:
		label := updatedLabel("[UPDATED]")
		verb := ""
		if p.dryRun {
			label = dryRunLabel("[DRY RUN]")
			verb = "would update "
		}
		return fmt.Sprintf("%s %s%s %s -> %s", label, verb, name, o.Version, o.NewFile)
	case domain.ActionSkipped:
		return fmt.Sprintf("%s %s: %s", skippedLabel("[SKIPPED]"), name, o.Reason)
	case domain.ActionUnresolved:
		return fmt.Sprintf("%s %s: %s", unresolvedLabel("[UNKNOWN]"), name, o.Reason)
	default:
		return fmt.Sprintf("%s %s: %s", failedLabel("[FAILED]"), name, o.Reason)
	}
}

// Summary prints the outcome table and totals.
func (p *Printer) Summary(r *domain.RunReport) {
	if len(r.Outcomes) == 0 {
		_, _ = fmt.Fprintln(p.out, "No mods found.")
		return
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Mod", "Status", "Version", "Reason").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, o := range r.Outcomes {
		t.Row(rowName(o), p.status(o.Action), o.Version, o.Reason)
	}

	_, _ = fmt.Fprintln(p.out, t.Render())

	var totals []string
	for _, a := range []domain.Action{domain.ActionUpdated, domain.ActionSkipped, domain.ActionUnresolved, domain.ActionFailed} {
		totals = append(totals, fmt.Sprintf("%s: %d", p.status(a), r.Count(a)))
	}
	_, _ = fmt.Fprintln(p.out, strings.Join(totals, ", "))

	if r.BackupDir != "" {
		_, _ = fmt.Fprintf(p.out, "Previous files were moved to %s\n", r.BackupDir)
	}
}

func (p *Printer) status(a domain.Action) string {
	if a == domain.ActionUpdated && p.dryRun {
		return "would update"
	}
	return a.String()
}

func rowName(o domain.Outcome) string {
	name := o.Identity
	if o.Dependency {
		name = "+ " + name
	}
	return name
}
