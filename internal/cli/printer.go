package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/at-ishikawa/legogate/internal/gate"
	"github.com/at-ishikawa/legogate/internal/lut"
	"github.com/at-ishikawa/legogate/internal/pipeline"
	"github.com/at-ishikawa/legogate/internal/remediation"
	"github.com/at-ishikawa/legogate/internal/sequence"
	"github.com/fatih/color"
)

// ReportPrinter writes human readable reports to a terminal
type ReportPrinter struct {
	writer io.Writer
	bold   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

func NewReportPrinter(writer io.Writer) *ReportPrinter {
	return &ReportPrinter{
		writer: writer,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
	}
}

func (p *ReportPrinter) PrintSequence(refs []sequence.LegoRef) {
	for _, ref := range refs {
		fmt.Fprintf(p.writer, "%5d  %s  %-9s  %s = %s\n",
			ref.Position, ref.Lego.ID, ref.Lego.Type, p.bold.Sprint(ref.Lego.Target), ref.Lego.Known)
	}
	fmt.Fprintf(p.writer, "\n%d LEGO(s) in %d seed(s)\n", len(refs), len(sequence.SeedIDs(refs)))
}

func (p *ReportPrinter) PrintFindings(errs []pipeline.Finding, warnings []pipeline.Finding) {
	if len(errs) > 0 {
		p.red.Fprintf(p.writer, "✗ Structural errors (%d):\n", len(errs))
		for _, finding := range errs {
			fmt.Fprintf(p.writer, "  - %s\n", finding)
		}
		fmt.Fprintln(p.writer)
	}
	if len(warnings) > 0 {
		p.yellow.Fprintf(p.writer, "⚠ Warnings (%d):\n", len(warnings))
		for _, finding := range warnings {
			fmt.Fprintf(p.writer, "  - %s\n", finding)
		}
		fmt.Fprintln(p.writer)
	}
}

func (p *ReportPrinter) PrintDedup(summary pipeline.DedupSummary) {
	fmt.Fprintln(p.writer, "=== Deduplication ===")
	fmt.Fprintf(p.writer, "LEGOs: %d, new: %d, duplicates: %d\n", summary.Legos, summary.New, summary.Duplicates)
	if len(summary.Groups) > 0 {
		fmt.Fprintf(p.writer, "\n  Duplicate LEGOs (%d):\n", len(summary.Groups))
		for _, group := range summary.Groups {
			duplicates := make([]string, len(group.Duplicates))
			for i, id := range group.Duplicates {
				duplicates[i] = string(id)
			}
			original := string(group.Original)
			if original == "" {
				original = "registry"
			}
			fmt.Fprintf(p.writer, "    - %s = %s: %s <- %s\n",
				p.bold.Sprint(group.Target), group.Known, original, strings.Join(duplicates, ", "))
		}
	}
	fmt.Fprintln(p.writer)
}

func (p *ReportPrinter) PrintGate(report gate.Report) {
	fmt.Fprintf(p.writer, "=== GATE (%s) ===\n", report.Policy)
	for _, lego := range report.Legos {
		if len(lego.Violations) == 0 {
			continue
		}
		p.red.Fprintf(p.writer, "✗ %s (%d/%d phrase(s)):\n", lego.LegoID, len(lego.Violations), lego.Phrases)
		for _, v := range lego.Violations {
			fmt.Fprintf(p.writer, "    - #%d %s (%s): %s\n", v.Index, v.Target, v.Known, p.bold.Sprint(strings.Join(v.Tokens, ", ")))
		}
	}
	printIDs := func(label string, ids []string) {
		if len(ids) == 0 {
			return
		}
		p.yellow.Fprintf(p.writer, "⚠ %s (%d): %s\n", label, len(ids), strings.Join(ids, ", "))
	}
	printIDs("Baskets on duplicate LEGOs", legoIDStrings(report.StrayBaskets))
	printIDs("Baskets on unknown LEGOs", legoIDStrings(report.UnknownBaskets))
	printIDs("New LEGOs without baskets", legoIDStrings(report.MissingBaskets))

	fmt.Fprintf(p.writer, "Phrases: %d, violations: %d (%.1f%%)\n\n", report.Phrases, report.Violations, report.Rate*100)
}

func (p *ReportPrinter) PrintLut(report lut.Report) {
	bound := "all seeds"
	if report.Bound != "" {
		bound = "through " + string(report.Bound)
	}
	fmt.Fprintf(p.writer, "=== LUT (%s) ===\n", bound)
	for _, collision := range report.Collisions {
		keep := collision.Keep()
		p.red.Fprintf(p.writer, "✗ %s:", collision.Known)
		fmt.Fprintf(p.writer, " keep %s (%s)", p.bold.Sprint(keep.Target), keep.SeedID)
		for _, variant := range collision.Remove() {
			fmt.Fprintf(p.writer, ", chunk up or remove %s (%s)", p.bold.Sprint(variant.Target), variant.SeedID)
		}
		fmt.Fprintln(p.writer)
	}
	fmt.Fprintf(p.writer, "Scanned: %d, collisions: %d\n\n", report.Scanned, len(report.Collisions))
}

func (p *ReportPrinter) PrintReport(report *pipeline.Report) {
	fmt.Fprintf(p.writer, "Course report %s\n\n", report.Fingerprint)
	p.PrintFindings(report.Errors, report.Warnings)
	p.PrintDedup(report.Dedup)
	p.PrintGate(report.Gate)
	p.PrintLut(report.Lut)

	fmt.Fprintln(p.writer, "=== Summary ===")
	if !report.HasFindings() {
		p.green.Fprintln(p.writer, "✓ All validations passed!")
		return
	}
	if report.HasErrors() {
		p.red.Fprintf(p.writer, "✗ Total errors: %d\n", len(report.Errors))
	}
	if len(report.Warnings) > 0 {
		p.yellow.Fprintf(p.writer, "⚠ Total warnings: %d\n", len(report.Warnings))
	}
	if report.Gate.HasViolations() {
		p.red.Fprintf(p.writer, "✗ GATE violations: %d\n", report.Gate.Violations)
	}
	if report.Lut.HasCollisions() {
		p.red.Fprintf(p.writer, "✗ LUT collisions: %d\n", len(report.Lut.Collisions))
	}
}

func (p *ReportPrinter) PrintRemovals(result remediation.Result) {
	if !result.Changed() {
		p.green.Fprintln(p.writer, "✓ Nothing to remove.")
		return
	}
	for _, removal := range result.Removed {
		fmt.Fprintf(p.writer, "  - %s: %s (%s)\n", removal.LegoID, removal.Phrase.Target, strings.Join(removal.Tokens, ", "))
	}
	if len(result.DroppedBaskets) > 0 {
		fmt.Fprintf(p.writer, "  Dropped baskets: %s\n", strings.Join(legoIDStrings(result.DroppedBaskets), ", "))
	}
	fmt.Fprintf(p.writer, "Removed %d phrase(s) and %d basket(s)\n", len(result.Removed), len(result.DroppedBaskets))
}
