// Package render turns a finished report into text, markdown or HTML and
// exports it to disk.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"finprobe/domain/report"
	"finprobe/internal/config"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	bannerWidth = 80
	timeLayout  = "2006-01-02 15:04:05"
)

// Options caps how much of each result list is displayed
type Options struct {
	CorrelationLimit int
	GroupLimit       int
	FindingLimit     int
}

// OptionsFrom takes the display limits from the analysis settings
func OptionsFrom(cfg config.AnalysisConfig) Options {
	return Options{
		CorrelationLimit: cfg.CorrelationDisplayLimit,
		GroupLimit:       cfg.GroupDisplayLimit,
		FindingLimit:     cfg.FindingDisplayLimit,
	}
}

// Renderer writes a report in one output format
type Renderer interface {
	Render(w io.Writer, rep *report.Report) error
}

// TextRenderer prints the sectioned console report
type TextRenderer struct {
	opts Options
}

// NewTextRenderer creates a text renderer
func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{opts: opts}
}

// printer keeps the first write error so sections can print unconditionally
type printer struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, p: message.NewPrinter(language.English)}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = p.p.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) {
	p.printf("%s\n", s)
}

func (p *printer) banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	p.printf("\n%s\n%s\n%s\n", rule, title, rule)
}

func (p *printer) heading(title string, width int) {
	p.printf("\n%s\n%s\n", title, strings.Repeat("-", width))
}

// Render writes every section of the report
func (r *TextRenderer) Render(w io.Writer, rep *report.Report) error {
	p := newPrinter(w)

	r.overview(p, rep)
	r.financial(p, rep)
	r.trends(p, rep)
	r.market(p, rep)
	r.risks(p, rep)
	r.recommendations(p, rep)
	r.summary(p, rep)
	r.complete(p, rep)

	return p.err
}

func (r *TextRenderer) overview(p *printer, rep *report.Report) {
	p.banner("FINANCIAL WORKBOOK ANALYSIS - " + rep.StartedAt.Format(timeLayout))
	p.printf("Workbook: %s\n", rep.Path)
	p.printf("Found %d tabs in the workbook:\n", len(rep.SheetNames))

	skipped := make(map[string]string, len(rep.Skipped))
	for _, s := range rep.Skipped {
		skipped[s.Sheet] = s.Err
	}
	for i, name := range rep.SheetNames {
		p.printf("  %d. %s\n", i+1, name)
		if ta, ok := rep.Table(name); ok {
			p.printf("     └─ Shape: %d rows × %d columns\n", ta.Profile.Rows, ta.Profile.Columns)
		} else if msg, ok := skipped[name]; ok {
			p.printf("     └─ Error loading: %s\n", msg)
		}
	}
}

func (r *TextRenderer) financial(p *printer, rep *report.Report) {
	p.banner("COMPREHENSIVE FINANCIAL ANALYSIS")
	for _, ta := range rep.Tables {
		prof := ta.Profile
		p.heading("Analyzing "+prof.Table+":", 50)
		p.printf("Dimensions: %d rows × %d columns\n", prof.Rows, prof.Columns)

		if !prof.HasFinancialData() {
			p.line("No financial columns identified")
			continue
		}
		p.printf("Financial columns found: %s\n", strings.Join(prof.FinancialColumns, ", "))
		if len(prof.Stats) == 0 {
			continue
		}

		p.line("\nKey Statistics:")
		for _, s := range prof.Stats {
			p.printf("  %s:\n", s.Column)
			p.printf("    Mean: %.2f\n", s.Mean)
			p.printf("    Median: %.2f\n", s.Median)
			if s.StdDev != nil {
				p.printf("    Std Dev: %.2f\n", *s.StdDev)
			}
			if s.Range != nil {
				p.printf("    Range: %.2f to %.2f\n", s.Range.Min, s.Range.Max)
			}
		}
	}
}

func (r *TextRenderer) trends(p *printer, rep *report.Report) {
	p.banner("ADVANCED TREND ANALYSIS")
	for _, ta := range rep.Tables {
		tr := ta.Trend
		p.heading("Trend Analysis for "+tr.Table+":", 40)

		if len(tr.DateColumns) > 0 {
			p.printf("Date columns found: %s\n", strings.Join(tr.DateColumns, ", "))
		}
		for _, tl := range tr.Timelines {
			p.printf("\n  Timeline for %s:\n", tl.DateColumn)
			if tl.Err != "" {
				p.printf("    Error in trend analysis: %s\n", tl.Err)
				continue
			}
			p.printf("    Period: %s to %s\n", tl.Start, tl.End)
			for _, g := range tl.Growth {
				p.printf("    %s growth: %s\n", g.Column, FormatGrowth(g))
			}
		}

		if !tr.CorrelationTested {
			continue
		}
		p.line("\n  Correlation Analysis:")
		if len(tr.Correlations) == 0 {
			p.line("    No strong correlations found")
			continue
		}
		p.line("    Strong correlations found:")
		for _, c := range head(tr.Correlations, r.opts.CorrelationLimit) {
			p.printf("      %s ↔ %s: %.3f\n", c.A, c.B, c.R)
		}
	}
}

func (r *TextRenderer) market(p *printer, rep *report.Report) {
	p.banner("COMPETITIVE & MARKET ANALYSIS")
	for _, ta := range rep.Tables {
		cat := ta.Categorical
		p.heading("Market Analysis for "+cat.Table+":", 40)

		if !cat.AnalysisPerformed {
			p.line("  No categorical columns suitable for comparison")
			continue
		}
		for _, b := range cat.Breakdowns {
			p.printf("\n  Categories in %s (%d distinct):\n", b.Column, b.DistinctCount)
			for i, c := range b.Categories {
				p.printf("    %d. %s: %d records\n", i+1, c.Label, c.Count)
			}
			if len(b.Comparisons) == 0 {
				continue
			}
			p.printf("\n  Performance Comparison by %s:\n", b.Column)
			for _, cmp := range b.Comparisons {
				p.printf("    %s:\n", cmp.Column)
				r.groupTable(p, head(cmp.Groups, r.opts.GroupLimit))
			}
		}
	}
}

func (r *TextRenderer) groupTable(p *printer, groups []report.GroupStats) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "      \tgroup\tcount\tmean\tmedian\tstd\t")
	for _, g := range groups {
		fmt.Fprintf(tw, "      \t%s\t%d\t%s\t%s\t%s\t\n",
			g.Label, g.Count, p.optional(g.Mean), p.optional(g.Median), p.optional(g.StdDev))
	}
	p.err = tw.Flush()
}

func (p *printer) optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return p.p.Sprintf("%.2f", *v)
}

func (r *TextRenderer) risks(p *printer, rep *report.Report) {
	p.banner("RISK & OPPORTUNITY ANALYSIS")
	for _, ta := range rep.Tables {
		ro := ta.Risk
		p.heading("Risk Analysis for "+ro.Table+":", 40)

		if len(ro.Risks) > 0 {
			p.line("  Identified Risks:")
			for i, f := range head(ro.Risks, r.opts.FindingLimit) {
				p.printf("    %d. %s\n", i+1, f.Message)
			}
		}
		if len(ro.Opportunities) > 0 {
			p.line("  Identified Opportunities:")
			for i, f := range head(ro.Opportunities, r.opts.FindingLimit) {
				p.printf("    %d. %s\n", i+1, f.Message)
			}
		}
		if len(ro.Risks) == 0 && len(ro.Opportunities) == 0 {
			p.line("  No significant risks or opportunities detected in numeric data")
		}
	}
}

func (r *TextRenderer) recommendations(p *printer, rep *report.Report) {
	p.banner("STRATEGIC RECOMMENDATIONS")
	area := ""
	for i, rec := range rep.Recommendations {
		if rec.Area != area {
			area = rec.Area
			p.heading(area+":", len(area)+1)
		}
		p.printf("%d. %s\n", i+1, rec.Text)
		for _, e := range rec.Evidence {
			p.printf("   • %s\n", e)
		}
	}
	p.printf("\nSUMMARY: %d strategic recommendations generated\n", len(rep.Recommendations))
}

func (r *TextRenderer) summary(p *printer, rep *report.Report) {
	s := rep.Summary
	p.banner("EXECUTIVE SUMMARY")

	p.line("\nDATA OVERVIEW:")
	p.printf("   • %d data tabs analyzed\n", s.TotalTabs)
	p.printf("   • %d total data points\n", s.TotalRows)
	p.printf("   • %d total columns across all tabs\n", s.TotalColumns)

	p.line("\nKEY FINDINGS:")
	p.printf("   • %d tabs contain financial data\n", s.FinancialTabs)
	p.printf("   • %d risks identified\n", s.TotalRisks)
	p.printf("   • %d opportunities discovered\n", s.TotalOpportunities)
	p.printf("   • %d strong correlations found\n", s.TotalCorrelations)

	if len(s.Priorities) > 0 {
		p.line("\nSTRATEGIC PRIORITIES:")
		for i, text := range s.Priorities {
			p.printf("   %d. %s\n", i+1, text)
		}
	}

	p.line("\nRECOMMENDED NEXT STEPS:")
	for i, step := range s.NextSteps {
		p.printf("   %d. %s\n", i+1, step)
	}
}

func (r *TextRenderer) complete(p *printer, rep *report.Report) {
	p.banner("ANALYSIS COMPLETE")
	p.printf("Comprehensive analysis of %d tabs completed successfully!\n", len(rep.Tables))
	p.printf("%d strategic recommendations generated\n", len(rep.Recommendations))
	p.printf("Analysis completed at: %s\n", rep.FinishedAt.Local().Format(timeLayout))
	p.printf("Run ID: %s\n", rep.RunID.String())
}

// FormatGrowth renders a growth percentage with one decimal; non-finite values print as Go formats them
func FormatGrowth(g report.Growth) string {
	return fmt.Sprintf("%.1f%%", g.Percent)
}

func head[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
