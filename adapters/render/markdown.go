package render

import (
	"bytes"
	"io"
	"strings"

	"finprobe/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownRenderer writes the report as a markdown document with one table per result list
type MarkdownRenderer struct {
	opts Options
}

// NewMarkdownRenderer creates a markdown renderer
func NewMarkdownRenderer(opts Options) *MarkdownRenderer {
	return &MarkdownRenderer{opts: opts}
}

// Render writes the markdown document
func (r *MarkdownRenderer) Render(w io.Writer, rep *report.Report) error {
	p := newPrinter(w)

	p.printf("# Financial Workbook Analysis\n\n")
	p.printf("- Workbook: `%s`\n", rep.Path)
	p.printf("- Run: `%s`\n", rep.RunID.String())
	if rep.Manifest.InputHash != "" {
		p.printf("- Input sha256: `%s`\n", rep.Manifest.InputHash)
	}
	if rep.Manifest.Fingerprint != "" {
		p.printf("- Fingerprint: `%s` (version %s)\n", rep.Manifest.Fingerprint, rep.Manifest.CodeVersion)
	}
	p.printf("- Started: %s\n", rep.StartedAt.Format(timeLayout))
	p.printf("- Finished: %s\n", rep.FinishedAt.Format(timeLayout))
	if len(rep.Skipped) > 0 {
		p.printf("\n**Skipped sheets**\n\n")
		for _, s := range rep.Skipped {
			p.printf("- %s: %s\n", cell(s.Sheet), cell(s.Err))
		}
	}

	r.summary(p, rep.Summary)
	for _, ta := range rep.Tables {
		r.table(p, ta)
	}
	r.recommendations(p, rep.Recommendations)
	return p.err
}

func (r *MarkdownRenderer) summary(p *printer, s report.Summary) {
	p.printf("\n## Executive Summary\n\n")
	p.printf("| Metric | Value |\n|---|---:|\n")
	p.printf("| Tabs analyzed | %d |\n", s.TotalTabs)
	p.printf("| Total rows | %d |\n", s.TotalRows)
	p.printf("| Total columns | %d |\n", s.TotalColumns)
	p.printf("| Tabs with financial data | %d |\n", s.FinancialTabs)
	p.printf("| Risks | %d |\n", s.TotalRisks)
	p.printf("| Opportunities | %d |\n", s.TotalOpportunities)
	p.printf("| Strong correlations | %d |\n", s.TotalCorrelations)
	p.printf("| Recommendations | %d |\n", s.Recommendations)

	if len(s.Priorities) > 0 {
		p.printf("\n### Strategic Priorities\n\n")
		for i, text := range s.Priorities {
			p.printf("%d. %s\n", i+1, text)
		}
	}
	p.printf("\n### Next Steps\n\n")
	for i, step := range s.NextSteps {
		p.printf("%d. %s\n", i+1, step)
	}
}

func (r *MarkdownRenderer) table(p *printer, ta report.TableAnalysis) {
	prof := ta.Profile
	p.printf("\n## %s\n\n", prof.Table)
	p.printf("%d rows × %d columns", prof.Rows, prof.Columns)
	if prof.HasFinancialData() {
		p.printf(", financial columns: %s", strings.Join(prof.FinancialColumns, ", "))
	}
	p.printf("\n")

	if len(prof.Stats) > 0 {
		p.printf("\n### Key Statistics\n\n| Column | Mean | Median | Std Dev | Min | Max |\n|---|---:|---:|---:|---:|---:|\n")
		for _, s := range prof.Stats {
			lo, hi := "-", "-"
			if s.Range != nil {
				lo, hi = p.p.Sprintf("%.2f", s.Range.Min), p.p.Sprintf("%.2f", s.Range.Max)
			}
			p.printf("| %s | %.2f | %.2f | %s | %s | %s |\n", cell(s.Column), s.Mean, s.Median, p.optional(s.StdDev), lo, hi)
		}
	}

	tr := ta.Trend
	if len(tr.Timelines) > 0 {
		p.printf("\n### Timelines\n\n| Date column | Period | Column | Growth |\n|---|---|---|---:|\n")
		for _, tl := range tr.Timelines {
			if tl.Err != "" {
				p.printf("| %s | %s | - | - |\n", cell(tl.DateColumn), cell(tl.Err))
				continue
			}
			period := tl.Start + " to " + tl.End
			if len(tl.Growth) == 0 {
				p.printf("| %s | %s | - | - |\n", cell(tl.DateColumn), cell(period))
			}
			for _, g := range tl.Growth {
				p.printf("| %s | %s | %s | %s |\n", cell(tl.DateColumn), cell(period), cell(g.Column), FormatGrowth(g))
			}
		}
	}
	if len(tr.Correlations) > 0 {
		p.printf("\n### Strong Correlations\n\n| Column A | Column B | r |\n|---|---|---:|\n")
		for _, c := range head(tr.Correlations, r.opts.CorrelationLimit) {
			p.printf("| %s | %s | %.3f |\n", cell(c.A), cell(c.B), c.R)
		}
	}

	for _, b := range ta.Categorical.Breakdowns {
		p.printf("\n### Categories in %s\n\n", b.Column)
		for _, c := range b.Categories {
			p.printf("- %s: %d records\n", cell(c.Label), c.Count)
		}
		for _, cmp := range b.Comparisons {
			p.printf("\n**%s by %s**\n\n| Group | Count | Mean | Median | Std Dev |\n|---|---:|---:|---:|---:|\n", cmp.Column, b.Column)
			for _, g := range head(cmp.Groups, r.opts.GroupLimit) {
				p.printf("| %s | %d | %s | %s | %s |\n", cell(g.Label), g.Count, p.optional(g.Mean), p.optional(g.Median), p.optional(g.StdDev))
			}
		}
	}

	ro := ta.Risk
	if len(ro.Risks)+len(ro.Opportunities) > 0 {
		p.printf("\n### Risks and Opportunities\n\n| Type | Column | Finding |\n|---|---|---|\n")
		for _, f := range head(ro.Risks, r.opts.FindingLimit) {
			p.printf("| risk | %s | %s |\n", cell(f.Column), cell(f.Message))
		}
		for _, f := range head(ro.Opportunities, r.opts.FindingLimit) {
			p.printf("| opportunity | %s | %s |\n", cell(f.Column), cell(f.Message))
		}
	}
}

func (r *MarkdownRenderer) recommendations(p *printer, recs []report.Recommendation) {
	p.printf("\n## Strategic Recommendations\n\n")
	if len(recs) == 0 {
		p.printf("No recommendations were triggered.\n")
		return
	}
	for i, rec := range recs {
		p.printf("%d. **%s**: %s\n", i+1, rec.Area, rec.Text)
		for _, e := range rec.Evidence {
			p.printf("   - %s\n", e)
		}
	}
}

// cell escapes text for a markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// HTMLRenderer converts the markdown rendering to a standalone HTML page
type HTMLRenderer struct {
	markdown *MarkdownRenderer
}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{markdown: NewMarkdownRenderer(opts)}
}

// Render writes the HTML page
func (r *HTMLRenderer) Render(w io.Writer, rep *report.Report) error {
	var buf bytes.Buffer
	if err := r.markdown.Render(&buf, rep); err != nil {
		return err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Financial Workbook Analysis",
		Flags: html.CommonFlags | html.CompletePage,
	})
	_, err := w.Write(markdown.ToHTML(buf.Bytes(), p, renderer))
	return err
}
