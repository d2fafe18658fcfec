package analysis

import (
	"sort"

	"finprobe/domain/report"
	"finprobe/domain/workbook"
	"finprobe/internal/config"
	"finprobe/internal/profiling"

	"github.com/montanaflynn/stats"
)

// CategoricalComparator finds low-cardinality text columns and compares numeric columns across their groups
type CategoricalComparator struct {
	columnLimit      int
	minDistinct      int
	maxDistinct      int
	labelLimit       int
	groupColumnLimit int
}

// NewCategoricalComparator creates a comparator from the analysis settings
func NewCategoricalComparator(cfg config.AnalysisConfig) *CategoricalComparator {
	return &CategoricalComparator{
		columnLimit:      cfg.CategoricalColumnLimit,
		minDistinct:      cfg.CategoryMinDistinct,
		maxDistinct:      cfg.CategoryMaxDistinct,
		labelLimit:       cfg.CategoryLabelLimit,
		groupColumnLimit: cfg.GroupColumnLimit,
	}
}

// Analyze runs the categorical pass over one table
func (c *CategoricalComparator) Analyze(t *workbook.Table) report.CategoricalResult {
	textCols := t.TextColumns()
	result := report.CategoricalResult{
		Table:       t.Name,
		TextColumns: workbook.ColumnNames(textCols),
	}

	for _, col := range limitColumns(textCols, c.columnLimit) {
		distinct := col.Distinct()
		if len(distinct) < c.minDistinct || len(distinct) > c.maxDistinct {
			continue
		}
		result.Breakdowns = append(result.Breakdowns, c.breakdown(t, col, distinct))
	}
	result.AnalysisPerformed = len(result.Breakdowns) > 0
	return result
}

func (c *CategoricalComparator) breakdown(t *workbook.Table, col *workbook.Column, distinct []workbook.Value) report.CategoricalBreakdown {
	counts := make(map[string]int, len(distinct))
	for _, v := range col.Values {
		if !v.IsMissing() {
			counts[v.Key()]++
		}
	}

	b := report.CategoricalBreakdown{Column: col.Name, DistinctCount: len(distinct)}
	for _, v := range distinct {
		if len(b.Categories) >= c.labelLimit {
			break
		}
		b.Categories = append(b.Categories, report.CategoryCount{Label: v.String(), Count: counts[v.Key()]})
	}

	for _, num := range limitColumns(t.NumericColumns(), c.groupColumnLimit) {
		if num.NonMissing() == 0 {
			continue
		}
		b.Comparisons = append(b.Comparisons, c.compare(col, num, distinct))
	}
	return b
}

// compare groups num by the category in col; groups are ordered by label
func (c *CategoricalComparator) compare(col, num *workbook.Column, distinct []workbook.Value) report.GroupComparison {
	groups := make(map[string][]float64, len(distinct))
	for i, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		key := v.Key()
		if _, ok := groups[key]; !ok {
			groups[key] = []float64{}
		}
		if x, ok := num.FloatAt(i); ok {
			groups[key] = append(groups[key], x)
		}
	}

	labels := append([]workbook.Value(nil), distinct...)
	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].String() < labels[j].String()
	})

	cmp := report.GroupComparison{Column: num.Name}
	for _, label := range labels {
		if len(cmp.Groups) >= c.labelLimit {
			break
		}
		cmp.Groups = append(cmp.Groups, groupStats(label.String(), groups[label.Key()]))
	}
	return cmp
}

func groupStats(label string, values []float64) report.GroupStats {
	g := report.GroupStats{Label: label, Count: len(values)}
	if len(values) == 0 {
		return g
	}
	if mean, err := stats.Mean(values); err == nil {
		g.Mean = &mean
	}
	if median, err := stats.Median(values); err == nil {
		g.Median = &median
	}
	if sd, ok := profiling.SampleStdDev(values); ok {
		g.StdDev = &sd
	}
	return g
}

func limitColumns(cols []*workbook.Column, n int) []*workbook.Column {
	if n > 0 && len(cols) > n {
		return cols[:n]
	}
	return cols
}
