// Package analysis holds the heuristic passes run over each loaded table:
// trends and correlations, categorical comparisons, risk and opportunity
// tags, and the cross-table recommendation and summary roll-up.
package analysis

import (
	"math"
	"sort"

	"finprobe/domain/report"
	"finprobe/domain/workbook"
	"finprobe/internal/config"
	"finprobe/internal/profiling"
)

// TrendAnalyzer finds date-like columns, endpoint growth along them and strongly correlated numeric pairs
type TrendAnalyzer struct {
	dateVocabulary       profiling.Vocabulary
	growthColumnLimit    int
	correlationThreshold float64
}

// NewTrendAnalyzer creates a trend analyzer from the analysis settings
func NewTrendAnalyzer(dateVocabulary profiling.Vocabulary, cfg config.AnalysisConfig) *TrendAnalyzer {
	return &TrendAnalyzer{
		dateVocabulary:       dateVocabulary,
		growthColumnLimit:    cfg.TrendColumnLimit,
		correlationThreshold: cfg.CorrelationThreshold,
	}
}

// DateColumns returns columns that hold dates or whose name matches the date vocabulary
func (a *TrendAnalyzer) DateColumns(t *workbook.Table) []*workbook.Column {
	var out []*workbook.Column
	for _, c := range t.Columns {
		if c.Kind == workbook.KindDate || a.dateVocabulary.Matches(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// ChronologicalOrder returns the row order of the first date column that has
// at least two values and can be sorted; ok is false when there is none.
func (a *TrendAnalyzer) ChronologicalOrder(t *workbook.Table) (order []int, column string, ok bool) {
	for _, c := range a.DateColumns(t) {
		if c.NonMissing() < 2 {
			continue
		}
		if order, err := SortOrder(c); err == nil {
			return order, c.Name, true
		}
	}
	return nil, "", false
}

// Analyze runs the trend pass over one table
func (a *TrendAnalyzer) Analyze(t *workbook.Table) report.TrendResult {
	dateCols := a.DateColumns(t)
	result := report.TrendResult{
		Table:        t.Name,
		DateColumns:  workbook.ColumnNames(dateCols),
		Correlations: []report.CorrelationPair{},
	}

	for _, c := range dateCols {
		if c.NonMissing() < 2 {
			continue
		}
		result.Timelines = append(result.Timelines, a.timeline(t, c))
	}

	numeric := t.NumericColumns()
	if len(numeric) >= 2 {
		result.CorrelationTested = true
		result.Correlations = a.correlations(numeric)
	}
	return result
}

func (a *TrendAnalyzer) timeline(t *workbook.Table, dateCol *workbook.Column) report.Timeline {
	tl := report.Timeline{DateColumn: dateCol.Name}

	order, err := SortOrder(dateCol)
	if err != nil {
		tl.Err = err.Error()
		return tl
	}

	// missing values sort last, so the first and last present ones are the range
	var present []workbook.Value
	for _, i := range order {
		if v := dateCol.Values[i]; !v.IsMissing() {
			present = append(present, v)
		}
	}
	tl.Start = present[0].String()
	tl.End = present[len(present)-1].String()

	// sparse columns inside the window are skipped, not replaced
	for _, c := range limitColumns(t.NumericColumns(), a.growthColumnLimit) {
		if c.NonMissing() < 2 {
			continue
		}
		values := floatsInOrder(c, order)
		first, last := values[0], values[len(values)-1]
		tl.Growth = append(tl.Growth, report.Growth{
			Column:  c.Name,
			First:   first,
			Last:    last,
			Percent: (last - first) / first * 100,
		})
	}
	return tl
}

// correlations computes pairwise-complete Pearson coefficients for every pair
// and keeps those stronger than the threshold, strongest first
func (a *TrendAnalyzer) correlations(numeric []*workbook.Column) []report.CorrelationPair {
	pairs := []report.CorrelationPair{}
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			x, y := jointValues(numeric[i], numeric[j])
			r, err := profiling.Pearson(x, y)
			if err != nil {
				continue
			}
			if math.Abs(r) > a.correlationThreshold {
				pairs = append(pairs, report.CorrelationPair{A: numeric[i].Name, B: numeric[j].Name, R: r})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	return pairs
}

// jointValues returns the rows where both columns hold a number
func jointValues(a, b *workbook.Column) (x, y []float64) {
	for i := 0; i < a.Len() && i < b.Len(); i++ {
		va, okA := a.FloatAt(i)
		vb, okB := b.FloatAt(i)
		if okA && okB {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}
