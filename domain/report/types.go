// Package report holds the structured results of one analysis run.
// Renderers in adapters/render turn a Report into text, markdown or HTML.
package report

import (
	"math"
	"time"

	"finprobe/domain/core"
	"finprobe/domain/run"
	"finprobe/domain/workbook"
)

// Range is a min-max span, only reported when min != max
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ColumnStats are the descriptive statistics of one numeric column.
// StdDev is nil when fewer than two values exist.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	StdDev *float64 `json:"std_dev,omitempty"`
	Range  *Range   `json:"range,omitempty"`
}

// FinancialProfile is the per-table output of the financial profiler
type FinancialProfile struct {
	Table            string          `json:"table"`
	Rows             int             `json:"rows"`
	Columns          int             `json:"columns"`
	FinancialColumns []string        `json:"financial_columns"`
	NumericColumns   []string        `json:"numeric_columns"`
	Stats            []ColumnStats   `json:"stats,omitempty"`
	Source           *workbook.Table `json:"-"`
}

// HasFinancialData reports whether any column matched the financial vocabulary
func (p FinancialProfile) HasFinancialData() bool {
	return len(p.FinancialColumns) > 0
}

// Growth is the endpoint-to-endpoint change of a numeric column along a timeline.
// Percent is ±Inf or NaN when the first value is zero.
type Growth struct {
	Column  string  `json:"column"`
	First   float64 `json:"first"`
	Last    float64 `json:"last"`
	Percent float64 `json:"-"`
}

// Finite reports whether the growth percentage is a real number
func (g Growth) Finite() bool {
	return !math.IsInf(g.Percent, 0) && !math.IsNaN(g.Percent)
}

// Timeline describes one date-like column after sorting by it
type Timeline struct {
	DateColumn string   `json:"date_column"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Growth     []Growth `json:"growth,omitempty"`
	Err        string   `json:"error,omitempty"`
}

// CorrelationPair is a pair of numeric columns with their Pearson coefficient
type CorrelationPair struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// TrendResult is the per-table output of the trend analyzer
type TrendResult struct {
	Table        string            `json:"table"`
	DateColumns  []string          `json:"date_columns"`
	Timelines    []Timeline        `json:"timelines,omitempty"`
	Correlations []CorrelationPair `json:"correlations"`
	// CorrelationTested is false when the table had fewer than two numeric columns
	CorrelationTested bool `json:"correlation_tested"`
}

// CategoryCount is the number of rows carrying one category label
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GroupStats are the statistics of a numeric column within one category.
// A nil field means the metric was not computable for that group.
type GroupStats struct {
	Label  string   `json:"label"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	StdDev *float64 `json:"std_dev,omitempty"`
}

// GroupComparison compares one numeric column across the groups of a categorical column
type GroupComparison struct {
	Column string       `json:"column"`
	Groups []GroupStats `json:"groups"`
}

// CategoricalBreakdown describes one qualifying categorical column
type CategoricalBreakdown struct {
	Column        string            `json:"column"`
	DistinctCount int               `json:"distinct_count"`
	Categories    []CategoryCount   `json:"categories"`
	Comparisons   []GroupComparison `json:"comparisons,omitempty"`
}

// CategoricalResult is the per-table output of the categorical comparator
type CategoricalResult struct {
	Table             string                 `json:"table"`
	TextColumns       []string               `json:"text_columns"`
	Breakdowns        []CategoricalBreakdown `json:"breakdowns,omitempty"`
	AnalysisPerformed bool                   `json:"analysis_performed"`
}

// FindingKind names the heuristic that produced a finding
type FindingKind string

const (
	KindHighVolatility    FindingKind = "high_volatility"
	KindStablePerformance FindingKind = "stable_performance"
	KindManyOutliers      FindingKind = "many_outliers"
	KindPositiveTrend     FindingKind = "positive_trend"
	KindDecliningTrend    FindingKind = "declining_trend"
)

// IsRisk reports whether the kind is a risk rather than an opportunity
func (k FindingKind) IsRisk() bool {
	switch k {
	case KindHighVolatility, KindManyOutliers, KindDecliningTrend:
		return true
	}
	return false
}

// Finding is one risk or opportunity tag on a numeric column
type Finding struct {
	Table   string      `json:"table"`
	Column  string      `json:"column"`
	Kind    FindingKind `json:"kind"`
	Metric  float64     `json:"metric"`
	Message string      `json:"message"`
}

// RiskOpportunityResult is the per-table output of the risk/opportunity scanner
type RiskOpportunityResult struct {
	Table         string    `json:"table"`
	Risks         []Finding `json:"risks"`
	Opportunities []Finding `json:"opportunities"`
}

// Has reports whether any finding of the kind exists
func (r RiskOpportunityResult) Has(kind FindingKind) bool {
	for _, f := range r.Risks {
		if f.Kind == kind {
			return true
		}
	}
	for _, f := range r.Opportunities {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Recommendation is one synthesized strategic recommendation
type Recommendation struct {
	Area     string   `json:"area"`
	Text     string   `json:"text"`
	Evidence []string `json:"evidence,omitempty"`
}

// TableAnalysis bundles every per-table pass for one sheet
type TableAnalysis struct {
	Profile     FinancialProfile      `json:"profile"`
	Trend       TrendResult           `json:"trend"`
	Categorical CategoricalResult     `json:"categorical"`
	Risk        RiskOpportunityResult `json:"risk"`
}

// Summary is the executive roll-up of a run
type Summary struct {
	TotalTabs          int      `json:"total_tabs"`
	TotalRows          int      `json:"total_rows"`
	TotalColumns       int      `json:"total_columns"`
	FinancialTabs      int      `json:"financial_tabs"`
	TotalRisks         int      `json:"total_risks"`
	TotalOpportunities int      `json:"total_opportunities"`
	TotalCorrelations  int      `json:"total_correlations"`
	Recommendations    int      `json:"recommendations"`
	Priorities         []string `json:"priorities"`
	NextSteps          []string `json:"next_steps"`
}

// Report is everything one run produced
type Report struct {
	RunID           core.RunID            `json:"run_id"`
	Manifest        run.Manifest          `json:"manifest"`
	Path            string                `json:"path"`
	StartedAt       time.Time             `json:"started_at"`
	FinishedAt      time.Time             `json:"finished_at"`
	SheetNames      []string              `json:"sheet_names"`
	Skipped         []workbook.SheetError `json:"skipped,omitempty"`
	Tables          []TableAnalysis       `json:"tables"`
	Recommendations []Recommendation      `json:"recommendations"`
	Summary         Summary               `json:"summary"`
}

// Table returns the analysis of the named sheet, if it loaded
func (r *Report) Table(name string) (TableAnalysis, bool) {
	for _, ta := range r.Tables {
		if ta.Profile.Table == name {
			return ta, true
		}
	}
	return TableAnalysis{}, false
}
