package analysis

import (
	"fmt"
	"math"

	"finprobe/domain/report"
	"finprobe/domain/workbook"
	"finprobe/internal/config"
	"finprobe/internal/profiling"
)

// RiskScanner tags numeric columns with volatility, outlier and trend findings
type RiskScanner struct {
	cfg   config.AnalysisConfig
	trend *TrendAnalyzer
}

// NewRiskScanner creates a scanner; trend supplies the chronological row order
func NewRiskScanner(cfg config.AnalysisConfig, trend *TrendAnalyzer) *RiskScanner {
	return &RiskScanner{cfg: cfg, trend: trend}
}

// Scan runs the risk and opportunity pass over one table.
// Only columns with more than MinObservations values are considered.
func (s *RiskScanner) Scan(t *workbook.Table) report.RiskOpportunityResult {
	result := report.RiskOpportunityResult{
		Table:         t.Name,
		Risks:         []report.Finding{},
		Opportunities: []report.Finding{},
	}

	var order []int
	if s.cfg.ChronologicalTrend && s.trend != nil {
		order, _, _ = s.trend.ChronologicalOrder(t)
	}

	for _, c := range t.NumericColumns() {
		values := floatsInOrder(c, order)
		if len(values) <= s.cfg.MinObservations {
			continue
		}
		for _, f := range s.scanColumn(t.Name, c.Name, values) {
			if f.Kind.IsRisk() {
				result.Risks = append(result.Risks, f)
			} else {
				result.Opportunities = append(result.Opportunities, f)
			}
		}
	}
	return result
}

func (s *RiskScanner) scanColumn(table, column string, values []float64) []report.Finding {
	var findings []report.Finding
	add := func(kind report.FindingKind, metric float64, format string) {
		findings = append(findings, report.Finding{
			Table:   table,
			Column:  column,
			Kind:    kind,
			Metric:  metric,
			Message: fmt.Sprintf(format, column, metric),
		})
	}

	if cv, err := profiling.CoefficientOfVariation(values); err == nil {
		switch {
		case cv > s.cfg.VolatilityHighCV:
			add(report.KindHighVolatility, cv, "High volatility in %s (CV: %.2f)")
		case cv < s.cfg.VolatilityStableCV:
			add(report.KindStablePerformance, cv, "Stable performance in %s (CV: %.2f)")
		}
	}

	if out, err := profiling.Outliers(values, s.cfg.OutlierIQRMultiplier); err == nil {
		if out.Count > 0 && out.SharePct > s.cfg.OutlierSharePercent {
			add(report.KindManyOutliers, out.SharePct, "Many outliers in %s (%.1f%% of data)")
		}
	}

	slope, err := profiling.TrendSlope(values)
	if err != nil {
		return findings
	}
	sd, ok := profiling.SampleStdDev(values)
	if !ok {
		return findings
	}
	threshold := sd * s.cfg.TrendSlopeFactor
	switch {
	case slope > 0 && math.Abs(slope) > threshold:
		add(report.KindPositiveTrend, slope, "Positive trend in %s (slope: %.2f)")
	case slope < 0 && math.Abs(slope) > threshold:
		add(report.KindDecliningTrend, slope, "Declining trend in %s (slope: %.2f)")
	}
	return findings
}

