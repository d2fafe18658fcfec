package analysis

import (
	"strings"

	"finprobe/domain/report"
	"finprobe/internal/config"
)

// Recommendation areas
const (
	AreaFinancial   = "FINANCIAL STRATEGY"
	AreaGrowth      = "GROWTH STRATEGY"
	AreaOperational = "OPERATIONAL EXCELLENCE"
	AreaData        = "DATA & ANALYTICS"
	AreaMarket      = "MARKET STRATEGY"
)

const momentumEvidenceLimit = 3

// RecommendationSynthesizer turns the per-table results into an ordered list of recommendations
type RecommendationSynthesizer struct {
	kpiDashboardColumns    int
	predictiveCorrelations int
}

// NewRecommendationSynthesizer creates a synthesizer from the analysis settings
func NewRecommendationSynthesizer(cfg config.AnalysisConfig) *RecommendationSynthesizer {
	return &RecommendationSynthesizer{
		kpiDashboardColumns:    cfg.KPIDashboardColumns,
		predictiveCorrelations: cfg.PredictiveCorrelations,
	}
}

// Synthesize evaluates each rule in fixed order against the tables' results
func (s *RecommendationSynthesizer) Synthesize(tables []report.TableAnalysis) []report.Recommendation {
	recs := []report.Recommendation{}

	numericColumns := 0
	correlations := 0
	marketData := false
	var volatileTables []string
	var volatility, momentum, stability []string

	for _, t := range tables {
		numericColumns += len(t.Profile.NumericColumns)
		correlations += len(t.Trend.Correlations)
		marketData = marketData || t.Categorical.AnalysisPerformed

		if t.Risk.Has(report.KindHighVolatility) {
			volatileTables = append(volatileTables, t.Risk.Table)
		}
		for _, f := range t.Risk.Risks {
			if f.Kind == report.KindHighVolatility {
				volatility = append(volatility, f.Message)
			}
		}
		for _, f := range t.Risk.Opportunities {
			switch f.Kind {
			case report.KindPositiveTrend:
				momentum = append(momentum, f.Message)
			case report.KindStablePerformance:
				stability = append(stability, f.Message)
			}
		}
	}

	if numericColumns > s.kpiDashboardColumns {
		recs = append(recs, report.Recommendation{
			Area: AreaFinancial,
			Text: "Rich financial data available - implement comprehensive KPI dashboard",
		})
	}
	if len(volatileTables) > 0 {
		recs = append(recs, report.Recommendation{
			Area:     AreaFinancial,
			Text:     "Address volatility in: " + strings.Join(volatileTables, ", "),
			Evidence: volatility,
		})
	}
	if len(momentum) > 0 {
		if len(momentum) > momentumEvidenceLimit {
			momentum = momentum[:momentumEvidenceLimit]
		}
		recs = append(recs, report.Recommendation{
			Area:     AreaGrowth,
			Text:     "Capitalize on positive trends identified in the data",
			Evidence: momentum,
		})
	}
	if len(stability) > 0 {
		recs = append(recs, report.Recommendation{
			Area:     AreaOperational,
			Text:     "Leverage stable performance areas as competitive advantages",
			Evidence: stability,
		})
	}
	if correlations > s.predictiveCorrelations {
		recs = append(recs, report.Recommendation{
			Area: AreaData,
			Text: "Exploit strong correlations for predictive analytics",
		})
	}
	if marketData {
		recs = append(recs, report.Recommendation{
			Area: AreaMarket,
			Text: "Enhance competitive intelligence and market positioning",
		})
	}
	return recs
}
