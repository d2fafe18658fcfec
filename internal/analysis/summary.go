package analysis

import "finprobe/domain/report"

// NextSteps is the fixed follow-up list closing every summary
var NextSteps = []string{
	"Deep-dive analysis of highest-priority opportunities",
	"Develop risk mitigation strategies for identified concerns",
	"Create automated monitoring dashboard",
	"Establish regular review cycles for key metrics",
	"Benchmark against industry standards",
}

// Summarize rolls the per-table results and recommendations up into the executive summary
func Summarize(tables []report.TableAnalysis, recs []report.Recommendation, priorityLimit int) report.Summary {
	s := report.Summary{
		TotalTabs:       len(tables),
		Recommendations: len(recs),
		Priorities:      []string{},
		NextSteps:       append([]string(nil), NextSteps...),
	}
	for _, t := range tables {
		s.TotalRows += t.Profile.Rows
		s.TotalColumns += t.Profile.Columns
		if t.Profile.HasFinancialData() {
			s.FinancialTabs++
		}
		s.TotalRisks += len(t.Risk.Risks)
		s.TotalOpportunities += len(t.Risk.Opportunities)
		s.TotalCorrelations += len(t.Trend.Correlations)
	}
	for i, r := range recs {
		if i >= priorityLimit {
			break
		}
		s.Priorities = append(s.Priorities, r.Text)
	}
	return s
}
