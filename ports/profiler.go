package ports

import (
	"finprobe/domain/report"
	"finprobe/domain/workbook"
)

// The per-table passes are pure functions of an immutable table and may be
// called concurrently for different tables.

// ProfilerPort builds the financial profile of a table
type ProfilerPort interface {
	Profile(t *workbook.Table) report.FinancialProfile
}

// TrendAnalyzerPort finds timelines and correlations in a table
type TrendAnalyzerPort interface {
	Analyze(t *workbook.Table) report.TrendResult
}

// CategoricalPort compares numeric columns across categorical groups
type CategoricalPort interface {
	Analyze(t *workbook.Table) report.CategoricalResult
}

// RiskScannerPort tags risks and opportunities in a table
type RiskScannerPort interface {
	Scan(t *workbook.Table) report.RiskOpportunityResult
}
