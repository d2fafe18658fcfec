package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"finprobe/domain/report"
	"finprobe/domain/workbook"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *report.Report {
	return &report.Report{
		Skipped: []workbook.SheetError{{Sheet: "Broken", Err: "bad"}},
		Tables: []report.TableAnalysis{{
			Trend: report.TrendResult{Correlations: []report.CorrelationPair{{A: "a", B: "b", R: 0.9}}},
			Risk: report.RiskOpportunityResult{
				Risks:         []report.Finding{{Kind: report.KindHighVolatility}, {Kind: report.KindManyOutliers}},
				Opportunities: []report.Finding{{Kind: report.KindPositiveTrend}},
			},
		}},
		Recommendations: []report.Recommendation{{Text: "x"}, {Text: "y"}},
	}
}

func TestRecordReport(t *testing.T) {
	r := NewRecorder()
	r.RecordReport(sampleReport())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.sheets.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sheets.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.findings.WithLabelValues(string(report.KindHighVolatility))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.findings.WithLabelValues(string(report.KindPositiveTrend))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.correlations))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.recommendations))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordReport(sampleReport())
	r.ObserveStage("load", 3*time.Millisecond)
	r.StageFailed("risk")

	path := filepath.Join(t.TempDir(), "finprobe.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `finprobe_findings_total{kind="high_volatility"} 1`)
	assert.Contains(t, text, `finprobe_stage_duration_seconds_count{stage="load"} 1`)
	assert.Contains(t, text, `finprobe_stage_failures_total{stage="risk"} 1`)
	assert.Contains(t, text, "finprobe_recommendations_total 2")
}
