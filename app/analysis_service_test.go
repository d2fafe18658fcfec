package app

import (
	"bytes"
	"context"
	"testing"

	"finprobe/domain/report"
	"finprobe/domain/workbook"
	"finprobe/internal/config"
	"finprobe/internal/errors"
	"finprobe/internal/logger"
	"finprobe/internal/metrics"
	"finprobe/internal/testkit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingScanner struct{}

func (panickingScanner) Scan(t *workbook.Table) report.RiskOpportunityResult {
	panic("scanner exploded")
}

func newService(cfg *config.Config, wb *workbook.Workbook) *AnalysisService {
	return NewAnalysisService(cfg, testkit.NewStaticWorkbookReader(wb), DefaultStages(cfg), nil)
}

func ledgerWorkbook() *workbook.Workbook {
	var tables []*workbook.Table
	for i, name := range []string{"Retail", "Wholesale", "Online", "Group"} {
		gen := testkit.DefaultFinancialConfig()
		gen.Seed = int64(100 + i)
		gen.Months = 12 + 6*i
		tables = append(tables, testkit.NewFinancialDataGenerator(gen).Table(name))
	}
	return testkit.Workbook("ledger.xlsx", tables...)
}

func TestRunQuarterScenario(t *testing.T) {
	wb := testkit.Workbook("q.xlsx", testkit.Table("Q",
		testkit.Col("Date", testkit.Num(2020, 2021, 2022)),
		testkit.Col("Revenue", testkit.Num(100, 150, 225)),
	))

	rep, err := newService(config.Default(), wb).Run(context.Background(), "q.xlsx")
	require.NoError(t, err)

	assert.False(t, rep.RunID.String() == "")
	assert.Equal(t, "q.xlsx", rep.Path)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
	assert.Equal(t, []string{"Q"}, rep.SheetNames)
	assert.Equal(t, rep.RunID, rep.Manifest.RunID)
	assert.Equal(t, StagePlan, rep.Manifest.StagePlan)
	assert.NotEmpty(t, rep.Manifest.SettingsHash)
	assert.Empty(t, rep.Manifest.InputHash, "in-memory workbook has no file to hash")
	assert.NoError(t, rep.Manifest.Validate())
	require.Len(t, rep.Tables, 1)

	ta := rep.Tables[0]
	assert.Equal(t, []string{"Revenue"}, ta.Profile.FinancialColumns)
	require.Len(t, ta.Trend.Timelines, 1)
	assert.Equal(t, "2020", ta.Trend.Timelines[0].Start)
	assert.Equal(t, "2022", ta.Trend.Timelines[0].End)
	var revenue *report.Growth
	for i := range ta.Trend.Timelines[0].Growth {
		if ta.Trend.Timelines[0].Growth[i].Column == "Revenue" {
			revenue = &ta.Trend.Timelines[0].Growth[i]
		}
	}
	require.NotNil(t, revenue)
	assert.InDelta(t, 125.0, revenue.Percent, 1e-9)

	// three rows are too few for risk tags
	assert.Empty(t, ta.Risk.Risks)
	assert.Empty(t, ta.Risk.Opportunities)

	assert.Equal(t, 1, rep.Summary.TotalTabs)
	assert.Equal(t, 3, rep.Summary.TotalRows)
	assert.Equal(t, 2, rep.Summary.TotalColumns)
	assert.Equal(t, 1, rep.Summary.FinancialTabs)
	assert.Equal(t, 1, rep.Summary.TotalCorrelations)
	assert.Empty(t, rep.Recommendations)
}

func TestRunWarnsOnIncompleteManifest(t *testing.T) {
	var logs bytes.Buffer
	require.NoError(t, logger.Init(logger.Config{Level: "WARN", Output: &logs}))
	defer logger.Init(logger.Config{Level: "INFO", Output: &bytes.Buffer{}})

	saved := Version
	Version = ""
	defer func() { Version = saved }()

	rep, err := newService(config.Default(), testkit.Workbook("empty.xlsx")).Run(context.Background(), "empty.xlsx")
	require.NoError(t, err)

	assert.Error(t, rep.Manifest.Validate())
	assert.Contains(t, logs.String(), "incomplete run manifest")
	assert.Contains(t, logs.String(), "code_version cannot be empty")
}

func TestRunEmptyWorkbook(t *testing.T) {
	rep, err := newService(config.Default(), testkit.Workbook("empty.xlsx")).Run(context.Background(), "empty.xlsx")
	require.NoError(t, err)

	assert.Empty(t, rep.Tables)
	assert.Empty(t, rep.Recommendations)
	assert.Zero(t, rep.Summary.TotalTabs)
	assert.Zero(t, rep.Summary.TotalRows)
	assert.Zero(t, rep.Summary.TotalRisks)
	assert.Zero(t, rep.Summary.TotalOpportunities)
	assert.Zero(t, rep.Summary.Recommendations)
	assert.Len(t, rep.Summary.NextSteps, 5)
}

func TestRunLoaderErrorIsReturned(t *testing.T) {
	reader := &testkit.StaticWorkbookReader{Err: errors.NotFound("workbook missing.xlsx")}
	cfg := config.Default()
	svc := NewAnalysisService(cfg, reader, DefaultStages(cfg), nil)

	rep, err := svc.Run(context.Background(), "missing.xlsx")

	require.Error(t, err)
	assert.Nil(t, rep)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Equal(t, []string{"missing.xlsx"}, reader.Paths())
}

func TestRunRecoversStagePanic(t *testing.T) {
	cfg := config.Default()
	stages := DefaultStages(cfg)
	stages.Risk = panickingScanner{}
	recorder := metrics.NewRecorder()
	svc := NewAnalysisService(cfg, testkit.NewStaticWorkbookReader(ledgerWorkbook()), stages, recorder)

	rep, err := svc.Run(context.Background(), "ledger.xlsx")

	require.Error(t, err)
	assert.Nil(t, rep)
	assert.Equal(t, errors.CodeAnalysisFailed, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "scanner exploded")

	failures, gatherErr := testutil.GatherAndCount(recorder.Registry(), "finprobe_stage_failures_total")
	require.NoError(t, gatherErr)
	assert.Equal(t, 1, failures)
}

func TestRunOrderIndependentOfWorkers(t *testing.T) {
	wb := ledgerWorkbook()

	sequential := config.Default()
	parallel := config.Default()
	parallel.Workers = 4

	first, err := newService(sequential, wb).Run(context.Background(), "ledger.xlsx")
	require.NoError(t, err)
	second, err := newService(parallel, wb).Run(context.Background(), "ledger.xlsx")
	require.NoError(t, err)

	require.Len(t, second.Tables, len(wb.Tables))
	for i, tbl := range wb.Tables {
		assert.Equal(t, tbl.Name, second.Tables[i].Profile.Table)
	}
	assert.Equal(t, first.Tables, second.Tables)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(config.Default(), ledgerWorkbook()).Run(ctx, "ledger.xlsx")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRecordsMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	cfg := config.Default()
	svc := NewAnalysisService(cfg, testkit.NewStaticWorkbookReader(ledgerWorkbook()), DefaultStages(cfg), recorder)

	_, err := svc.Run(context.Background(), "ledger.xlsx")
	require.NoError(t, err)

	assert.Same(t, recorder, svc.Metrics())
	stages, err := testutil.GatherAndCount(recorder.Registry(), "finprobe_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 6, stages, "one histogram series per stage")
}
