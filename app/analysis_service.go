// Package app wires the loader and the analysis passes into one run.
package app

import (
	"context"
	"time"

	"finprobe/domain/core"
	"finprobe/domain/report"
	"finprobe/domain/run"
	"finprobe/domain/workbook"
	"finprobe/internal/analysis"
	"finprobe/internal/config"
	"finprobe/internal/logger"
	"finprobe/internal/metrics"
	"finprobe/internal/profiling"
	"finprobe/ports"

	"golang.org/x/sync/errgroup"
)

// Version is stamped into every run manifest; set with -ldflags "-X finprobe/app.Version=..."
var Version = "dev"

// StagePlan lists the pipeline stages in execution order
var StagePlan = []string{StageLoad, StageProfile, StageTrend, StageCategorical, StageRisk, StageSynthesize}

// Stages groups the per-table passes
type Stages struct {
	Profiler    ports.ProfilerPort
	Trend       ports.TrendAnalyzerPort
	Categorical ports.CategoricalPort
	Risk        ports.RiskScannerPort
}

// DefaultStages builds the standard passes from configuration
func DefaultStages(cfg *config.Config) Stages {
	trend := analysis.NewTrendAnalyzer(profiling.NewVocabulary(cfg.Vocabulary.Date), cfg.Analysis)
	return Stages{
		Profiler:    profiling.NewFinancialProfiler(profiling.NewVocabulary(cfg.Vocabulary.Financial), cfg.Analysis.ProfileColumnLimit),
		Trend:       trend,
		Categorical: analysis.NewCategoricalComparator(cfg.Analysis),
		Risk:        analysis.NewRiskScanner(cfg.Analysis, trend),
	}
}

// AnalysisService runs the full pipeline over one workbook
type AnalysisService struct {
	reader      ports.WorkbookReaderPort
	stages      Stages
	synthesizer *analysis.RecommendationSynthesizer
	runner      *StageRunner
	metrics     *metrics.Recorder

	workers       int
	priorityLimit int
	settingsHash  string
}

// NewAnalysisService creates the pipeline service. A nil recorder gets a fresh one.
func NewAnalysisService(cfg *config.Config, reader ports.WorkbookReaderPort, stages Stages, recorder *metrics.Recorder) *AnalysisService {
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &AnalysisService{
		reader:        reader,
		stages:        stages,
		synthesizer:   analysis.NewRecommendationSynthesizer(cfg.Analysis),
		runner:        NewStageRunner(recorder),
		metrics:       recorder,
		workers:       workers,
		priorityLimit: cfg.Analysis.PriorityLimit,
		settingsHash:  cfg.Fingerprint(),
	}
}

// Metrics returns the recorder observing this service
func (s *AnalysisService) Metrics() *metrics.Recorder {
	return s.metrics
}

// Run loads the workbook at path and analyzes every table. Tables keep the
// workbook's sheet order whatever the worker count.
func (s *AnalysisService) Run(ctx context.Context, path string) (*report.Report, error) {
	rep := &report.Report{
		RunID:     core.NewRunID(),
		Path:      path,
		StartedAt: time.Now().UTC(),
	}
	ctx, span := logger.StartSpan(ctx, "finprobe.run")
	defer span.End()

	logger.Info(ctx, "starting analysis", "run_id", rep.RunID.String(), "path", path)

	var wb *workbook.Workbook
	err := s.runner.Run(ctx, StageLoad, "", func(ctx context.Context) error {
		var err error
		wb, err = s.reader.Load(ctx, path)
		return err
	})
	if err != nil {
		logger.RecordError(ctx, err)
		return nil, err
	}

	rep.SheetNames = wb.SheetNames
	rep.Skipped = wb.Skipped
	rep.Manifest = s.manifest(ctx, rep.RunID, path)

	tables, err := s.analyzeTables(ctx, wb.Tables)
	if err != nil {
		logger.RecordError(ctx, err)
		return nil, err
	}
	rep.Tables = tables

	err = s.runner.Run(ctx, StageSynthesize, "", func(ctx context.Context) error {
		rep.Recommendations = s.synthesizer.Synthesize(tables)
		rep.Summary = analysis.Summarize(tables, rep.Recommendations, s.priorityLimit)
		return nil
	})
	if err != nil {
		logger.RecordError(ctx, err)
		return nil, err
	}

	rep.FinishedAt = time.Now().UTC()
	s.metrics.RecordReport(rep)

	logger.Info(ctx, "analysis complete",
		"run_id", rep.RunID.String(),
		"tables", len(rep.Tables),
		"skipped", len(rep.Skipped),
		"recommendations", len(rep.Recommendations),
		"duration", rep.FinishedAt.Sub(rep.StartedAt),
	)
	return rep, nil
}

func (s *AnalysisService) manifest(ctx context.Context, id core.RunID, path string) run.Manifest {
	inputHash, err := run.HashFile(path)
	if err != nil {
		logger.Debug(ctx, "input not hashed", "path", path, "error", err)
	}
	m := run.NewManifest(id, path, inputHash, s.settingsHash, StagePlan, Version)
	if err := m.Validate(); err != nil {
		logger.Warn(ctx, "incomplete run manifest", "run_id", id.String(), "error", err)
	}
	return m
}

func (s *AnalysisService) analyzeTables(ctx context.Context, tables []*workbook.Table) ([]report.TableAnalysis, error) {
	slots := make([]report.TableAnalysis, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.analyzeTable(gctx, t, &slots[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *AnalysisService) analyzeTable(ctx context.Context, t *workbook.Table, out *report.TableAnalysis) error {
	steps := []struct {
		stage string
		run   func()
	}{
		{StageProfile, func() { out.Profile = s.stages.Profiler.Profile(t) }},
		{StageTrend, func() { out.Trend = s.stages.Trend.Analyze(t) }},
		{StageCategorical, func() { out.Categorical = s.stages.Categorical.Analyze(t) }},
		{StageRisk, func() { out.Risk = s.stages.Risk.Scan(t) }},
	}
	for _, step := range steps {
		err := s.runner.Run(ctx, step.stage, t.Name, func(context.Context) error {
			step.run()
			return nil
		})
		if err != nil {
			return err
		}
	}

	rows, cols := t.Shape()
	logger.Debug(ctx, "table analyzed",
		"table", t.Name,
		"rows", rows,
		"cols", cols,
		"risks", len(out.Risk.Risks),
		"opportunities", len(out.Risk.Opportunities),
	)
	return nil
}
