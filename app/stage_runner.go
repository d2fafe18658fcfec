package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"finprobe/internal/errors"
	"finprobe/internal/logger"
	"finprobe/internal/metrics"

	"go.opentelemetry.io/otel/attribute"
)

// Pipeline stage names, used for spans, logs and metric labels
const (
	StageLoad        = "load"
	StageProfile     = "profile"
	StageTrend       = "trend"
	StageCategorical = "categorical"
	StageRisk        = "risk"
	StageSynthesize  = "synthesize"
)

// StageRunner handles execution of pipeline stages: each one gets a span,
// a duration observation and panic recovery.
type StageRunner struct {
	metrics *metrics.Recorder
}

// NewStageRunner creates a new stage runner
func NewStageRunner(recorder *metrics.Recorder) *StageRunner {
	return &StageRunner{metrics: recorder}
}

// Run executes fn as the named stage. A panic is recovered, logged with its
// stack and returned as an ANALYSIS_FAILED error.
func (r *StageRunner) Run(ctx context.Context, stage, table string, fn func(ctx context.Context) error) (err error) {
	ctx, span := logger.StartSpan(ctx, "finprobe."+stage,
		attribute.String("stage", stage),
		attribute.String("table", table),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "stage panicked",
				"stage", stage,
				"table", table,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			err = errors.AnalysisFailed(stage, fmt.Errorf("panic on table %q: %v", table, p))
		}

		r.metrics.ObserveStage(stage, time.Since(start))
		if err != nil {
			r.metrics.StageFailed(stage)
			logger.RecordError(ctx, err)
		}
	}()

	logger.Debug(ctx, "stage started", "stage", stage, "table", table)
	return fn(ctx)
}
