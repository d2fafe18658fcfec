package container

import (
	"context"
	"fmt"

	"finprobe/adapters/excel"
	"finprobe/adapters/render"
	"finprobe/app"
	"finprobe/internal/config"
	"finprobe/internal/errors"
	"finprobe/internal/logger"
	"finprobe/internal/metrics"
	"finprobe/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	Metrics *metrics.Recorder

	// Adapters
	Reader  ports.WorkbookReaderPort
	Writer  ports.ReportWriterPort
	Console render.Renderer

	// Pipeline
	Stages  app.Stages
	Service *app.AnalysisService
}

// New creates a new dependency injection container. format selects the
// report file renderer.
func New(cfg *config.Config, format string) (*Container, error) {
	if cfg == nil {
		return nil, errors.InternalError("config cannot be nil")
	}

	c := &Container{
		Config:  cfg,
		Metrics: metrics.NewRecorder(),
		Reader:  excel.NewDataReader(),
		Console: render.NewTextRenderer(render.OptionsFrom(cfg.Analysis)),
		Stages:  app.DefaultStages(cfg),
	}

	writer, err := render.NewFileWriter(render.OptionsFrom(cfg.Analysis), format)
	if err != nil {
		return nil, err
	}
	c.Writer = writer

	c.Service = app.NewAnalysisService(cfg, c.Reader, c.Stages, c.Metrics)
	return c, nil
}

// Shutdown writes the metrics textfile when one is configured
func (c *Container) Shutdown(ctx context.Context) error {
	path := c.Config.Output.MetricsFile
	if path == "" {
		return nil
	}
	if err := c.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	logger.Debug(ctx, "metrics written", "path", path)
	return nil
}
