package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"finprobe/adapters/render"
	"finprobe/internal/config"
	"finprobe/internal/container"
	"finprobe/internal/errors"
	"finprobe/internal/logger"

	"github.com/spf13/cobra"
)

type options struct {
	out         string
	noSave      bool
	format      string
	workers     int
	metricsFile string
	configFile  string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "finprobe: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a run error to the process status: 1 for fatal run errors,
// 2 for anything else (usage errors from flag parsing)
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsFatal(err):
		return 1
	}
	return 2
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "finprobe [workbook]",
		Short: "Heuristic financial analysis of a spreadsheet workbook",
		Long: `Load every sheet of an Excel (or CSV) workbook and run the financial profile,
trend, categorical and risk/opportunity passes over each one, then print
strategic recommendations and an executive summary.

Without an argument the workbook is located from FINPROBE_INPUT_FILENAME
(default workbook.xlsx) in the current directory and FINPROBE_INPUT_SEARCH_DIR.

Example: finprobe ledger.xlsx --out results.md --workers 4`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			return run(cmd.Context(), cfg, opts.format, explicit, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", "", "Report file (default analysis_results.txt)")
	flags.BoolVar(&opts.noSave, "no-save", false, "Do not write the report file")
	flags.StringVar(&opts.format, "format", render.FormatAuto, "Report file format: "+strings.Join(render.Formats, "|"))
	flags.IntVarP(&opts.workers, "workers", "w", 1, "Tables analyzed concurrently")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML file with analysis thresholds and vocabularies")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG|INFO|WARN|ERROR")

	return cmd
}

// loadConfig reads env and file configuration, then applies the flags that were set
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if opts.configFile != "" {
		if err := cfg.MergeFile(opts.configFile); err != nil {
			return nil, err
		}
	}
	if flags.Changed("out") {
		cfg.Output.ReportFile = opts.out
	}
	if opts.noSave {
		cfg.Output.Save = false
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, format, explicit string, stdout io.Writer) error {
	if err := logger.Init(logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Tracing: cfg.Logging.Tracing,
	}); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "finprobe: flushing traces: %v\n", err)
		}
	}()

	c, err := container.New(cfg, format)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Shutdown(ctx); err != nil {
			logger.ErrorWithErr(ctx, "failed to shut down", err)
		}
	}()

	return analyze(ctx, c, explicit, stdout)
}

// analyze runs the pipeline held by c, prints the report and saves it when configured
func analyze(ctx context.Context, c *container.Container, explicit string, stdout io.Writer) error {
	cfg := c.Config
	path, err := cfg.Input.ResolveInput(explicit)
	if err != nil {
		return err
	}
	logger.Info(ctx, "using workbook", "path", path)

	rep, err := c.Service.Run(ctx, path)
	if err != nil {
		if !errors.IsAppError(err) {
			err = errors.AnalysisFailed("run", err)
		}
		return err
	}

	if err := c.Console.Render(stdout, rep); err != nil {
		return errors.Wrap(err, "failed to print report")
	}

	if cfg.Output.Save {
		if err := c.Writer.Write(ctx, cfg.Output.ReportFile, rep); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			logger.ErrorWithErr(ctx, "failed to save report", err, "path", cfg.Output.ReportFile)
		} else {
			fmt.Fprintf(stdout, "\nDetailed results saved to: %s\n", cfg.Output.ReportFile)
		}
	}
	return nil
}
