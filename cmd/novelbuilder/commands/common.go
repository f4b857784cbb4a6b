// Package commands implements the novelbuilder command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/novelbuilder/internal/config"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/pipeline"
)

// LogLevelEnv overrides the log level set by flags and configuration.
const LogLevelEnv = "NOVELBUILDER_LOG_LEVEL"

// DefaultResultDir is created next to the raw directory when no --result is
// given to clean or convert.
const DefaultResultDir = "result_dir"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"novelbuilder.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this file after the run" type:"path"`

	Clean     CleanCmd     `cmd:"" help:"Normalize raw chapters and write them back as text"`
	Convert   ConvertCmd   `cmd:"" help:"Render raw chapters to XHTML pages"`
	Dedup     DedupCmd     `cmd:"" help:"Strip repeated chapter titles (in place unless --result is given)"`
	Epub      EpubCmd      `cmd:"" help:"Build and check EPUB archives"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
	Templates TemplatesCmd `cmd:"" help:"Manage the document template set"`
}

var logLevel = new(slog.LevelVar)

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logLevel.Set(slog.LevelInfo)
	if c.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		logLevel.Set(config.NormalizeLogLevel(env).SlogLevel())
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig reads the configuration named by --config. The default file
// is optional; an explicitly named one must exist. A log level from the
// file applies unless -v or the environment chose one.
func LoadConfig(root *CLI) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if root.Config == config.DefaultPath {
		cfg, err = config.LoadOptional(root.Config)
	} else {
		cfg, err = config.Load(root.Config)
	}
	if err != nil {
		return nil, err
	}
	if !root.Verbose && os.Getenv(LogLevelEnv) == "" && cfg.Log.Level != "" {
		logLevel.Set(cfg.Log.Level.SlogLevel())
	}
	return cfg, nil
}

// ResolveOutputDir returns flag when set, otherwise fallback resolved
// against the raw directory.
func ResolveOutputDir(flag, raw string, fallback func(raw string) string) string {
	if flag != "" {
		return flag
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		abs = raw
	}
	return fallback(abs)
}

// siblingResultDir is <parent of raw>/result_dir.
func siblingResultDir(raw string) string {
	return filepath.Join(filepath.Dir(raw), DefaultResultDir)
}

// parentDir is the directory holding raw.
func parentDir(raw string) string {
	return filepath.Dir(raw)
}

// inPlace writes back into raw.
func inPlace(raw string) string {
	return raw
}

// TextFlags are shared by the commands that run the text stages.
type TextFlags struct {
	Raw    string `arg:"" help:"Raw directory" type:"existingdir"`
	Dedup  bool   `help:"Strip chapter titles repeated at the start of each body"`
	Result string `help:"Result directory" type:"path" placeholder:"DIR"`
}

// runner bundles a pipeline with the metrics registry behind it.
type runner struct {
	pipeline    *pipeline.Pipeline
	registry    *prom.Registry
	metricsFile string
}

func newRunner(root *CLI, cfg *config.Config) *runner {
	r := &runner{metricsFile: root.MetricsFile}
	if r.metricsFile == "" {
		r.metricsFile = cfg.Metrics.Textfile
	}
	var opts []pipeline.Option
	if r.metricsFile != "" {
		r.registry = prom.NewRegistry()
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(r.registry)))
	}
	r.pipeline = pipeline.New(cfg, opts...)
	return r
}

type operation func(context.Context, pipeline.Request) (*pipeline.Report, error)

// run executes op until done or interrupted, prints the outcome and writes
// metrics.
func (r *runner) run(op operation, req pipeline.Request) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := op(ctx, req)
	if err == nil {
		printReport(report)
	}
	if werr := r.writeMetrics(); werr != nil {
		slog.Warn("Failed to write metrics", "error", werr)
	}
	return err
}

func (r *runner) writeMetrics() error {
	if r.registry == nil {
		return nil
	}
	return metrics.WriteTextfile(r.registry, r.metricsFile)
}

func printReport(report *pipeline.Report) {
	for _, is := range report.Issues {
		if is.ChapterID > 0 {
			fmt.Printf("skipped chapter %d (%s): %s\n", is.ChapterID, is.Category, is.Message)
		} else {
			fmt.Printf("skipped %s (%s): %s\n", is.File, is.Category, is.Message)
		}
	}
	fmt.Println(report.Summary())
	if report.OutputDir != "" {
		fmt.Printf("View result at: %s\n", report.OutputDir)
	}
}
