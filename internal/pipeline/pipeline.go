package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/novelbuilder/internal/config"
	"git.home.luguber.info/inful/novelbuilder/internal/epub"
	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
	"git.home.luguber.info/inful/novelbuilder/internal/slug"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
	"git.home.luguber.info/inful/novelbuilder/internal/textproc"
)

// Request names the directories and switches of one run.
type Request struct {
	Input  string
	Output string
	// Dedup strips repeated chapter titles from the start of each body.
	Dedup bool
	// Lang overrides the configured language when set.
	Lang string
	// RemoveExisting empties the output directory first. It is ignored when
	// that would delete the input.
	RemoveExisting bool
}

// Pipeline runs operations with a fixed configuration.
type Pipeline struct {
	cfg      *config.Config
	recorder metrics.Recorder
	epubOpts []epub.Option

	mu  sync.Mutex
	set *templates.Set
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithTemplates uses set instead of loading pipeline.template_dir.
func WithTemplates(set *templates.Set) Option {
	return func(p *Pipeline) { p.set = set }
}

// WithPackagerOptions passes options to the EPUB packager.
func WithPackagerOptions(opts ...epub.Option) Option {
	return func(p *Pipeline) { p.epubOpts = append(p.epubOpts, opts...) }
}

// New returns a pipeline for cfg; a nil cfg means the defaults.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Pipeline{cfg: cfg, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Clean normalizes (and optionally deduplicates) every chapter and writes
// the result as a raw directory.
func (p *Pipeline) Clean(ctx context.Context, req Request) (*Report, error) {
	stages := p.textStages(req)
	stages = append(stages, StageDef{StageWrite, stageWriteText})
	return p.run(ctx, OpClean, req, stages)
}

// Convert cleans and renders every chapter to XHTML.
func (p *Pipeline) Convert(ctx context.Context, req Request) (*Report, error) {
	stages := p.textStages(req)
	stages = append(stages,
		StageDef{StageRender, stageRender},
		StageDef{StageWrite, stageWriteXHTML},
	)
	return p.run(ctx, OpConvert, req, stages)
}

// BuildEpub runs the full pipeline and writes one .epub file.
func (p *Pipeline) BuildEpub(ctx context.Context, req Request) (*Report, error) {
	stages := p.textStages(req)
	stages = append(stages,
		StageDef{StageRender, stageRender},
		StageDef{StagePackage, stagePackage},
		StageDef{StageWrite, stageWriteEpub},
	)
	return p.run(ctx, OpEpub, req, stages)
}

// textStages are the stages every operation starts with. Dedup only runs
// when the request or the configuration asks for it, and works on the raw
// lines ahead of normalize.
func (p *Pipeline) textStages(req Request) []StageDef {
	stages := []StageDef{{StageReadRaw, stageReadRaw}}
	if req.Dedup || p.cfg.Pipeline.Dedup {
		stages = append(stages, StageDef{StageDedup, stageDedup})
	}
	return append(stages, StageDef{StageNormalize, stageNormalize})
}

func (p *Pipeline) run(ctx context.Context, op Operation, req Request, stages []StageDef) (*Report, error) {
	report := newReport(op)
	if err := p.validate(&req); err != nil {
		report.finish()
		return report, err
	}
	report.OutputDir = req.Output

	st := &State{
		Request:  req,
		Lang:     p.lang(req),
		Report:   report,
		pipeline: p,
		recorder: p.recorder,
	}
	ctx = observability.WithRunID(ctx, uuid.NewString())
	ctx = observability.WithOperation(ctx, string(op))
	observability.InfoContext(ctx, "Starting run",
		logfields.Path(req.Input),
		logfields.Lang(st.Lang))

	err := RunStages(ctx, st, stages)
	report.finish()
	p.recorder.ObserveRunDuration(string(op), report.Duration())
	if err != nil {
		return report, err
	}
	observability.InfoContext(ctx, "Run complete",
		logfields.Count(report.Produced),
		slog.Int("available", report.Available),
		slog.Int("skipped", report.Skipped()),
		slog.Int("issues", len(report.Issues)))
	return report, nil
}

func (p *Pipeline) validate(req *Request) error {
	if req.Input == "" {
		return ferrors.ValidationError("raw directory is required").Build()
	}
	if req.Output == "" {
		return ferrors.ValidationError("output directory is required").Build()
	}
	if req.Lang != "" {
		if err := config.ValidateLang(req.Lang); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid --lang").WithContext("lang", req.Lang).Build()
		}
	}
	var err error
	if req.Input, err = filepath.Abs(req.Input); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve raw directory").Fatal().Build()
	}
	if req.Output, err = filepath.Abs(req.Output); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve output directory").Fatal().Build()
	}
	return nil
}

func (p *Pipeline) lang(req Request) string {
	if req.Lang != "" {
		return req.Lang
	}
	return p.cfg.Pipeline.Lang
}

func (p *Pipeline) workers() int {
	if p.cfg.Pipeline.Workers > 0 {
		return p.cfg.Pipeline.Workers
	}
	return runtime.NumCPU()
}

func (p *Pipeline) dedupOptions() []textproc.DedupOption {
	return []textproc.DedupOption{
		textproc.WithIdentities(p.cfg.Pipeline.Identities...),
		textproc.WithMaxLength(p.cfg.Pipeline.MaxTitleLength),
	}
}

// templateSet loads the configured template set once.
func (p *Pipeline) templateSet() (*templates.Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set != nil {
		return p.set, nil
	}
	set, err := templates.LoadDir(p.cfg.Pipeline.TemplateDir)
	if err != nil {
		return nil, err
	}
	p.set = set
	return set, nil
}

func (p *Pipeline) packager(set *templates.Set) *epub.Packager {
	opts := []epub.Option{epub.WithSlugOptions(slug.Options{
		MaxLength:    p.cfg.EPUB.SlugMaxLength,
		AllowUnicode: p.cfg.EPUB.AllowUnicode,
	})}
	opts = append(opts, p.epubOpts...)
	return epub.NewPackager(set, opts...)
}
