package config

import (
	"runtime"

	"git.home.luguber.info/inful/novelbuilder/internal/slug"
	"git.home.luguber.info/inful/novelbuilder/internal/textproc"
)

// Default values.
const (
	DefaultLang      = "vi"
	DefaultPublisher = "novelbuilder"
)

// DefaultApplier applies defaults for one configuration section.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PipelineDefaultApplier fills the pipeline section.
type PipelineDefaultApplier struct{}

func (PipelineDefaultApplier) Domain() string { return "pipeline" }

func (PipelineDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Pipeline.Lang == "" {
		cfg.Pipeline.Lang = DefaultLang
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = runtime.NumCPU()
	}
	if len(cfg.Pipeline.Identities) == 0 {
		cfg.Pipeline.Identities = append([]string(nil), textproc.DefaultIdentities...)
	}
	if cfg.Pipeline.MaxTitleLength == 0 {
		cfg.Pipeline.MaxTitleLength = textproc.DefaultMaxTitleLength
	}
	return nil
}

// EPUBDefaultApplier fills the epub section.
type EPUBDefaultApplier struct{}

func (EPUBDefaultApplier) Domain() string { return "epub" }

func (EPUBDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.EPUB.Publisher == "" {
		cfg.EPUB.Publisher = DefaultPublisher
	}
	if cfg.EPUB.SlugMaxLength == 0 {
		cfg.EPUB.SlugMaxLength = slug.DefaultMaxLength
	}
	return nil
}

// LogDefaultApplier fills the log section.
type LogDefaultApplier struct{}

func (LogDefaultApplier) Domain() string { return "log" }

func (LogDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Log.Level == "" {
		cfg.Log.Level = LogLevelInfo
	} else {
		cfg.Log.Level = NormalizeLogLevel(string(cfg.Log.Level))
	}
	return nil
}

// appliers run in order.
var appliers = []DefaultApplier{
	PipelineDefaultApplier{},
	EPUBDefaultApplier{},
	LogDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
