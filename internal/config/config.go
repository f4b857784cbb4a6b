// Package config loads the optional novelbuilder YAML configuration file.
//
// Values are resolved in three layers: built-in defaults, then the file,
// then command-line flags (applied by the caller). The file may reference
// environment variables as ${VAR}; a .env file in the working directory is
// read first and never overrides variables already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
)

// DefaultPath is the config file looked up when none is named.
const DefaultPath = "novelbuilder.yaml"

// Config is the complete configuration.
type Config struct {
	Pipeline PipelineConfig         `yaml:"pipeline"`
	EPUB     EPUBConfig             `yaml:"epub"`
	Labels   map[string]LabelConfig `yaml:"labels,omitempty"`
	Output   OutputConfig           `yaml:"output"`
	Metrics  MetricsConfig          `yaml:"metrics"`
	Log      LogConfig              `yaml:"log"`
}

// PipelineConfig controls the text stages.
type PipelineConfig struct {
	Lang           string   `yaml:"lang"`             // BCP 47 code written into documents
	Dedup          bool     `yaml:"dedup"`            // strip repeated chapter titles
	Workers        int      `yaml:"workers"`          // per-chapter concurrency, 0 = number of CPUs
	TemplateDir    string   `yaml:"template_dir"`     // custom template set, empty = embedded
	Identities     []string `yaml:"identities"`       // substrings marking a repeated title
	MaxTitleLength int      `yaml:"max_title_length"` // a repeated title is shorter than this
}

// EPUBConfig controls packaging.
type EPUBConfig struct {
	Publisher     string `yaml:"publisher"`
	SlugMaxLength int    `yaml:"slug_max_length"`
	AllowUnicode  bool   `yaml:"allow_unicode"`
}

// LabelConfig overrides the localized labels of one language.
type LabelConfig struct {
	Cover    string `yaml:"cover,omitempty"`
	Contents string `yaml:"contents,omitempty"`
	Foreword string `yaml:"foreword,omitempty"`
	Info     string `yaml:"info,omitempty"`
}

// OutputConfig controls the result directory.
type OutputConfig struct {
	// Clean removes previous output files before writing, like --rm.
	Clean bool `yaml:"clean"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level LogLevel `yaml:"level"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	// The appliers cannot fail on a zero config.
	_ = applyDefaults(cfg)
	return cfg
}

// Load reads, expands, defaults and validates the file at path. The file
// must exist.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load .env file").Fatal().Build()
	}

	// #nosec G304 -- the config path is chosen by the user.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").Fatal().WithContext("path", path).Build()
	}
	return Parse(data)
}

// LoadOptional is Load for the default path: a missing file yields the
// defaults instead of an error.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes YAML content after ${VAR} expansion.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration").Fatal().Build()
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "apply defaults").Fatal().Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LabelOverrides converts the labels section for the template renderer.
func (c *Config) LabelOverrides() map[string]templates.Labels {
	if len(c.Labels) == 0 {
		return nil
	}
	out := make(map[string]templates.Labels, len(c.Labels))
	for lang, l := range c.Labels {
		out[templates.BaseLanguage(lang)] = templates.Labels(l)
	}
	return out
}

const exampleHeader = `# novelbuilder configuration
#
# Flags given on the command line take precedence over these values.
# ${VAR} references are expanded from the environment.
`

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Labels = map[string]LabelConfig{
		"vi": {Contents: "Mục lục"},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal example configuration").Fatal().Build()
	}
	if err := os.WriteFile(path, append([]byte(exampleHeader), data...), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, fmt.Sprintf("write %s", path)).Fatal().Build()
	}
	return nil
}
