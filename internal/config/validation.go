package config

import (
	"strings"

	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if err := ValidateLang(c.Pipeline.Lang); err != nil {
		return err
	}
	if c.Pipeline.Workers < 0 {
		return invalid("pipeline.workers", "must not be negative")
	}
	if c.Pipeline.MaxTitleLength < 1 {
		return invalid("pipeline.max_title_length", "must be at least 1")
	}
	for _, id := range c.Pipeline.Identities {
		if strings.TrimSpace(id) == "" {
			return invalid("pipeline.identities", "must not contain empty entries")
		}
	}
	if c.EPUB.SlugMaxLength < 1 {
		return invalid("epub.slug_max_length", "must be at least 1")
	}
	for lang := range c.Labels {
		if err := ValidateLang(lang); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLang rejects codes that are not well-formed BCP 47 tags.
func ValidateLang(code string) error {
	if _, err := language.Parse(code); err != nil {
		return ferrors.ConfigError("invalid language code").
			WithCause(err).
			WithContext("lang", code).
			Build()
	}
	return nil
}

func invalid(field, reason string) error {
	return ferrors.ConfigError(field+" "+reason).WithContext("field", field).Build()
}
