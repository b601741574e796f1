package config

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/futurelink"
)

// minInterval keeps the daemon from rewriting the output tree in a tight loop.
const minInterval = time.Minute

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateFilter(); err != nil {
		return err
	}
	if err := cv.validateContent(); err != nil {
		return err
	}
	return cv.validateDaemon()
}

func (cv *configurationValidator) validateFilter() error {
	for _, name := range cv.config.Filter.Syntaxes {
		if _, err := futurelink.SyntaxByName(name); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid filter.syntaxes entry").
				Fatal().
				WithContext("syntax", name).
				Build()
		}
	}
	if _, err := time.LoadLocation(cv.config.Filter.Timezone); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid filter.timezone").
			Fatal().
			WithContext("timezone", cv.config.Filter.Timezone).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	src, err := filepath.Abs(c.Source)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid content.source").Fatal().Build()
	}
	out, err := filepath.Abs(c.Output)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid content.output").Fatal().Build()
	}
	if src == out {
		return errors.ConfigError("content.output must differ from content.source").
			WithContext("path", src).
			Build()
	}
	if rel, err := filepath.Rel(src, out); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ConfigError("content.output must not be inside content.source").
			WithContext("output", out).
			Build()
	}
	if rel, err := filepath.Rel(out, src); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ConfigError("content.source must not be inside content.output").
			WithContext("source", src).
			WithContext("output", out).
			Build()
	}
	for _, pattern := range c.Eligible {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid content.eligible pattern").
				Fatal().
				WithContext("pattern", pattern).
				Build()
		}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.ConfigError("content.extensions entries must start with a dot").
				WithContext("extension", ext).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateDaemon() error {
	if cv.config.Daemon.Interval < minInterval {
		return errors.ConfigError("daemon.interval must be at least one minute").
			WithContext("interval", cv.config.Daemon.Interval.String()).
			Build()
	}
	switch r := cv.config.Daemon.Retry; {
	case r.Backoff != RetryBackoffFixed && r.Backoff != RetryBackoffLinear && r.Backoff != RetryBackoffExponential:
		return errors.ConfigError("daemon.retry.backoff must be fixed, linear or exponential").
			WithContext("backoff", string(r.Backoff)).
			Build()
	case r.MaxRetries < 0:
		return errors.ConfigError("daemon.retry.max_retries cannot be negative").Build()
	}
	if cron := cv.config.Daemon.Cron; cron != "" && len(strings.Fields(cron)) != 5 {
		return errors.ConfigError("daemon.cron must have five fields").
			WithContext("cron", cron).
			Build()
	}
	return nil
}
