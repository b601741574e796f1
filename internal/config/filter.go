package config

import (
	"time"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/futurelink"
)

// FilterOptions translates the filter section into engine options.
func (c *Config) FilterOptions() (futurelink.Options, error) {
	opts := futurelink.Options{
		MaxIterations: c.Filter.MaxIterations,
		Hold:          futurelink.HoldSubstrings(c.Filter.Hold...),
	}
	for _, name := range c.Filter.Syntaxes {
		s, err := futurelink.SyntaxByName(name)
		if err != nil {
			return futurelink.Options{}, errors.WrapError(err, errors.CategoryConfig, "invalid filter.syntaxes entry").Build()
		}
		opts.Syntaxes = append(opts.Syntaxes, s)
	}
	if c.Filter.Timezone != "" {
		loc, err := time.LoadLocation(c.Filter.Timezone)
		if err != nil {
			return futurelink.Options{}, errors.WrapError(err, errors.CategoryConfig, "invalid filter.timezone").Build()
		}
		opts.Location = loc
	}
	return opts, nil
}

// NewFilter builds the rewriting engine described by the configuration.
func (c *Config) NewFilter() (*futurelink.Filter, error) {
	opts, err := c.FilterOptions()
	if err != nil {
		return nil, err
	}
	return futurelink.New(opts), nil
}
