package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/futurelink/internal/futurelink"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// FilterDefaultApplier handles filter configuration defaults.
type FilterDefaultApplier struct{}

func (FilterDefaultApplier) Domain() string { return "filter" }

func (FilterDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Filter.Syntaxes) == 0 {
		for _, s := range futurelink.DefaultSyntaxes {
			cfg.Filter.Syntaxes = append(cfg.Filter.Syntaxes, s.Name)
		}
	}
	if cfg.Filter.MaxIterations <= 0 {
		cfg.Filter.MaxIterations = futurelink.DefaultMaxIterations
	}
	if cfg.Filter.Timezone == "" {
		cfg.Filter.Timezone = "UTC"
	}
	return nil
}

// ContentDefaultApplier handles content tree defaults.
type ContentDefaultApplier struct{}

func (ContentDefaultApplier) Domain() string { return "content" }

func (ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Source == "" {
		cfg.Content.Source = "./content"
	}
	if cfg.Content.Output == "" {
		cfg.Content.Output = "./public"
	}
	if len(cfg.Content.Extensions) == 0 {
		cfg.Content.Extensions = []string{".html", ".htm", ".md"}
	}
	if len(cfg.Content.Eligible) == 0 {
		cfg.Content.Eligible = []string{"*"}
	}
	return nil
}

// ServerDefaultApplier handles render server defaults.
type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return nil
}

// DaemonDefaultApplier handles scheduled publishing defaults.
type DaemonDefaultApplier struct{}

func (DaemonDefaultApplier) Domain() string { return "daemon" }

func (DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon.Interval <= 0 {
		cfg.Daemon.Interval = time.Hour
	}
	r := &cfg.Daemon.Retry
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
	} else {
		r.Backoff = RetryBackoffMode(strings.ToLower(strings.TrimSpace(string(r.Backoff))))
	}
	if r.Initial <= 0 {
		r.Initial = 5 * time.Second
	}
	if r.Max <= 0 {
		r.Max = time.Minute
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	FilterDefaultApplier{},
	ContentDefaultApplier{},
	ServerDefaultApplier{},
	DaemonDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
