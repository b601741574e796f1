package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/araddon/dateparse"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"futurelink.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Resolve future links in a single document (stdin when no file is given)"`
	Check   CheckCmd   `cmd:"" help:"List future links and when they go live, without writing anything"`
	Publish PublishCmd `cmd:"" help:"Render the content tree into the output directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve content, resolving future links on every request"`
	Daemon  DaemonCmd  `cmd:"" help:"Re-publish on a schedule so links appear when they go live"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// loadConfig reads the configuration file. A missing file at the default
// location falls back to built-in defaults so single-document commands work
// without any setup.
func loadConfig(root *CLI) (*config.Config, error) {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", "config", root.Config)
		return config.Default(), nil
	}
	return config.Load(root.Config)
}

// parseNow resolves --now in the filter's timezone. Empty means the wall clock.
func parseNow(value string, cfg *config.Config) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	loc, err := time.LoadLocation(cfg.Filter.Timezone)
	if err != nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return time.Time{}, errors.ValidationError("--now is not a recognizable date").
			WithContext("now", value).
			WithCause(err).
			Build()
	}
	return t, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// isColorSupported checks if the terminal supports color output.
func isColorSupported() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo == nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		return false
	}
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
