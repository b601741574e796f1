package commands

import (
	"context"
	"os"
	"time"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/publish"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	File   string `arg:"" optional:"" help:"Check a single document instead of the content tree" type:"existingfile"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Now    string `help:"Evaluate go-live dates against this time instead of the clock"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	now, err := parseNow(c.Now, cfg)
	if err != nil {
		return err
	}
	filter, err := cfg.NewFilter()
	if err != nil {
		return err
	}

	var report *publish.Report
	if c.File != "" {
		report, err = c.checkFile(publish.NewRenderer(filter, []string{"*"}, nil), now)
	} else {
		ctx, cancel := signalContext()
		defer cancel()
		report, err = publish.New(cfg, filter, nil, publish.WithClock(func() time.Time { return now })).Check(ctx)
	}
	if err != nil {
		return err
	}

	formatter, err := publish.NewFormatter(c.Format, isColorSupported())
	if err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if err := formatter.Format(os.Stdout, report); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to format report").Build()
	}

	if report.HasProblems() {
		return errors.ValidationError("check found malformed markers, unreadable dates or truncated pages").Warning().Build()
	}
	return nil
}

func (c *CheckCmd) checkFile(r *publish.Renderer, now time.Time) (*publish.Report, error) {
	src, err := os.ReadFile(c.File)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", c.File).
			Build()
	}
	page, err := r.Render(context.Background(), c.File, src, now)
	if err != nil {
		return nil, err
	}
	return publish.SinglePageReport(page, now), nil
}
