package commands

import (
	"os"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Source string `short:"s" help:"Override content.source"`
	Output string `short:"o" help:"Override content.output"`
	Clean  bool   `help:"Empty the output directory first"`
	Format string `short:"f" default:"text" help:"Summary format (text or json)" enum:"text,json"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if p.Source != "" {
		cfg.Content.Source = p.Source
	}
	if p.Output != "" {
		cfg.Content.Output = p.Output
	}
	cfg.Content.Clean = cfg.Content.Clean || p.Clean
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	filter, err := cfg.NewFilter()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := publish.New(cfg, filter, nil).Publish(ctx)
	if err != nil {
		return err
	}

	formatter, err := publish.NewFormatter(p.Format, isColorSupported())
	if err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	return formatter.Format(os.Stdout, report)
}
