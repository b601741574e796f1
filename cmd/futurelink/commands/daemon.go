package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/futurelink/internal/daemon"
	"git.home.luguber.info/inful/futurelink/internal/server"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Serve bool `help:"Also serve the content tree on server.addr"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	recorder, opts := serverMetrics(cfg)

	dm, err := daemon.New(root.Config, cfg, recorder)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("Starting daemon mode", "interval", cfg.Daemon.Interval.String(), "watch_config", cfg.Daemon.WatchConfig)

	if d.Serve {
		// The server keeps the publisher it started with; reloads only affect publishing.
		srv := server.New(cfg.Server.Addr, cfg.Content.Source, dm.Publisher(), opts...)
		go func() {
			if err := runServer(ctx, srv); err != nil {
				slog.Error("Server stopped", "error", err)
				cancel()
			}
		}()
	}
	return dm.Run(ctx)
}
