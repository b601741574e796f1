package commands

import (
	"context"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
	"git.home.luguber.info/inful/futurelink/internal/publish"
	"git.home.luguber.info/inful/futurelink/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr   string `short:"a" help:"Override server.addr"`
	Source string `short:"s" help:"Override content.source"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Source != "" {
		cfg.Content.Source = s.Source
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	filter, err := cfg.NewFilter()
	if err != nil {
		return err
	}
	recorder, opts := serverMetrics(cfg)
	srv := server.New(cfg.Server.Addr, cfg.Content.Source, publish.New(cfg, filter, recorder), opts...)

	ctx, cancel := signalContext()
	defer cancel()
	return runServer(ctx, srv)
}

func serverMetrics(cfg *config.Config) (metrics.Recorder, []server.Option) {
	if !cfg.Server.Metrics {
		return metrics.NoopRecorder{}, nil
	}
	reg := prom.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), []server.Option{server.WithRegistry(reg)}
}

// runServer serves until ctx is canceled, then shuts down gracefully.
func runServer(ctx context.Context, srv *server.Server) error {
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start() }()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping server...")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(stopCtx)
}
