package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bandfinder/internal/classify"
	"bandfinder/internal/config"
	"bandfinder/internal/daemon"
	"bandfinder/internal/logging"
	"bandfinder/internal/matching"
	"bandfinder/internal/notify"
	"bandfinder/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := bootstrap(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("bandfinderd shutting down")
}

// bootstrap wires the store, classifier, notifier, and coordinator into a
// ready-to-start daemon.
func bootstrap(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	classifier := classify.FromConfig(cfg, logger)
	notifier := notify.NewService(cfg)

	coordinator, err := matching.NewCoordinator(st, classifier, notifier, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	d, err := daemon.New(cfg, st, coordinator, notifier, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return d, nil
}
