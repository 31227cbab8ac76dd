package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"bandfinder/internal/config"
	"bandfinder/internal/logging"
	"bandfinder/internal/matching"
	"bandfinder/internal/notify"
	"bandfinder/internal/store"
)

// Daemon coordinates the matching engine and enforces single-instance
// execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *store.Store
	coordinator *matching.Coordinator
	notifier    notify.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	OpenRequests int
	ClosedCount  int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, coordinator *matching.Coordinator, notifier notify.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || coordinator == nil || notifier == nil {
		return nil, errors.New("daemon requires config, store, coordinator, and notifier")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "bandfinderd.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "daemon"),
		store:       st,
		coordinator: coordinator,
		notifier:    notifier,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	server, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = server
	return d, nil
}

// Start acquires the daemon lock and brings up the HTTP API. The API shuts
// down when ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bandfinder daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("bandfinder daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.String("error", err.Error()))
	}
	d.running.Store(false)
	d.logger.Info("bandfinder daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the listen address of the HTTP API, once started.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// TestNotification sends a probe message to the given recipient.
func (d *Daemon) TestNotification(ctx context.Context, recipientID int64) error {
	return d.notifier.TestNotification(ctx, recipientID)
}

// Status returns the current daemon status. Stats failures degrade to zero
// counts rather than failing the status call.
func (d *Daemon) Status(ctx context.Context) Status {
	open, closed, err := d.store.RequestStats(ctx)
	if err != nil {
		d.logger.Warn("request stats unavailable", slog.String("error", err.Error()))
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		OpenRequests: open,
		ClosedCount:  closed,
	}
}
