package daemon

import (
	"context"
	"testing"

	"bandfinder/internal/classify"
	"bandfinder/internal/config"
	"bandfinder/internal/matching"
	"bandfinder/internal/notify"
	"bandfinder/internal/testsupport"
)

func newDaemonForConfig(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	notifier := notify.NewService(cfg)
	coordinator, err := matching.NewCoordinator(st, classify.NewKeywordClassifier(), notifier, nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	d, err := New(cfg, st, coordinator, notifier, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemonForConfig(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)

	if !d.Status(ctx).Running {
		t.Fatal("daemon must report running after start")
	}
	if d.Addr() == "" {
		t.Fatal("api address must be known after start")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second start of the same daemon must fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("daemon must report stopped after stop")
	}
}

func TestLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemonForConfig(t, cfg)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(first.Stop)

	second := newDaemonForConfig(t, cfg)
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance must be refused while the lock is held")
	}

	// Releasing the lock lets a new instance start.
	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("start after lock release failed: %v", err)
	}
	second.Stop()
}
