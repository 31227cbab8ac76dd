// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store lifecycle management, and seed data.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"bandfinder/internal/config"
	"bandfinder/internal/store"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAPIToken sets the bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(c *config.Config) {
		c.Paths.APIToken = token
	}
}

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedMusician registers a profile for tests using the provided store.
func SeedMusician(t testing.TB, st *store.Store, id int64, instrument string, experience int) *store.Musician {
	t.Helper()

	musician := &store.Musician{
		TelegramID: id,
		Instrument: instrument,
		Experience: experience,
		Genres:     "rock,funk",
		Location:   "Berlin",
		About:      "session player",
	}
	if err := st.UpsertMusician(context.Background(), musician); err != nil {
		t.Fatalf("store.UpsertMusician: %v", err)
	}
	return musician
}

// SeedRequest creates an open request for tests using the provided store.
func SeedRequest(t testing.TB, st *store.Store, bandID int64, instrument string, minExperience int) *store.Request {
	t.Helper()

	request, err := st.CreateRequest(context.Background(), bandID, instrument, "Rock", "looking for a player", "Berlin", minExperience)
	if err != nil {
		t.Fatalf("store.CreateRequest: %v", err)
	}
	return request
}
