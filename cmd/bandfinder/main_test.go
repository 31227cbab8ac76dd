package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bandfinder/internal/classify"
	"bandfinder/internal/daemon"
	"bandfinder/internal/matching"
	"bandfinder/internal/notify"
	"bandfinder/internal/store"
	"bandfinder/internal/testsupport"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	expected := []string{"status", "register", "profile", "search", "request", "accept", "test-notify", "config"}
	for _, name := range expected {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestConfigInitWritesSampleFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	root.SetArgs([]string{"config", "init", "--path", target})
	var out bytes.Buffer
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(data), "[telegram]") {
		t.Fatalf("sample config missing telegram section:\n%s", data)
	}

	// Second init without --overwrite refuses to clobber.
	again := newRootCommand()
	again.SetArgs([]string{"config", "init", "--path", target})
	again.SetOut(new(bytes.Buffer))
	if err := again.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func startTestDaemon(t *testing.T) (*daemon.Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	notifier := notify.NewService(cfg)
	coordinator, err := matching.NewCoordinator(st, classify.NewKeywordClassifier(), notifier, nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	d, err := daemon.New(cfg, st, coordinator, notifier, nil)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon start failed: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, "http://" + d.Addr()
}

func runCLI(t *testing.T, server string, stdin string, args ...string) string {
	t.Helper()
	root := newRootCommand()
	root.SetArgs(append([]string{"--server", server}, args...))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if stdin != "" {
		root.SetIn(strings.NewReader(stdin))
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestEndToEndOverHTTP(t *testing.T) {
	_, server := startTestDaemon(t)

	// Register a guitarist through the interactive form.
	form := strings.Join([]string{"guitar", "6", "rock, blues", "gigging since 2019", "Berlin"}, "\n") + "\n"
	output := runCLI(t, server, form, "register", "--id", "11")
	if !strings.Contains(output, "profile has been saved") {
		t.Fatalf("unexpected register output: %s", output)
	}

	// The profile is visible and searchable.
	output = runCLI(t, server, "", "profile", "show", "--id", "11")
	if !strings.Contains(output, store.InstrumentGuitar) || !strings.Contains(output, "6 years") {
		t.Fatalf("unexpected profile output: %s", output)
	}
	output = runCLI(t, server, "", "search", "--instrument", "guitar", "--min-experience", "5")
	if !strings.Contains(output, "11") {
		t.Fatalf("search missed the registered musician: %s", output)
	}

	// A band creates a request from flags; the keyword classifier tags it.
	output = runCLI(t, server, "", "request", "create",
		"--band", "70",
		"--instrument", "guitar",
		"--min-experience", "3",
		"--description", "rock band with weekly rehearsals",
	)
	if !strings.Contains(output, "Request #1 created") || !strings.Contains(output, "Rock") {
		t.Fatalf("unexpected create output: %s", output)
	}

	// The musician accepts; a second acceptance is refused.
	output = runCLI(t, server, "", "accept", "1", "--id", "11")
	if !strings.Contains(output, "You got the spot") {
		t.Fatalf("unexpected accept output: %s", output)
	}
	output = runCLI(t, server, "", "accept", "1", "--id", "12")
	if !strings.Contains(output, "already filled") {
		t.Fatalf("second accept must be refused: %s", output)
	}

	// The listing shows the filled request and the acceptor.
	output = runCLI(t, server, "", "request", "list", "--band", "70")
	if !strings.Contains(output, "closed") || !strings.Contains(output, "11") {
		t.Fatalf("unexpected list output: %s", output)
	}

	// A filled request cannot be cancelled.
	root := newRootCommand()
	root.SetArgs([]string{"--server", server, "request", "cancel", "1", "--band", "70"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	if err := root.Execute(); err == nil {
		t.Fatal("cancelling a filled request must fail")
	}
}

func TestStatusCommandAgainstDaemon(t *testing.T) {
	_, server := startTestDaemon(t)

	output := runCLI(t, server, "", "status")
	if !strings.Contains(output, "BandFinder Daemon") || !strings.Contains(output, "[OK]") {
		t.Fatalf("unexpected status output: %s", output)
	}
}
