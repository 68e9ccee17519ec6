package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/thetooth/pingctl/config"
	"github.com/thetooth/pingctl/engine"
	"github.com/thetooth/pingctl/statistics"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, opts, err := parseArgs([]string{"example.com"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	expected := config.Default()
	expected.Destination = "example.com"
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("Unexpected config (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(options{}, opts, cmp.AllowUnexported(options{})); diff != "" {
		t.Errorf("Unexpected options (-want +got):\n%s", diff)
	}
}

func TestParseArgsShorthands(t *testing.T) {
	args := []string{"-t", "-a", "-n", "10", "-l", "1472", "-f", "-i", "5", "-w", "250", "-S", "192.0.2.7",
		"--interval", "200ms", "--privileged", "--metrics-addr", ":9100", "--stats-file", "/tmp/s.json", "-v",
		"198.51.100.1"}
	cfg, opts, err := parseArgs(args, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	expected := config.Config{
		Destination:  "198.51.100.1",
		Continuous:   true,
		Count:        10,
		Size:         1472,
		DontFragment: true,
		TTL:          5,
		Timeout:      config.Interval{Duration: 250 * time.Millisecond},
		Source:       "192.0.2.7",
		ResolveNames: true,
		Interval:     config.Interval{Duration: 200 * time.Millisecond},
		Privileged:   true,
	}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("Unexpected config (-want +got):\n%s", diff)
	}

	expectedOpts := options{metricsAddr: ":9100", statsFile: "/tmp/s.json", verbose: true}
	if diff := cmp.Diff(expectedOpts, opts, cmp.AllowUnexported(options{})); diff != "" {
		t.Errorf("Unexpected options (-want +got):\n%s", diff)
	}
}

func TestParseArgsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.conf")
	data := `{"destination": "192.0.2.1", "count": 8, "ttl": 64, "timeout": "1s"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := parseArgs([]string{"--config", path, "-n", "2"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Destination != "192.0.2.1" || cfg.TTL != 64 || cfg.Timeout.Duration != time.Second {
		t.Errorf("File values were not applied: %+v", cfg)
	}
	if cfg.Count != 2 {
		t.Errorf("Flag should override the file, got count %d", cfg.Count)
	}
	if cfg.Size != config.DefaultSize {
		t.Errorf("Defaults should fill fields missing from the file, got size %d", cfg.Size)
	}

	cfg, _, err = parseArgs([]string{"--config", path, "192.0.2.99"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Destination != "192.0.2.99" {
		t.Errorf("Argument should override the file destination, got %s", cfg.Destination)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no destination", []string{}},
		{"two destinations", []string{"a", "b"}},
		{"bad ttl", []string{"-i", "0", "a"}},
		{"bad size", []string{"-l", "65501", "a"}},
		{"zero count", []string{"-n", "0", "a"}},
		{"bad timeout", []string{"-w", "0", "a"}},
		{"unknown flag", []string{"--bogus", "a"}},
		{"missing config", []string{"--config", "/nonexistent/session.conf", "a"}},
	}
	for _, tt := range tests {
		if _, _, err := parseArgs(tt.args, io.Discard); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}

	if _, _, err := parseArgs([]string{}, io.Discard); !errors.Is(err, errUsage) {
		t.Errorf("Expected usage error, got %v", err)
	}
	if _, _, err := parseArgs([]string{"-h"}, io.Discard); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("Expected help, got %v", err)
	}
}

func TestParseArgsContinuousIgnoresCount(t *testing.T) {
	if _, _, err := parseArgs([]string{"-t", "-n", "0", "a"}, io.Discard); err != nil {
		t.Errorf("Count should not matter when pinging continuously: %v", err)
	}
}

func TestExitCode(t *testing.T) {
	counted := config.Default()
	continuous := config.Default()
	continuous.Continuous = true

	tests := []struct {
		name string
		cfg  config.Config
		res  engine.Result
		want int
	}{
		{"all replied", counted, engine.Result{Summary: statistics.Summary{Sent: 4, Received: 4}}, exitOK},
		{"some replied", counted, engine.Result{Summary: statistics.Summary{Sent: 4, Received: 1, Lost: 3}}, exitOK},
		{"all lost", counted, engine.Result{Summary: statistics.Summary{Sent: 4, Lost: 4}}, exitFailure},
		{"stopped", counted, engine.Result{Summary: statistics.Summary{Sent: 2, Lost: 2}, Stopped: true}, exitOK},
		{"continuous", continuous, engine.Result{Summary: statistics.Summary{Sent: 9, Lost: 9}}, exitOK},
	}
	for _, tt := range tests {
		if got := exitCode(tt.cfg, tt.res); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}
