package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"
	"github.com/thetooth/pingctl/config"
)

// options are the settings of the process itself rather than of the ping
// session.
type options struct {
	configPath  string
	metricsAddr string
	statsFile   string
	verbose     bool
}

var errUsage = errors.New("usage: pingctl [options] destination")

// parseArgs builds the session configuration. Values come from the defaults,
// then the --config file, then the flags given on the command line.
func parseArgs(args []string, stderr io.Writer) (cfg config.Config, opts options, err error) {
	def := config.Default()

	fs := pflag.NewFlagSet("pingctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	continuous := fs.BoolP("continuous", "t", false, "Ping the destination until stopped")
	resolve := fs.BoolP("resolve", "a", false, "Resolve addresses to host names")
	count := fs.IntP("count", "n", def.Count, "Number of echo requests to send")
	size := fs.IntP("size", "l", def.Size, "Send buffer size")
	dontFragment := fs.BoolP("dont-fragment", "f", false, "Set the don't fragment flag")
	ttl := fs.IntP("ttl", "i", def.TTL, "Time to live")
	timeout := fs.IntP("timeout", "w", int(def.Timeout.Milliseconds()), "Timeout in milliseconds to wait for each reply")
	source := fs.StringP("source", "S", "", "Source address or interface to send from")
	interval := fs.Duration("interval", def.Interval.Duration, "Time between the start of two requests")
	privileged := fs.Bool("privileged", false, "Use a raw ICMP socket (needs CAP_NET_RAW)")

	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON session configuration")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&opts.statsFile, "stats-file", "", "Write the final statistics as JSON to this path")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg = def
	if opts.configPath != "" {
		var loaded *config.Config
		loaded, err = config.Load(opts.configPath)
		if err != nil {
			err = fmt.Errorf("unable to load configuration: %w", err)
			return
		}
		cfg = *loaded
	}

	if fs.Changed("continuous") {
		cfg.Continuous = *continuous
	}
	if fs.Changed("resolve") {
		cfg.ResolveNames = *resolve
	}
	if fs.Changed("count") {
		cfg.Count = *count
	}
	if fs.Changed("size") {
		cfg.Size = *size
	}
	if fs.Changed("dont-fragment") {
		cfg.DontFragment = *dontFragment
	}
	if fs.Changed("ttl") {
		cfg.TTL = *ttl
	}
	if fs.Changed("timeout") {
		cfg.Timeout = config.Interval{Duration: time.Duration(*timeout) * time.Millisecond}
	}
	if fs.Changed("source") {
		cfg.Source = *source
	}
	if fs.Changed("interval") {
		cfg.Interval = config.Interval{Duration: *interval}
	}
	if fs.Changed("privileged") {
		cfg.Privileged = *privileged
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Destination = fs.Arg(0)
	default:
		err = fmt.Errorf("unexpected arguments %v: %w", fs.Args()[1:], errUsage)
		return
	}
	if cfg.Destination == "" {
		err = errUsage
		return
	}

	err = cfg.Validate()
	return
}
