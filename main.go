package main

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/thetooth/pingctl/check"
	"github.com/thetooth/pingctl/config"
	"github.com/thetooth/pingctl/engine"
	"github.com/thetooth/pingctl/interrupt"
	"github.com/thetooth/pingctl/metrics"
	"github.com/thetooth/pingctl/statistics"
	"github.com/thetooth/pingctl/util"
	"golang.org/x/sync/errgroup"
)

const (
	exitOK      = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, opts, err := parseArgs(args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		logrus.Error(err)
		return exitFailure
	}

	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dst, err := util.Resolve(ctx, net.DefaultResolver, cfg.Destination)
	if err != nil {
		logrus.Error(err)
		return exitFailure
	}
	name := cfg.Destination
	if cfg.ResolveNames && net.ParseIP(cfg.Destination) != nil {
		name = util.ReverseLookup(ctx, net.DefaultResolver, dst)
	}

	source, err := util.SourceAddress(cfg.Source)
	if err != nil {
		logrus.Error("Unable to use source ", cfg.Source, ": ", err)
		return exitFailure
	}
	cfg.Source = source

	e := engine.New(cfg, dst, func() (check.Transport, error) {
		return check.Open(check.Options{Source: cfg.Source, Privileged: cfg.Privileged})
	})
	e.Output = os.Stdout

	if err := interrupt.Register(e.Interrupts); err != nil {
		logrus.Error("Unable to register interrupt handler: ", err)
		return exitFailure
	}

	var collector *metrics.Collector
	var server *metrics.Server
	if opts.metricsAddr != "" {
		collector = metrics.NewCollector(e.Statistics, dst.String())
		e.OnRecord = collector.Observe
		server, err = metrics.New(opts.metricsAddr, collector)
		if err != nil {
			logrus.Error(err)
			return exitFailure
		}
	}

	engine.WriteHeader(os.Stdout, name, dst, cfg.Size)

	var res engine.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		// the metrics server lives as long as the session
		defer cancel()
		res, err = e.Run(gctx)
		return
	})
	if server != nil {
		g.Go(func() error {
			return server.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		logrus.Error(err)
		return exitFailure
	}

	engine.WriteStatistics(os.Stdout, dst, res.Summary)

	if opts.statsFile != "" {
		if err := statistics.WriteFile(opts.statsFile, res.Summary); err != nil {
			logrus.Warn("Unable to write statistics: ", err)
		}
	}

	return exitCode(cfg, res)
}

// exitCode is zero when a reply came back or the operator stopped the
// session, and non-zero when every request of a counted session was lost.
func exitCode(cfg config.Config, res engine.Result) int {
	if res.Received > 0 || res.Stopped || cfg.Continuous {
		return exitOK
	}
	logrus.Debugf("All %d requests to %s were lost", res.Sent, cfg.Destination)
	return exitFailure
}
