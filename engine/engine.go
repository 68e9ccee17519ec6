package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thetooth/pingctl/check"
	"github.com/thetooth/pingctl/config"
	"github.com/thetooth/pingctl/interrupt"
	"github.com/thetooth/pingctl/statistics"
)

// DefaultMinDelay is the shortest pause between two requests, so that a
// transport failing instantly cannot starve the interrupt poll.
const DefaultMinDelay = 10 * time.Millisecond

// Opener acquires the transport for one run.
type Opener func() (check.Transport, error)

// Engine drives the send/receive/report cycle of a ping session.
type Engine struct {
	// Interrupts is polled between exchanges.
	Interrupts *interrupt.Controller

	// Statistics accumulates every exchange of the run.
	Statistics *statistics.Accumulator

	// Output receives report lines and statistics snapshots.
	Output io.Writer

	// OnRecord is called after each exchange has been recorded.
	OnRecord func(check.Outcome)

	// MinDelay is the shortest pause between the end of one exchange and the
	// next request.
	MinDelay time.Duration

	cfg  config.Config
	dst  net.IP
	open Opener
}

// Result is the outcome of a run.
type Result struct {
	statistics.Summary

	// Stopped is set when the run ended on a stop request rather than
	// after the configured count.
	Stopped bool
}

// New returns an Engine pinging dst with cfg. The transport is acquired from
// open when Run starts and released when it returns.
func New(cfg config.Config, dst net.IP, open Opener) *Engine {
	return &Engine{
		Interrupts: interrupt.NewController(),
		Statistics: &statistics.Accumulator{},
		Output:     io.Discard,
		MinDelay:   DefaultMinDelay,

		cfg:  cfg,
		dst:  dst,
		open: open,
	}
}

// Run pings until the configured count is reached or a stop is requested.
// Cancelling ctx counts as a stop request. Errors are only returned for
// setup failures; per-exchange failures are recorded as lost requests.
func (e *Engine) Run(ctx context.Context) (res Result, err error) {
	if err = e.cfg.Validate(); err != nil {
		return
	}
	dst := e.dst.To4()
	if dst == nil {
		err = fmt.Errorf("%v is not an IPv4 address", e.dst)
		return
	}

	t, err := e.open()
	if err != nil {
		return
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			logrus.Warn("Closing transport: ", cerr)
		}
	}()

	req := check.Request{
		Destination:  dst,
		TTL:          uint8(e.cfg.TTL),
		DontFragment: e.cfg.DontFragment,
		Payload:      check.BuildPayload(e.cfg.Size),
		Timeout:      e.cfg.Timeout.Duration,
	}
	if p, ok := t.(check.Preparer); ok {
		if err = p.Prepare(req); err != nil {
			return
		}
	}

	res.Stopped, err = e.loop(ctx, t, req)
	res.Summary = e.Statistics.Snapshot()
	return
}

func (e *Engine) loop(ctx context.Context, t check.Transport, req check.Request) (stopped bool, err error) {
	var sent int
	var next time.Time

	for {
		switch e.Interrupts.Take() {
		case interrupt.StopRequested:
			logrus.Debug("Stop requested after ", sent, " requests")
			return true, nil
		case interrupt.DisplayRequested:
			WriteStatistics(e.Output, req.Destination, e.Statistics.Snapshot())
		}
		if ctx.Err() != nil {
			return true, nil
		}

		if !e.cfg.Continuous && sent >= e.cfg.Count {
			return false, nil
		}

		if wait := time.Until(next); wait > 0 {
			if !e.sleep(ctx, wait) {
				// woken by a signal, poll before sending
				continue
			}
		}

		start := time.Now()
		outcome, serr := t.SendEcho(req)
		if serr != nil {
			var setupErr *check.SetupError
			if errors.As(serr, &setupErr) {
				return false, serr
			}
			outcome = check.Failure(serr)
		}
		sent++

		e.Statistics.Record(outcome)
		if e.OnRecord != nil {
			e.OnRecord(outcome)
		}
		WriteOutcome(e.Output, outcome)

		next = start.Add(e.cfg.Interval.Duration)
		if earliest := time.Now().Add(e.MinDelay); next.Before(earliest) {
			next = earliest
		}
	}
}

// sleep waits for d and reports whether it elapsed without a signal or
// cancellation.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-e.Interrupts.Wait():
		return false
	case <-ctx.Done():
		return false
	}
}
