package statistics

import (
	"encoding/json"
	"math"
	"os"
	"sync"
	"time"

	"github.com/thetooth/pingctl/check"
	"github.com/thetooth/pingctl/config"
)

// Accumulator keeps the running counters and round-trip aggregates of a ping
// session. Only the running min/max/sum are kept so a continuous session does
// not grow memory.
type Accumulator struct {
	mu sync.RWMutex

	sent     uint64
	received uint64
	timedOut uint64
	failed   uint64

	lastRtt time.Duration
	minRtt  time.Duration
	maxRtt  time.Duration
	sumRtt  time.Duration

	// welford's running mean and squared distance, in nanoseconds
	mean float64
	m2   float64
}

// Record folds the outcome of exactly one exchange into the statistics.
func (a *Accumulator) Record(o check.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sent++
	switch o.Kind {
	case check.Replied:
		a.updateRtt(o.RTT)
	case check.TimedOut:
		a.timedOut++
	default:
		a.failed++
	}
}

func (a *Accumulator) updateRtt(rtt time.Duration) {
	if rtt < 0 {
		rtt = 0
	}
	a.received++
	a.lastRtt = rtt

	if a.received == 1 || rtt < a.minRtt {
		a.minRtt = rtt
	}
	if rtt > a.maxRtt {
		a.maxRtt = rtt
	}

	// saturate rather than wrap on very long sessions
	if a.sumRtt > math.MaxInt64-rtt {
		a.sumRtt = math.MaxInt64
	} else {
		a.sumRtt += rtt
	}

	// welford's online method for stddev
	// https://en.wikipedia.org/wiki/Algorithms_for_calculating_variance#Welford's_online_algorithm
	x := float64(rtt)
	delta := x - a.mean
	a.mean += delta / float64(a.received)
	a.m2 += delta * (x - a.mean)
}

// Snapshot returns the current statistics without resetting them.
func (a *Accumulator) Snapshot() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Summary{
		Sent:     a.sent,
		Received: a.received,
		Lost:     a.sent - a.received,
		TimedOut: a.timedOut,
		Failed:   a.failed,
	}
	if a.sent > 0 {
		s.LossPercent = float64(s.Lost) / float64(a.sent) * 100
	}
	if a.received > 0 {
		s.HasRTT = true
		s.Min = config.Interval{Duration: a.minRtt}
		s.Max = config.Interval{Duration: a.maxRtt}
		s.Avg = config.Interval{Duration: a.sumRtt / time.Duration(a.received)}
		s.StdDev = config.Interval{Duration: time.Duration(math.Sqrt(a.m2 / float64(a.received)))}
		s.Last = config.Interval{Duration: a.lastRtt}
	}

	return s
}

// Summary is a read-only projection of the accumulated statistics. The
// round-trip fields are only meaningful when HasRTT is set.
type Summary struct {
	Sent        uint64  `json:"packets_sent"`
	Received    uint64  `json:"packets_recv"`
	Lost        uint64  `json:"packets_lost"`
	LossPercent float64 `json:"packet_loss"`
	TimedOut    uint64  `json:"timed_out"`
	Failed      uint64  `json:"failed"`

	HasRTT bool            `json:"has_rtt"`
	Min    config.Interval `json:"min_rtt"`
	Max    config.Interval `json:"max_rtt"`
	Avg    config.Interval `json:"avg_rtt"`
	StdDev config.Interval `json:"std_dev_rtt"`
	Last   config.Interval `json:"last_rtt"`
}

// WriteFile stores the summary as JSON at path.
func WriteFile(path string, s Summary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
