package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/thetooth/pingctl/check"
	"github.com/thetooth/pingctl/statistics"
)

// Snapshotter is the read side of the statistics accumulator.
type Snapshotter interface {
	Snapshot() statistics.Summary
}

// Collector exports the session statistics of one destination.
type Collector struct {
	stats Snapshotter

	descSent     *prometheus.Desc
	descReceived *prometheus.Desc
	descLost     *prometheus.Desc
	descMin      *prometheus.Desc
	descAvg      *prometheus.Desc
	descMax      *prometheus.Desc

	rtt prometheus.Histogram
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(stats Snapshotter, destination string) *Collector {
	labels := prometheus.Labels{"destination": destination}
	return &Collector{
		stats: stats,
		descSent: prometheus.NewDesc(
			"ping_packets_sent_total",
			"Echo requests sent",
			nil, labels,
		),
		descReceived: prometheus.NewDesc(
			"ping_packets_received_total",
			"Echo replies received",
			nil, labels,
		),
		descLost: prometheus.NewDesc(
			"ping_packets_lost_total",
			"Echo requests without a reply",
			nil, labels,
		),
		descMin: prometheus.NewDesc(
			"ping_rtt_min_seconds",
			"Shortest round-trip time",
			nil, labels,
		),
		descAvg: prometheus.NewDesc(
			"ping_rtt_avg_seconds",
			"Average round-trip time",
			nil, labels,
		),
		descMax: prometheus.NewDesc(
			"ping_rtt_max_seconds",
			"Longest round-trip time",
			nil, labels,
		),
		rtt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "ping_rtt_seconds",
			Help:        "Round-trip time of echo replies",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

// Observe adds the round-trip time of a reply to the histogram. Other
// outcomes are only counted through the statistics.
func (c *Collector) Observe(o check.Outcome) {
	if o.Kind != check.Replied {
		return
	}
	c.rtt.Observe(o.RTT.Seconds())
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.descSent
	ch <- c.descReceived
	ch <- c.descLost
	ch <- c.descMin
	ch <- c.descAvg
	ch <- c.descMax
	c.rtt.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.descSent, prometheus.CounterValue, float64(s.Sent))
	ch <- prometheus.MustNewConstMetric(c.descReceived, prometheus.CounterValue, float64(s.Received))
	ch <- prometheus.MustNewConstMetric(c.descLost, prometheus.CounterValue, float64(s.Lost))

	// no round-trip times until the first reply
	if s.HasRTT {
		ch <- prometheus.MustNewConstMetric(c.descMin, prometheus.GaugeValue, s.Min.Seconds())
		ch <- prometheus.MustNewConstMetric(c.descAvg, prometheus.GaugeValue, s.Avg.Seconds())
		ch <- prometheus.MustNewConstMetric(c.descMax, prometheus.GaugeValue, s.Max.Seconds())
	}

	c.rtt.Collect(ch)
}
