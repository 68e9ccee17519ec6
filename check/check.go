package check

import (
	"net"
	"time"
)

// Transport performs one echo exchange at a time. Implementations must honor
// Request.Timeout and be reusable until Close is called.
type Transport interface {
	SendEcho(req Request) (Outcome, error)
	Close() error
}

// Preparer is implemented by transports that can apply and validate the
// request options once, before the first exchange. A Prepare error is a setup
// failure.
type Preparer interface {
	Prepare(req Request) error
}

// Request describes a single echo request.
type Request struct {
	Destination  net.IP
	TTL          uint8
	DontFragment bool
	Payload      []byte
	Timeout      time.Duration
}

// Kind classifies the result of an exchange.
type Kind int

const (
	Replied Kind = iota
	TimedOut
	TransportFailed
)

func (k Kind) String() string {
	switch k {
	case Replied:
		return "replied"
	case TimedOut:
		return "timed out"
	case TransportFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one echo exchange.
type Outcome struct {
	Kind Kind

	// RTT is the round-trip time, set when Kind is Replied.
	RTT time.Duration

	// TTL is the TTL observed on the reply, zero when unavailable.
	TTL int

	// Bytes is the echo payload length of the reply.
	Bytes int

	// From is the address that answered, either the destination or a router
	// reporting an error.
	From net.IP

	// Err is set when Kind is TransportFailed.
	Err error
}

func Reply(from net.IP, rtt time.Duration, ttl, nbytes int) Outcome {
	return Outcome{Kind: Replied, From: from, RTT: rtt, TTL: ttl, Bytes: nbytes}
}

func Timeout() Outcome {
	return Outcome{Kind: TimedOut}
}

func Failure(err error) Outcome {
	o := Outcome{Kind: TransportFailed, Err: err}
	if icmpErr, ok := err.(*ICMPError); ok {
		o.From = icmpErr.From
	}
	return o
}
