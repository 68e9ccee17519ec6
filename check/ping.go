package check

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Options configure the ICMP transport.
type Options struct {
	// Source is the local IPv4 address to send from. Empty means any.
	Source string

	// Privileged selects a raw ICMP socket instead of an unprivileged
	// datagram ICMP socket.
	// NOTE: raw sockets require super-user privileges or CAP_NET_RAW.
	Privileged bool
}

// Pinger is an ICMPv4 echo transport. It is not safe for concurrent use; one
// exchange is in flight at a time.
type Pinger struct {
	conn  net.PacketConn
	pconn *ipv4.PacketConn

	privileged bool
	id         int
	sequence   int

	// tracker identifies our requests in payloads that are large enough to
	// carry it, since datagram sockets rewrite the echo identifier.
	tracker uuid.UUID

	ttl       int
	df        bool
	dfApplied bool

	buf []byte
}

var _ Transport = (*Pinger)(nil)
var _ Preparer = (*Pinger)(nil)

// Open creates the ICMP socket. Failures are returned as *SetupError.
func Open(opts Options) (*Pinger, error) {
	r := rand.New(rand.NewSource(getSeed()))
	p := &Pinger{
		privileged: opts.Privileged,
		id:         r.Intn(math.MaxUint16),
		tracker:    uuid.New(),
		buf:        make([]byte, maxReplyLength),
	}

	conn, err := listen(opts.Source, opts.Privileged)
	if err != nil {
		return nil, &SetupError{Op: "open an ICMP socket", Err: platformError("listen", err)}
	}
	p.conn = conn
	p.pconn = ipv4.NewPacketConn(conn)

	if err := p.pconn.SetControlMessage(ipv4.FlagTTL, true); err != nil {
		p.pconn.Close()
		return nil, &SetupError{Op: "enable reply TTL reporting", Err: platformError("setsockopt", err)}
	}

	logrus.Debugf("Opened ICMP socket on %v (privileged=%v, id=%d, tracker=%v)",
		conn.LocalAddr(), p.privileged, p.id, p.tracker)

	return p, nil
}

// Prepare applies the TTL and don't-fragment options ahead of the first
// exchange so that unsupported settings fail before any request is sent.
func (p *Pinger) Prepare(req Request) error {
	if err := p.apply(req.TTL, req.DontFragment); err != nil {
		return &SetupError{Op: "configure the ICMP socket", Err: err}
	}
	return nil
}

// SendEcho sends one echo request and waits for the matching reply until
// req.Timeout elapses. A timeout or an ICMP error from a router is reported
// through the Outcome; socket failures are returned as errors.
func (p *Pinger) SendEcho(req Request) (Outcome, error) {
	dst := req.Destination.To4()
	if dst == nil {
		return Outcome{}, fmt.Errorf("%v is not an IPv4 address", req.Destination)
	}
	if err := p.apply(req.TTL, req.DontFragment); err != nil {
		return Outcome{}, err
	}

	seq := p.sequence
	p.sequence = (p.sequence + 1) & 0xffff

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: stampTracker(req.Payload, p.tracker),
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	if err := p.pconn.SetReadDeadline(start.Add(req.Timeout)); err != nil {
		return Outcome{}, platformError("set read deadline", err)
	}
	if err := p.write(msgBytes, p.destination(dst)); err != nil {
		return Outcome{}, err
	}

	for {
		n, cm, src, err := p.pconn.ReadFrom(p.buf)
		if err != nil {
			var neterr net.Error
			if errors.As(err, &neterr) && neterr.Timeout() {
				return Timeout(), nil
			}
			return Outcome{}, platformError("receive echo reply", err)
		}
		receivedAt := time.Now()

		o, ok := p.match(p.buf[:n], src, dst, seq, len(req.Payload))
		if !ok {
			continue
		}
		if o.Kind == Replied {
			o.RTT = receivedAt.Sub(start)
			if cm != nil {
				o.TTL = cm.TTL
			}
		}
		return o, nil
	}
}

func (p *Pinger) Close() error {
	logrus.Debug("Closing ICMP socket")
	return p.pconn.Close()
}

func (p *Pinger) apply(ttl uint8, df bool) error {
	if int(ttl) != p.ttl {
		if err := p.pconn.SetTTL(int(ttl)); err != nil {
			return platformError("set TTL", err)
		}
		p.ttl = int(ttl)
	}

	if !p.dfApplied || df != p.df {
		if err := setDontFragment(p.conn, df); err != nil {
			if errors.Is(err, ErrDontFragmentUnsupported) {
				return err
			}
			return platformError("set don't fragment", err)
		}
		p.df = df
		p.dfApplied = true
	}

	return nil
}

func (p *Pinger) destination(ip net.IP) net.Addr {
	if p.privileged {
		return &net.IPAddr{IP: ip}
	}
	return &net.UDPAddr{IP: ip}
}

func (p *Pinger) write(b []byte, dst net.Addr) (err error) {
	// Retry a few times on ENOBUFS, never infinitely
	for tries := 6; tries > 0; tries-- {
		if _, err = p.pconn.WriteTo(b, nil, dst); err == nil {
			return nil
		}
		if !errors.Is(err, syscall.ENOBUFS) {
			break
		}
	}
	return platformError("send echo request", err)
}

// match decides whether b answers the request with sequence seq.
func (p *Pinger) match(b []byte, src net.Addr, dst net.IP, seq, sent int) (Outcome, bool) {
	m, err := icmp.ParseMessage(protocolICMP, b)
	if err != nil {
		logrus.Debug("Discarding unparsable ICMP message: ", err)
		return Outcome{}, false
	}
	from := addrIP(src)

	var quoted []byte
	switch body := m.Body.(type) {
	case *icmp.Echo:
		if m.Type != ipv4.ICMPTypeEchoReply || body.Seq != seq {
			return Outcome{}, false
		}
		// Datagram sockets replace the identifier with their own
		if p.privileged && body.ID != p.id {
			return Outcome{}, false
		}
		if !hasTracker(body.Data, p.tracker, sent) {
			return Outcome{}, false
		}
		return Reply(from, 0, 0, len(body.Data)), true
	case *icmp.TimeExceeded:
		quoted = body.Data
	case *icmp.DstUnreach:
		quoted = body.Data
	case *icmp.ParamProb:
		quoted = body.Data
	default:
		return Outcome{}, false
	}

	q, err := decodeQuotedEcho(quoted)
	if err != nil {
		logrus.Debug("Discarding ICMP error message: ", err)
		return Outcome{}, false
	}
	if q.Seq != seq || !q.Dst.Equal(dst) || (p.privileged && q.ID != p.id) {
		return Outcome{}, false
	}

	t, _ := m.Type.(ipv4.ICMPType)
	return Failure(&ICMPError{From: from, Type: t, Code: m.Code}), true
}

func addrIP(a net.Addr) net.IP {
	switch addr := a.(type) {
	case *net.IPAddr:
		return addr.IP
	case *net.UDPAddr:
		return addr.IP
	}
	return nil
}

var seed int64 = time.Now().UnixNano()

// getSeed returns a goroutine-safe unique seed
func getSeed() int64 {
	return atomic.AddInt64(&seed, 1)
}
