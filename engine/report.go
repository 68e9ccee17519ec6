package engine

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/thetooth/pingctl/check"
	"github.com/thetooth/pingctl/statistics"
)

// WriteHeader prints the line announcing the session. name is omitted when it
// is the address itself.
func WriteHeader(w io.Writer, name string, dst net.IP, size int) {
	if name == "" || name == dst.String() {
		fmt.Fprintf(w, "Pinging %v with %d bytes of data:\n", dst, size)
		return
	}
	fmt.Fprintf(w, "Pinging %s [%v] with %d bytes of data:\n", name, dst, size)
}

// WriteOutcome prints the report line of one exchange.
func WriteOutcome(w io.Writer, o check.Outcome) {
	switch o.Kind {
	case check.Replied:
		line := fmt.Sprintf("Reply from %v: bytes=%d time%s", o.From, o.Bytes, replyTime(o.RTT))
		if o.TTL > 0 {
			line += fmt.Sprintf(" TTL=%d", o.TTL)
		}
		fmt.Fprintln(w, line)
	case check.TimedOut:
		fmt.Fprintln(w, "Request timed out.")
	default:
		var icmpErr *check.ICMPError
		if errors.As(o.Err, &icmpErr) {
			fmt.Fprintf(w, "Reply from %v: %v\n", icmpErr.From, icmpErr)
			return
		}
		fmt.Fprintf(w, "Request failed: %v\n", o.Err)
	}
}

// WriteStatistics prints the statistics block for dst.
func WriteStatistics(w io.Writer, dst net.IP, s statistics.Summary) {
	fmt.Fprintf(w, "\nPing statistics for %v:\n", dst)
	fmt.Fprintf(w, "    Packets: Sent = %d, Received = %d, Lost = %d (%d%% loss),\n",
		s.Sent, s.Received, s.Lost, int(s.LossPercent))

	fmt.Fprintln(w, "Approximate round trip times in milli-seconds:")
	if !s.HasRTT {
		fmt.Fprintln(w, "    Minimum = N/A, Maximum = N/A, Average = N/A")
		return
	}
	fmt.Fprintf(w, "    Minimum = %dms, Maximum = %dms, Average = %dms\n",
		s.Min.Milliseconds(), s.Max.Milliseconds(), s.Avg.Milliseconds())
}

func replyTime(rtt time.Duration) string {
	if rtt < time.Millisecond {
		return "<1ms"
	}
	return fmt.Sprintf("=%dms", rtt.Milliseconds())
}
