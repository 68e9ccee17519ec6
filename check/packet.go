package check

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"golang.org/x/net/ipv4"
)

const (
	protocolICMP = 1

	trackerLength  = len(uuid.UUID{})
	echoHeaderLen  = 8
	maxReplyLength = ipv4.HeaderLen + echoHeaderLen + 65535
)

var errShortQuote = errors.New("quoted datagram too short")

// BuildPayload returns size bytes of the repeating alphabet pattern.
func BuildPayload(size int) []byte {
	data := make([]byte, size)
	for n := range data {
		data[n] = 'A' + byte(n%26)
	}
	return data
}

// stampTracker returns a copy of payload with tracker written over its first
// bytes, so replies can be told apart from other pingers on the host.
// Payloads too short to hold a tracker are returned unchanged.
func stampTracker(payload []byte, tracker uuid.UUID) []byte {
	if len(payload) < trackerLength {
		return payload
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	copy(data, tracker[:])
	return data
}

// hasTracker reports whether data carries tracker at its start. Payloads too
// short to hold one always match.
func hasTracker(data []byte, tracker uuid.UUID, sent int) bool {
	if sent < trackerLength {
		return true
	}
	if len(data) < trackerLength {
		return false
	}
	return bytes.Equal(data[:trackerLength], tracker[:])
}

// quotedEcho is the part of our own echo request that an ICMP error message
// quotes back to us.
type quotedEcho struct {
	Dst net.IP
	ID  int
	Seq int
}

// decodeQuotedEcho parses the IPv4 header and echo header embedded in the
// body of an ICMP error message.
func decodeQuotedEcho(b []byte) (*quotedEcho, error) {
	h, err := ipv4.ParseHeader(b)
	if err != nil {
		return nil, fmt.Errorf("parsing quoted header: %w", err)
	}
	if h.Protocol != protocolICMP {
		return nil, fmt.Errorf("quoted datagram is protocol %d, not ICMP", h.Protocol)
	}
	if len(b) < h.Len+echoHeaderLen {
		return nil, errShortQuote
	}

	echo := b[h.Len : h.Len+echoHeaderLen]
	if ipv4.ICMPType(echo[0]) != ipv4.ICMPTypeEcho {
		return nil, fmt.Errorf("quoted message is %v, not an echo request", ipv4.ICMPType(echo[0]))
	}

	return &quotedEcho{
		Dst: h.Dst,
		ID:  int(binary.BigEndian.Uint16(echo[4:6])),
		Seq: int(binary.BigEndian.Uint16(echo[6:8])),
	}, nil
}
