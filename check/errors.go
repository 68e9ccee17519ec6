package check

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
)

// ErrDontFragmentUnsupported is returned when the platform cannot set the
// don't-fragment flag on the echo socket.
var ErrDontFragmentUnsupported = errors.New("don't fragment is not supported on this platform")

// SetupError is a failure to create or configure the transport. It recurs on
// every attempt so the caller must not start pinging.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// PlatformError carries the operating system error code alongside its
// explanation.
type PlatformError struct {
	Op   string
	Code syscall.Errno
	Msg  string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: (%d) %s", e.Op, int(e.Code), e.Msg)
}

func (e *PlatformError) Unwrap() error { return e.Code }

// platformError converts err into a *PlatformError when an errno can be
// found in its chain, and returns it unchanged otherwise.
func platformError(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &PlatformError{Op: op, Code: errno, Msg: ExplainPlatformError(errno)}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ICMPError is an ICMP error message a router or the destination sent back
// in response to one of our requests.
type ICMPError struct {
	From net.IP
	Type ipv4.ICMPType
	Code int
}

func (e *ICMPError) Error() string {
	switch e.Type {
	case ipv4.ICMPTypeTimeExceeded:
		if e.Code == 1 {
			return "TTL expired during reassembly."
		}
		return "TTL expired in transit."
	case ipv4.ICMPTypeDestinationUnreachable:
		switch e.Code {
		case 0:
			return "Destination net unreachable."
		case 1:
			return "Destination host unreachable."
		case 2:
			return "Destination protocol unreachable."
		case 3:
			return "Destination port unreachable."
		case 4:
			return "Packet needs to be fragmented but DF set."
		case 9, 10, 13:
			return "Communication administratively prohibited."
		}
		return fmt.Sprintf("Destination unreachable (code %d).", e.Code)
	case ipv4.ICMPTypeParameterProblem:
		return "Bad parameter."
	}
	return fmt.Sprintf("ICMP %v code %d.", e.Type, e.Code)
}
