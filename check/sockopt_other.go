//go:build !linux

package check

import (
	"errors"
	"net"
	"syscall"
)

func listen(source string, privileged bool) (net.PacketConn, error) {
	if privileged {
		return net.ListenPacket("ip4:icmp", source)
	}
	return nil, errors.New("unprivileged ICMP sockets are only available on linux, run with --privileged")
}

func setDontFragment(c net.PacketConn, df bool) error {
	if df {
		return ErrDontFragmentUnsupported
	}
	return nil
}

// ExplainPlatformError returns the description of an OS error code.
func ExplainPlatformError(code syscall.Errno) string {
	return code.Error()
}
