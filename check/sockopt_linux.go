//go:build linux

package check

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func listen(source string, privileged bool) (net.PacketConn, error) {
	if privileged {
		return net.ListenPacket("ip4:icmp", source)
	}
	return listenDatagram(source)
}

// listenDatagram opens an unprivileged ICMP socket, permitted for the groups
// in net.ipv4.ping_group_range.
func listenDatagram(source string) (net.PacketConn, error) {
	sa := &unix.SockaddrInet4{}
	if source != "" {
		ip := net.ParseIP(source).To4()
		if ip == nil {
			return nil, fmt.Errorf("source %q is not an IPv4 address", source)
		}
		copy(sa.Addr[:], ip)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.IPPROTO_ICMP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}

	f := os.NewFile(uintptr(fd), "icmp")
	defer f.Close()
	return net.FilePacketConn(f)
}

func setDontFragment(c net.PacketConn, df bool) error {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return ErrDontFragmentUnsupported
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	mode := unix.IP_PMTUDISC_DONT
	if df {
		mode = unix.IP_PMTUDISC_DO
	}

	var serr error
	err = rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_MTU_DISCOVER, mode)
	})
	if err != nil {
		return err
	}
	return os.NewSyscallError("setsockopt", serr)
}

// ExplainPlatformError returns the symbolic name and description of an OS
// error code, e.g. "EPERM: operation not permitted".
func ExplainPlatformError(code syscall.Errno) string {
	name := unix.ErrnoName(code)
	if name == "" {
		return code.Error()
	}
	return name + ": " + code.Error()
}
