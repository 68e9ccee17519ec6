package util

import (
	"errors"
	"fmt"
	"net"
)

// SourceAddress turns the -S argument into a local IPv4 address. The argument
// may be an address or the name of an interface to take the address from.
func SourceAddress(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	if ip := net.ParseIP(src); ip != nil {
		if ip.To4() == nil {
			return "", fmt.Errorf("source %s is not an IPv4 address", src)
		}
		return ip.String(), nil
	}
	return BindIface(src)
}

// BindIface returns the first IPv4 address of the named interface.
func BindIface(ifaceName string) (addr string, err error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return
	}
	if !IsUp(iface) {
		err = errors.New("Interface is down")
		return
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return
	}
	addr, err = firstIPv4(addrs)
	return
}

func firstIPv4(addrs []net.Addr) (addr string, err error) {
	for _, a := range addrs {
		ip, _, err := net.ParseCIDR(a.String())
		if err != nil {
			continue
		}
		if ip.To4() == nil {
			continue
		}
		addr = ip.String()
		break
	}
	if addr == "" {
		err = errors.New("Interface has no IPv4 addresses")
	}

	return
}

func IsIPv6(address string) bool {
	ip := net.ParseIP(address)
	return ip != nil && ip.To4() == nil
}

func IsUp(nif *net.Interface) bool { return nif.Flags&net.FlagUp != 0 }
