package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Resolver is the subset of *net.Resolver used to look up hosts.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// ResolveError is a failure to turn a host name into an IPv4 address.
type ResolveError struct {
	Host string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not find host %s: %v", e.Host, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolve returns the IPv4 address of host, which may be a name or an address
// literal.
func Resolve(ctx context.Context, r Resolver, host string) (net.IP, error) {
	if host == "" {
		return nil, &ResolveError{Host: host, Err: errors.New("empty host")}
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, &ResolveError{Host: host, Err: errors.New("IPv6 is not supported")}
	}

	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, &ResolveError{Host: host, Err: err}
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, &ResolveError{Host: host, Err: errors.New("no IPv4 address found")}
}

// ReverseLookup returns the host name of ip, or the address itself when it
// has none.
func ReverseLookup(ctx context.Context, r Resolver, ip net.IP) string {
	names, err := r.LookupAddr(ctx, ip.String())
	if err != nil || len(names) == 0 {
		return ip.String()
	}
	return strings.TrimSuffix(names[0], ".")
}
