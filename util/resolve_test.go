package util_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/thetooth/pingctl/util"
)

type fakeResolver struct {
	ips   map[string][]net.IP
	names map[string][]string
}

func (f *fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	if network != "ip4" {
		return nil, errors.New("unexpected network " + network)
	}
	ips, ok := f.ips[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return ips, nil
}

func (f *fakeResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	names, ok := f.names[addr]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: addr, IsNotFound: true}
	}
	return names, nil
}

func newFake() *fakeResolver {
	return &fakeResolver{
		ips: map[string][]net.IP{
			"example.com": {net.ParseIP("2001:db8::1"), net.ParseIP("192.0.2.10")},
			"v6only.test": {net.ParseIP("2001:db8::2")},
		},
		names: map[string][]string{
			"192.0.2.10": {"example.com."},
		},
	}
}

func TestResolve(t *testing.T) {
	r := newFake()
	ctx := context.Background()

	tests := []struct {
		host string
		want string
	}{
		{"example.com", "192.0.2.10"},
		{"198.51.100.7", "198.51.100.7"},
	}
	for _, tt := range tests {
		ip, err := util.Resolve(ctx, r, tt.host)
		if err != nil {
			t.Errorf("%s: %v", tt.host, err)
			continue
		}
		if ip.String() != tt.want || len(ip) != net.IPv4len {
			t.Errorf("%s: got %v, want %s", tt.host, ip, tt.want)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	r := newFake()
	ctx := context.Background()

	for _, host := range []string{"", "missing.test", "v6only.test", "2001:db8::1"} {
		_, err := util.Resolve(ctx, r, host)
		var resolveErr *util.ResolveError
		if !errors.As(err, &resolveErr) {
			t.Errorf("%q: expected a ResolveError, got %v", host, err)
			continue
		}
		if resolveErr.Host != host {
			t.Errorf("%q: unexpected host %q", host, resolveErr.Host)
		}
	}

	_, err := util.Resolve(ctx, r, "missing.test")
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound {
		t.Errorf("Expected the lookup error to be wrapped, got %v", err)
	}
}

func TestReverseLookup(t *testing.T) {
	r := newFake()
	ctx := context.Background()

	if got := util.ReverseLookup(ctx, r, net.ParseIP("192.0.2.10")); got != "example.com" {
		t.Errorf("Unexpected name %q", got)
	}
	if got := util.ReverseLookup(ctx, r, net.ParseIP("192.0.2.99")); got != "192.0.2.99" {
		t.Errorf("Expected the address when there is no name, got %q", got)
	}
}
