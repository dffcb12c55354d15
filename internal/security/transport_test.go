package security

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

type fakeResolver struct {
	addrs map[string][]string
	err   error
	delay time.Duration
}

func (f *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []net.IPAddr
	for _, s := range f.addrs[host] {
		out = append(out, net.IPAddr{IP: net.ParseIP(s)})
	}
	return out, nil
}

func TestGuard_IsBlocked(t *testing.T) {
	g := NewGuard(nil)
	tests := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"172.20.0.5":      true,
		"192.168.1.10":    true,
		"169.254.169.254": true,
		"100.64.0.1":      true,
		"::1":             true,
		"fd00::1":         true,
		"fe80::1":         true,
		"8.8.8.8":         false,
		"172.32.0.1":      false,
		"2606:4700::1111": false,
	}
	for ip, want := range tests {
		if got := g.isBlocked(net.ParseIP(ip)); got != want {
			t.Errorf("isBlocked(%s) = %v, want %v", ip, got, want)
		}
	}
}

func TestGuard_Resolve(t *testing.T) {
	resolver := &fakeResolver{addrs: map[string][]string{
		"hooks.example.com":  {"93.184.216.34"},
		"rebind.example.com": {"93.184.216.34", "10.0.0.7"},
		"empty.example.com":  {},
	}}
	g := NewGuard(resolver)
	ctx := context.Background()

	if _, err := g.resolve(ctx, "hooks.example.com"); err != nil {
		t.Errorf("public host: unexpected error %v", err)
	}
	if _, err := g.resolve(ctx, "rebind.example.com"); !errors.Is(err, ErrBlockedTarget) {
		t.Errorf("mixed answer: expected ErrBlockedTarget, got %v", err)
	}
	if _, err := g.resolve(ctx, "empty.example.com"); !errors.Is(err, ErrDNS) {
		t.Errorf("empty answer: expected ErrDNS, got %v", err)
	}
	if _, err := g.resolve(ctx, "169.254.169.254"); !errors.Is(err, ErrBlockedTarget) {
		t.Errorf("metadata literal: expected ErrBlockedTarget, got %v", err)
	}
}

func TestGuard_ResolveTimeout(t *testing.T) {
	g := NewGuard(&fakeResolver{delay: 2 * time.Second})

	start := time.Now()
	_, err := g.resolve(context.Background(), "slow.example.com")
	if !errors.Is(err, ErrDNS) {
		t.Fatalf("expected ErrDNS, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("resolution was not bounded by the DNS timeout")
	}
}

func TestGuard_ClientRefusesLoopback(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	client := NewGuard(nil).NewHTTPClient(time.Second, 3)
	_, err := client.Get(srv.URL)
	if !errors.Is(err, ErrBlockedTarget) {
		t.Fatalf("expected ErrBlockedTarget, got %v", err)
	}
	if hit {
		t.Error("request reached the loopback server")
	}
}

func TestGuard_ClientAllowsPermittedTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	g := NewGuard(nil)
	g.blocked = mustParseCIDRs([]string{"10.0.0.0/8"})

	resp, err := g.NewHTTPClient(time.Second, 3).Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGuard_CheckRedirect(t *testing.T) {
	g := NewGuard(&fakeResolver{addrs: map[string][]string{
		"cdn.example.com":      {"93.184.216.34"},
		"internal.example.com": {"192.168.0.4"},
	}})
	check := g.CheckRedirect(2)

	newReq := func(raw string) *http.Request {
		u, _ := url.Parse(raw)
		return (&http.Request{URL: u}).WithContext(context.Background())
	}
	one := []*http.Request{newReq("https://hooks.example.com")}

	if err := check(newReq("https://cdn.example.com/x"), one); err != nil {
		t.Errorf("public redirect: unexpected error %v", err)
	}
	if err := check(newReq("https://internal.example.com/x"), one); !errors.Is(err, ErrBlockedTarget) {
		t.Errorf("private redirect: expected ErrBlockedTarget, got %v", err)
	}
	if err := check(newReq("http://169.254.169.254/latest/meta-data"), one); !errors.Is(err, ErrBlockedTarget) {
		t.Errorf("metadata redirect: expected ErrBlockedTarget, got %v", err)
	}
	two := append(one, newReq("https://cdn.example.com"))
	if err := check(newReq("https://cdn.example.com/y"), two); !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("expected ErrTooManyRedirects, got %v", err)
	}
}
