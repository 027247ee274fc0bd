package proxy6

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

const dialTimeout = 10 * time.Second

// Transport returns an http.Transport that routes traffic through the proxy.
// HTTP proxies are used via CONNECT, SOCKS proxies via a SOCKS5 dialer.
func (p Proxy) Transport() (*http.Transport, error) {
	addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	base := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}

	switch p.Type {
	case ProtocolSOCKS5:
		var auth *proxy.Auth
		if p.User != "" || p.Password != "" {
			auth = &proxy.Auth{User: p.User, Password: p.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", addr, auth, base)
		if err != nil {
			return nil, fmt.Errorf("failed to create socks5 dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 dialer for %s does not support contexts", addr)
		}
		return &http.Transport{
			DialContext:         cd.DialContext,
			TLSHandshakeTimeout: dialTimeout,
		}, nil

	case ProtocolHTTP, "":
		u := &url.URL{Scheme: "http", Host: addr}
		if p.User != "" || p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		}
		return &http.Transport{
			Proxy:               http.ProxyURL(u),
			DialContext:         base.DialContext,
			TLSHandshakeTimeout: dialTimeout,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported proxy type %q", p.Type)
	}
}

// HTTPClient returns an http.Client whose requests go through the proxy
func (p Proxy) HTTPClient(timeout time.Duration) (*http.Client, error) {
	tr, err := p.Transport()
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

// DialContext opens a TCP connection to addr through a SOCKS proxy
func (p Proxy) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if p.Type != ProtocolSOCKS5 {
		return nil, fmt.Errorf("direct dialing requires a socks proxy, got %q", p.Type)
	}
	tr, err := p.Transport()
	if err != nil {
		return nil, err
	}
	return tr.DialContext(ctx, network, addr)
}
