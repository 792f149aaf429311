// Package http provides the outbound HTTP plumbing shared by provider clients.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates a client for external API calls.
//
// Settings:
//   - Proxy: honours HTTP_PROXY and friends
//   - Dialer.Timeout: TCP connect timeout, shorter than the default
//   - MaxIdleConns / IdleConnTimeout: connection reuse across paginated calls
//   - TLSHandshakeTimeout: upper bound on the HTTPS handshake
//   - Client.Timeout: whole-request timeout supplied by the caller
//
// http.DefaultClient has no timeout, so providers always use this client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
