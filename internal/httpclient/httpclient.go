// Package httpclient builds the one pooled outbound HTTP client every CRM
// call (and every vector-retriever call) shares for the lifetime of the
// process.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Options configures the shared client's pool limits and timeouts.
type Options struct {
	ConnectTimeout      time.Duration
	ResponseTimeout     time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// DefaultOptions matches the pool shape the source process used: connect 3s,
// 10s to wait for response headers (the transport's ResponseHeaderTimeout;
// the overall per-request deadline is enforced by callers via context),
// 200 idle connections, 50 per host kept alive.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:      3 * time.Second,
		ResponseTimeout:     10 * time.Second,
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 50,
	}
}

// New builds the shared client. It is created once during supervisor
// startup, before any tenant builder runs, and closed (via Close) after
// every tenant has stopped.
func New(opts Options) *http.Client {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          opts.MaxIdleConns,
		MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.ResponseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		// Per-request deadlines are enforced via context by callers (the
		// retry envelope and CRM gateway); the client itself has no blanket
		// timeout, but the transport stops waiting for response headers
		// after ResponseTimeout even when the caller's context allows longer.
	}
}

// Close releases idle connections held by client's transport. Safe to call
// once during shutdown after every tenant task has stopped issuing requests.
func Close(client *http.Client) {
	if t, ok := client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// WithTimeout is a small helper used by callers that want a bounded context
// for a single outbound call without threading time.Duration math through
// every call site.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
