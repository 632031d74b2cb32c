// Package network provides a pre-configured, optimized HTTP client for concurrent catalog and media transfers.
package network

import (
	"net/http"
	"time"
)

// Client is the singleton HTTP client shared across the application for efficient resource utilization.
// It is configured with increased concurrency limits and reasonable timeouts tailored for catalog walks and long downloads.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// DownloadClient is the HTTP client used for media transfers. It carries no
// overall deadline: a full-length download legitimately runs for hours, so
// only per-phase timeouts of the transport apply and cancellation comes
// from the caller's context.
var DownloadClient = &http.Client{
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
