// Package http configures the shared HTTP transport used for catalog API
// calls and fileset downloads.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
)

// NewTransferClient creates an HTTP client tuned for many small-to-medium
// concurrent downloads against the catalog's storage endpoints.
//
// Key features:
//   - Connection pooling sized for the download worker fan-out
//   - HTTP/2 with a runtime toggle (DISABLE_HTTP2 env var)
//   - Proxy settings from the environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY)
//   - No client-wide timeout; each operation sets its own via context
func NewTransferClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy: nethttp.ProxyFromEnvironment,

		// Pool sized for the worker fan-out; idle reuse gives a large
		// speedup when a fileset has many files on the same host.
		MaxIdleConns:        128,
		MaxIdleConnsPerHost: 32,
		MaxConnsPerHost:     32,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		// CAD interchange files are usually not compressible enough to
		// justify the CPU cost.
		DisableCompression: true,
		ForceAttemptHTTP2:  true,
	}

	_ = http2.ConfigureTransport(tr)

	// Runtime toggle, useful when a middlebox mishandles HTTP/2 streams.
	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	return &nethttp.Client{
		Transport: tr,
		Timeout:   0, // per-operation timeouts via context
	}
}
