// Package tlsconfig builds the HTTP client used to fetch remote TLV input.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a whole fetch, including reading the body.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxRedirects is the number of redirects followed per fetch.
	DefaultMaxRedirects = 5

	// DefaultMaxInputSize caps a fetched body at 1 GiB.
	DefaultMaxInputSize = 1 << 30
)

// Config holds the options for fetching https:// inputs.
type Config struct {
	// Insecure allows http:// inputs, including redirects to them, and
	// disables certificate verification.
	Insecure bool

	// CACertFile is a PEM file of trusted CA certificates. Empty means the
	// system pool.
	CACertFile string

	// MaxInputSize caps the bytes read from a response body. Reading past
	// it fails with *http.MaxBytesError. Zero means DefaultMaxInputSize.
	MaxInputSize int64

	// MaxRedirects is the number of redirects followed. Zero means
	// DefaultMaxRedirects; negative disables redirects.
	MaxRedirects int

	// Timeout bounds a whole fetch. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewHTTPClient returns a client that fetches inputs according to cfg.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	tlsCfg, err := cfg.tlsConfig()
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	return &http.Client{
		Transport:     &limitTransport{next: transport, max: orDefault(cfg.MaxInputSize, DefaultMaxInputSize)},
		CheckRedirect: cfg.checkRedirect,
		Timeout:       orDefault(cfg.Timeout, DefaultTimeout),
	}, nil
}

// ValidateURL rejects http:// inputs unless c.Insecure is set.
func (c Config) ValidateURL(url string) error {
	if strings.HasPrefix(url, "http://") && !c.Insecure {
		return fmt.Errorf("input %q uses plain http://; use https:// or pass --insecure", url)
	}
	return nil
}

func (c Config) tlsConfig() (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: c.Insecure}
	if c.CACertFile == "" {
		return tlsCfg, nil
	}

	pem, err := os.ReadFile(c.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate file %q: %w", c.CACertFile, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate file %q: no valid certificates found", c.CACertFile)
	}
	tlsCfg.RootCAs = pool
	return tlsCfg, nil
}

// checkRedirect caps the redirect chain and applies ValidateURL to every
// hop, so an https:// input cannot be sent to plain http://.
func (c Config) checkRedirect(req *http.Request, via []*http.Request) error {
	limit := orDefault(c.MaxRedirects, DefaultMaxRedirects)
	if len(via) > limit {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	return c.ValidateURL(req.URL.String())
}

// limitTransport rejects responses that announce a body over max and
// caps the bytes read from the rest.
type limitTransport struct {
	next http.RoundTripper
	max  int64
}

func (l *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := l.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.ContentLength > l.max {
		resp.Body.Close()
		return nil, &http.MaxBytesError{Limit: l.max}
	}
	resp.Body = http.MaxBytesReader(nil, resp.Body, l.max)
	return resp, nil
}

func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
