package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone forwards requests untouched
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip before any response
	ChaosConnectionReset

	// ChaosPartialRead returns the real response but fails mid-body
	ChaosPartialRead

	// ChaosEmptyBody answers 200 with no body
	ChaosEmptyBody

	// ChaosOversizedBody answers with a body larger than the client accepts
	ChaosOversizedBody

	// ChaosHTMLBody answers with an HTML error page instead of JSON
	ChaosHTMLBody

	// ChaosIntermittent randomly applies one of the failure modes
	ChaosIntermittent
)

// ChaosConfig configures the chaos transport behavior
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// FailureRate is the probability of failure in ChaosIntermittent mode
	FailureRate float64

	// Seed makes ChaosIntermittent reproducible. Zero uses the current time.
	Seed int64

	// OversizedBytes is the body size for ChaosOversizedBody
	OversizedBytes int
}

// ChaosTransport is an http.RoundTripper that injects failures in front of a
// real transport.
type ChaosTransport struct {
	base     http.RoundTripper
	config   ChaosConfig
	requests uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewChaosTransport wraps base, or http.DefaultTransport when base is nil.
func NewChaosTransport(base http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ChaosTransport{
		base:   base,
		config: config,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Client returns an http.Client using the transport
func (c *ChaosTransport) Client() *http.Client {
	return &http.Client{Transport: c, Timeout: 10 * time.Second}
}

// Requests returns the number of round trips attempted
func (c *ChaosTransport) Requests() uint64 {
	return atomic.LoadUint64(&c.requests)
}

// RoundTrip implements http.RoundTripper
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddUint64(&c.requests, 1)

	switch c.pickMode() {
	case ChaosConnectionReset:
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, errors.New("connection reset by peer")

	case ChaosPartialRead:
		resp, err := c.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		resp.Body = &partialReadCloser{reader: bytes.NewReader(body[:len(body)/2])}
		return resp, nil

	case ChaosEmptyBody:
		return c.synthetic(req, http.StatusOK, nil), nil

	case ChaosOversizedBody:
		size := c.config.OversizedBytes
		if size <= 0 {
			size = 20 * 1024 * 1024
		}
		return c.synthetic(req, http.StatusOK, bytes.Repeat([]byte("A"), size)), nil

	case ChaosHTMLBody:
		page := "<html><body><h1>502 Bad Gateway</h1></body></html>"
		return c.synthetic(req, http.StatusBadGateway, []byte(page)), nil

	default:
		return c.base.RoundTrip(req)
	}
}

func (c *ChaosTransport) pickMode() ChaosMode {
	if c.config.Mode != ChaosIntermittent {
		return c.config.Mode
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd.Float64() >= c.config.FailureRate {
		return ChaosNone
	}
	modes := []ChaosMode{ChaosConnectionReset, ChaosPartialRead, ChaosEmptyBody, ChaosHTMLBody}
	return modes[c.rnd.Intn(len(modes))]
}

func (c *ChaosTransport) synthetic(req *http.Request, status int, body []byte) *http.Response {
	if req.Body != nil {
		req.Body.Close()
	}
	header := make(http.Header)
	header.Set("Content-Type", "text/html")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
		Header:        header,
	}
}

// partialReadCloser returns its data and then fails instead of reporting EOF
type partialReadCloser struct {
	reader io.Reader
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, errors.New("connection reset during read")
	}
	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// ContainsSecret reports whether s leaks any of the given secrets
func ContainsSecret(s string, secrets ...string) bool {
	for _, secret := range secrets {
		if secret != "" && strings.Contains(s, secret) {
			return true
		}
	}
	return false
}
