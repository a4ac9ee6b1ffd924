package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

const (
	// ConnectTimeout bounds establishing the TCP connection.
	ConnectTimeout = 20 * time.Second
	// TotalTimeout bounds the whole request, body included.
	TotalTimeout = 90 * time.Second

	// DefaultLowRateLimitThreshold is the remaining-call count at or below which
	// a warning is logged.
	DefaultLowRateLimitThreshold = 100
	// lowRateLimitLogInterval spaces repeated low-quota warnings.
	lowRateLimitLogInterval = time.Minute

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

var errNotAbsolute = errors.New("base URL must be absolute")

// Call outcomes reported to the Observer.
const (
	OutcomeSuccess        = "success"
	OutcomeAPIError       = "api_error"
	OutcomeMalformed      = "malformed"
	OutcomeTransportError = "transport_error"
)

// Verb is the closed set of HTTP methods the Instagram API uses.
type Verb int

const (
	VerbGet Verb = iota
	VerbPost
	VerbDelete
)

// String returns the HTTP method name.
func (v Verb) String() string {
	switch v {
	case VerbGet:
		return http.MethodGet
	case VerbPost:
		return http.MethodPost
	case VerbDelete:
		return http.MethodDelete
	default:
		return "UNKNOWN"
	}
}

// RequestSpec describes one API call.
type RequestSpec struct {
	ResourcePath string
	Params       Params
	Verb         Verb
}

// Observer receives per-call instrumentation. *metrics.Collector implements it.
type Observer interface {
	ObserveCall(verb, outcome string, elapsed time.Duration)
	SetRateLimitRemaining(remaining int)
}

// Options carries the optional collaborators of a Client.
type Options struct {
	Logger                *slog.Logger
	Observer              Observer
	LowRateLimitThreshold int
}

// Client dispatches authenticated calls to the Instagram API.
//
// Each call returns its own types.Status. The client additionally remembers the
// status of the most recent call for LastStatus; that value is shared between
// goroutines and is only meaningful when calls are serialized.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	creds     *Credentials

	logger       *slog.Logger
	observer     Observer
	lowRateLimit int
	lowQuotaLog  rate.Sometimes

	mu   sync.Mutex
	last types.Status
}

// NewHTTPClient returns an http.Client with the 20 second connect timeout and
// 90 second total timeout used for every call.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: ConnectTimeout}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   TotalTimeout,
		Transport: transport,
	}
}

// NewClient returns a new Instagram API dispatcher.
// If a nil httpClient is provided, NewHTTPClient is used.
func NewClient(httpClient *http.Client, creds *Credentials, baseURL, userAgent string, opts Options) (*Client, error) {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if creds == nil {
		return nil, &pkgerrs.ConfigError{Field: "Credentials", Message: "credentials cannot be nil"}
	}

	parsedURL, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	threshold := opts.LowRateLimitThreshold
	if threshold == 0 {
		threshold = DefaultLowRateLimitThreshold
	}

	return &Client{
		client:       httpClient,
		BaseURL:      parsedURL,
		UserAgent:    userAgent,
		creds:        creds,
		logger:       logger,
		observer:     opts.Observer,
		lowRateLimit: threshold,
		lowQuotaLog:  rate.Sometimes{Interval: lowRateLimitLogInterval},
	}, nil
}

// ParseBaseURL parses an absolute base URL and guarantees a trailing slash.
func ParseBaseURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return parsed, nil
}

// Execute performs one authenticated call and classifies the response.
// It fails with AuthenticationRequiredError, without touching the network,
// when no access token is set.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*types.Response, error) {
	token := c.creds.AccessToken()
	if token == "" {
		return nil, &pkgerrs.AuthenticationRequiredError{Resource: spec.ResourcePath}
	}

	req, err := c.NewRequest(ctx, spec, token)
	if err != nil {
		return nil, err
	}

	return c.Do(req, spec)
}

// NewRequest assembles the HTTP request for a RequestSpec: resource URL, auth fragment,
// parameters placed according to the verb, and the signature when signed
// requests are enabled.
func (c *Client) NewRequest(ctx context.Context, spec RequestSpec, accessToken string) (*http.Request, error) {
	u, err := c.BaseURL.Parse(spec.ResourcePath)
	if err != nil {
		return nil, &pkgerrs.ArgumentError{Argument: "resource", Value: spec.ResourcePath, Message: err.Error()}
	}

	authQuery := AuthQuery(accessToken, c.creds.APIKey())
	query := authQuery

	var body io.Reader
	switch spec.Verb {
	case VerbGet:
		if encoded := spec.Params.Encode(); encoded != "" {
			query += "&" + encoded
		}
	case VerbPost:
		body = strings.NewReader(spec.Params.Encode())
	case VerbDelete:
	default:
		return nil, &pkgerrs.ArgumentError{Argument: "verb", Value: spec.Verb.String(), Message: "must be GET, POST or DELETE"}
	}

	if c.creds.SignedHeader() {
		query += "&sig=" + Sign(c.creds.APISecret(), spec.ResourcePath, authQuery, spec.Params)
	}
	u.RawQuery = query

	req, err := http.NewRequestWithContext(ctx, spec.Verb.String(), u.String(), body)
	if err != nil {
		return nil, &pkgerrs.TransportError{Operation: spec.ResourcePath, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if spec.Verb == VerbPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return req, nil
}

// Do sends a prepared request, records the rate limit and classifies the body.
func (c *Client) Do(req *http.Request, spec RequestSpec) (*types.Response, error) {
	start := time.Now()
	verb := spec.Verb.String()

	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(verb, OutcomeTransportError, start)
		err = redactURLError(err, req.URL)
		c.logger.Debug("instagram call failed", "verb", verb, "resource", spec.ResourcePath, "error", err)
		return nil, &pkgerrs.TransportError{Operation: spec.ResourcePath, URL: RedactURL(req.URL), Err: err}
	}
	defer resp.Body.Close()

	status := types.Status{HTTPStatus: resp.StatusCode}

	headers, err := ParseHeaders(rawHeaderBlock(resp))
	if err != nil {
		c.observe(verb, OutcomeMalformed, start)
		return nil, err
	}
	if remaining, ok := headers.RateLimitRemaining(); ok {
		status.RateLimitRemaining = remaining
		status.RateLimitKnown = true
		c.reportRateLimit(remaining)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(verb, OutcomeTransportError, start)
		return nil, &pkgerrs.TransportError{Operation: spec.ResourcePath, URL: RedactURL(req.URL), Err: err}
	}
	if len(body) == 0 {
		c.observe(verb, OutcomeTransportError, start)
		return nil, &pkgerrs.TransportError{Operation: spec.ResourcePath, URL: RedactURL(req.URL), Message: "empty response body"}
	}

	result, err := Classify(body, &status)
	c.record(status)

	c.logger.Debug("instagram call",
		"verb", verb,
		"resource", spec.ResourcePath,
		"status", resp.StatusCode,
		"code", status.Code,
		"rate_limit_remaining", status.RateLimitRemaining,
		"duration", time.Since(start),
	)

	if err != nil {
		if malformed, ok := err.(*pkgerrs.MalformedResponseError); ok {
			malformed.Operation = spec.ResourcePath
			c.observe(verb, OutcomeMalformed, start)
		} else {
			c.observe(verb, OutcomeAPIError, start)
		}
		return nil, err
	}

	c.observe(verb, OutcomeSuccess, start)
	return result, nil
}

// LastStatus returns the status recorded by the most recent completed call.
func (c *Client) LastStatus() types.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// record stores status as the latest one. A call without a rate-limit header
// keeps the previously known value.
func (c *Client) record(status types.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !status.RateLimitKnown && c.last.RateLimitKnown {
		status.RateLimitRemaining = c.last.RateLimitRemaining
		status.RateLimitKnown = true
	}
	c.last = status
}

func (c *Client) reportRateLimit(remaining int) {
	if c.observer != nil {
		c.observer.SetRateLimitRemaining(remaining)
	}
	if c.lowRateLimit > 0 && remaining <= c.lowRateLimit {
		c.lowQuotaLog.Do(func() {
			c.logger.Warn("instagram rate limit nearly exhausted",
				"remaining", remaining,
				"threshold", c.lowRateLimit,
			)
		})
	}
}

func (c *Client) observe(verb, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveCall(verb, outcome, time.Since(start))
	}
}

// redactURLError masks the request URL that net/http embeds in its errors.
func redactURLError(err error, u *url.URL) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = RedactURL(u)
	}
	return err
}

// RedactURL renders u with credentials and signatures masked, for errors and logs.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	redacted := *u
	query := redacted.Query()
	for _, key := range []string{"access_token", "client_secret", "sig"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	redacted.RawQuery = query.Encode()
	return redacted.String()
}

// FetchJSON performs an unauthenticated GET of rawURL and decodes the JSON body
// into out. It serves endpoints outside the versioned API, such as oEmbed, which
// answer with a bare object instead of a meta envelope.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, out any) (types.Status, error) {
	start := time.Now()
	verb := VerbGet.String()

	req, err := http.NewRequestWithContext(ctx, verb, rawURL, nil)
	if err != nil {
		return types.Status{}, &pkgerrs.ArgumentError{Argument: "url", Value: rawURL, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(verb, OutcomeTransportError, start)
		return types.Status{}, &pkgerrs.TransportError{Operation: req.URL.Path, URL: RedactURL(req.URL), Err: redactURLError(err, req.URL)}
	}
	defer resp.Body.Close()

	status := types.Status{HTTPStatus: resp.StatusCode, Code: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(verb, OutcomeTransportError, start)
		return status, &pkgerrs.TransportError{Operation: req.URL.Path, URL: RedactURL(req.URL), Err: err}
	}
	if len(body) == 0 {
		c.observe(verb, OutcomeTransportError, start)
		return status, &pkgerrs.TransportError{Operation: req.URL.Path, URL: RedactURL(req.URL), Message: "empty response body"}
	}

	c.logger.Debug("instagram fetch",
		"url", RedactURL(req.URL),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &pkgerrs.APIError{Code: resp.StatusCode, HTTPStatus: resp.StatusCode, ErrorMessage: preview(body)}
		var failure errorEnvelope
		if json.Unmarshal(body, &failure) == nil && failure.Code != nil {
			apiErr.Code = *failure.Code
			apiErr.ErrorType = failure.ErrorType
			apiErr.ErrorMessage = failure.ErrorMessage
		}
		status.Code = apiErr.Code
		status.ErrorType = apiErr.ErrorType
		status.ErrorMessage = apiErr.ErrorMessage
		apiErr.Status = status
		c.observe(verb, OutcomeAPIError, start)
		return status, apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.observe(verb, OutcomeMalformed, start)
		return status, &pkgerrs.MalformedResponseError{
			Operation:  req.URL.Path,
			HTTPStatus: resp.StatusCode,
			Body:       preview(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	c.observe(verb, OutcomeSuccess, start)
	return status, nil
}
