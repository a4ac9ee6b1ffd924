package instagram

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/metrics"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

const (
	// DefaultBaseURL is the versioned Instagram API base URL
	DefaultBaseURL = "https://api.instagram.com/v1/"
	// DefaultAuthorizeURL is the OAuth authorize endpoint users are redirected to
	DefaultAuthorizeURL = "https://api.instagram.com/oauth/authorize"
	// DefaultTokenURL is the OAuth endpoint exchanging a code for an access token
	DefaultTokenURL = "https://api.instagram.com/oauth/access_token"
	// DefaultOembedURL is the oEmbed endpoint, which needs no access token
	DefaultOembedURL = "https://api.instagram.com/oembed/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-instagram-api-wrapper/0.1"

	// DefaultLimit is the page size used when a caller passes a limit of zero
	DefaultLimit = 100
	// DefaultDistance is the search radius in metres used when a caller passes zero
	DefaultDistance = 1000
)

// Config holds the optional settings of an Instagram client. A nil Config is
// valid and selects every default.
//
// Example:
//
//	config := &instagram.Config{
//		UserAgent: "myapp/1.0",
//		Logger:    slog.Default(),
//	}
type Config struct {
	// BaseURL for the Instagram API.
	// Defaults to DefaultBaseURL. Usually only changed in tests.
	BaseURL string

	// AuthorizeURL, TokenURL and OembedURL override the OAuth and oEmbed endpoints.
	AuthorizeURL string
	TokenURL     string
	OembedURL    string

	// UserAgent string to identify your application.
	UserAgent string

	// HTTPClient to use for requests.
	// Defaults to a client with a 20 second connect timeout and a 90 second
	// total timeout.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger

	// Metrics receives per-call counters and the remaining rate limit.
	// Optional.
	Metrics *metrics.Collector

	// LowRateLimitThreshold is the remaining-call count at or below which a
	// warning is logged, at most once a minute. Zero selects 100; a negative
	// value disables the warning. The limit is never enforced.
	LowRateLimitThreshold int
}

// Credentials are the application credentials registered with Instagram.
type Credentials struct {
	// APIKey is the client ID. Always required.
	APIKey string
	// APISecret is the client secret. Required for user authentication and
	// signed requests.
	APISecret string
	// APICallback is the redirect URI registered for the application.
	APICallback string
}

// dispatcher is the behavior the client needs from the internal transport.
type dispatcher interface {
	Execute(ctx context.Context, spec internal.RequestSpec) (*types.Response, error)
	FetchJSON(ctx context.Context, rawURL string, out any) (types.Status, error)
	LastStatus() types.Status
}

// Client is an Instagram API client for public data and for calls made with an
// access token obtained elsewhere.
//
// Every call returns its own types.Status (on the result, or on the APIError).
// The compatibility accessors RateLimit, Code, ErrorMessage and ErrorType report
// the most recent call and are only meaningful when calls are serialized.
type Client struct {
	client    dispatcher
	creds     *internal.Credentials
	validator *internal.Validator
	config    Config
	logger    *slog.Logger
}

// AuthClient is a Client that also holds the application secret and callback,
// enabling the OAuth login flow and signed requests.
type AuthClient struct {
	*Client
	exchanger *internal.Exchanger
}

// NewPublicClient creates a client that only carries the API key. An access
// token can be supplied later with SetAccessToken.
//
// Returns a *errors.ConfigError if apiKey is empty or the config is invalid.
func NewPublicClient(apiKey string, config *Config) (*Client, error) {
	if apiKey == "" {
		return nil, &pkgerrs.ConfigError{Field: "APIKey", Message: "API key is required"}
	}
	return newClient(internal.NewCredentials(apiKey, "", ""), config)
}

// NewClient creates a client for user-authenticated flows.
//
// Returns a *errors.ConfigError naming the missing field if APIKey, APISecret
// or APICallback is empty, or if the config is invalid.
//
// Example:
//
//	client, err := instagram.NewClient(instagram.Credentials{
//		APIKey:      "client-id",
//		APISecret:   "client-secret",
//		APICallback: "https://example.com/callback",
//	}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(client.LoginURL("basic", "likes"))
func NewClient(creds Credentials, config *Config) (*AuthClient, error) {
	switch {
	case creds.APIKey == "":
		return nil, &pkgerrs.ConfigError{Field: "APIKey", Message: "API key is required"}
	case creds.APISecret == "":
		return nil, &pkgerrs.ConfigError{Field: "APISecret", Message: "API secret is required for user authentication"}
	case creds.APICallback == "":
		return nil, &pkgerrs.ConfigError{Field: "APICallback", Message: "API callback is required for user authentication"}
	}

	store := internal.NewCredentials(creds.APIKey, creds.APISecret, creds.APICallback)
	client, err := newClient(store, config)
	if err != nil {
		return nil, err
	}

	exchanger, err := internal.NewExchanger(client.config.HTTPClient, store, client.config.TokenURL, client.config.UserAgent, client.logger)
	if err != nil {
		return nil, err
	}

	return &AuthClient{Client: client, exchanger: exchanger}, nil
}

func newClient(creds *internal.Credentials, config *Config) (*Client, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}

	// Set defaults
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.OembedURL == "" {
		cfg.OembedURL = DefaultOembedURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = internal.NewHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	validator := internal.NewValidator()
	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}
	for field, raw := range map[string]string{"AuthorizeURL": cfg.AuthorizeURL, "OembedURL": cfg.OembedURL} {
		if _, err := internal.ParseBaseURL(raw); err != nil {
			return nil, &pkgerrs.ConfigError{Field: field, Message: err.Error()}
		}
	}

	opts := internal.Options{
		Logger:                cfg.Logger,
		LowRateLimitThreshold: cfg.LowRateLimitThreshold,
	}
	if cfg.Metrics != nil {
		opts.Observer = cfg.Metrics
	}

	httpClient, err := internal.NewClient(cfg.HTTPClient, creds, cfg.BaseURL, cfg.UserAgent, opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    httpClient,
		creds:     creds,
		validator: validator,
		config:    cfg,
		logger:    cfg.Logger,
	}, nil
}

// APIKey returns the client ID.
func (c *Client) APIKey() string {
	return c.creds.APIKey()
}

// SetAPIKey replaces the client ID.
func (c *Client) SetAPIKey(apiKey string) {
	c.creds.SetAPIKey(apiKey)
}

// AccessToken returns the current access token, or "" if none is set.
func (c *Client) AccessToken() string {
	return c.creds.AccessToken()
}

// SetAccessToken sets the token sent with every authenticated call.
func (c *Client) SetAccessToken(token string) {
	c.creds.SetAccessToken(token)
}

// SetOAuthToken sets the access token from a code exchange result.
// A nil token clears the access token.
func (c *Client) SetOAuthToken(token *types.OAuthToken) {
	if token == nil {
		c.creds.SetAccessToken("")
		return
	}
	c.creds.SetAccessToken(token.AccessToken)
}

// LastStatus returns the status of the most recent API call.
func (c *Client) LastStatus() types.Status {
	return c.client.LastStatus()
}

// RateLimit returns the last X-Ratelimit-Remaining value seen, and whether any
// response has carried one yet.
func (c *Client) RateLimit() (int, bool) {
	status := c.client.LastStatus()
	return status.RateLimitRemaining, status.RateLimitKnown
}

// Code returns the meta or error code of the most recent API call.
func (c *Client) Code() int {
	return c.client.LastStatus().Code
}

// ErrorMessage returns the error_message of the most recent API call, or "" if it succeeded.
func (c *Client) ErrorMessage() string {
	return c.client.LastStatus().ErrorMessage
}

// ErrorType returns the error_type of the most recent API call, or "" if it succeeded.
func (c *Client) ErrorType() string {
	return c.client.LastStatus().ErrorType
}

// APISecret returns the client secret.
func (c *AuthClient) APISecret() string {
	return c.creds.APISecret()
}

// SetAPISecret replaces the client secret.
func (c *AuthClient) SetAPISecret(secret string) {
	c.creds.SetAPISecret(secret)
}

// APICallback returns the registered redirect URI.
func (c *AuthClient) APICallback() string {
	return c.creds.APICallback()
}

// SetAPICallback replaces the registered redirect URI.
func (c *AuthClient) SetAPICallback(callback string) {
	c.creds.SetAPICallback(callback)
}

// SetSignedHeader enables or disables enforced signed requests. When enabled,
// every authenticated call carries a sig parameter computed with the secret.
func (c *AuthClient) SetSignedHeader(enabled bool) {
	c.creds.SetSignedHeader(enabled)
}

// LoginURL returns the OAuth authorize URL the user should be sent to.
// Without scopes, only "basic" is requested.
//
// Returns a *errors.ArgumentError if a scope is not one of basic, likes,
// comments, relationships, public_content or follower_list.
func (c *AuthClient) LoginURL(scopes ...string) (string, error) {
	if len(scopes) == 0 {
		scopes = []string{"basic"}
	}
	if err := c.validator.ValidateScopes(scopes); err != nil {
		return "", err
	}

	callback := c.creds.APICallback()
	if callback == "" {
		return "", &pkgerrs.ConfigError{Field: "APICallback", Message: "required to build the login URL"}
	}

	var b strings.Builder
	b.WriteString(c.config.AuthorizeURL)
	b.WriteString("?client_id=")
	b.WriteString(url.QueryEscape(c.creds.APIKey()))
	b.WriteString("&redirect_uri=")
	b.WriteString(url.QueryEscape(callback))
	b.WriteString("&scope=")
	b.WriteString(strings.Join(scopes, "+"))
	b.WriteString("&response_type=code")
	return b.String(), nil
}

// LoginURLWithState is LoginURL with a state value Instagram echoes back on the
// callback, letting the caller reject redirects it did not start.
func (c *AuthClient) LoginURLWithState(state string, scopes ...string) (string, error) {
	if state == "" {
		return "", &pkgerrs.ArgumentError{Argument: "state", Message: "cannot be empty"}
	}
	loginURL, err := c.LoginURL(scopes...)
	if err != nil {
		return "", err
	}
	return loginURL + "&state=" + url.QueryEscape(state), nil
}

// ExchangeCode trades the code Instagram appended to the callback URL for an
// access token. The token is returned, not stored; pass it to SetOAuthToken.
func (c *AuthClient) ExchangeCode(ctx context.Context, code string) (*types.OAuthToken, error) {
	return c.exchanger.Exchange(ctx, code)
}

// ExchangeCodeForToken is ExchangeCode returning only the access token string.
func (c *AuthClient) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	token, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
