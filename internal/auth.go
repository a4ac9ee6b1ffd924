package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

const authorizationCodeGrant = "authorization_code"

// Exchanger trades an OAuth authorization code for an access token.
type Exchanger struct {
	client    *http.Client
	creds     *Credentials
	tokenURL  *url.URL
	userAgent string
	logger    *slog.Logger
}

// NewExchanger creates a new exchanger posting to tokenURL.
// If a nil httpClient is provided, NewHTTPClient is used.
func NewExchanger(httpClient *http.Client, creds *Credentials, tokenURL, userAgent string, logger *slog.Logger) (*Exchanger, error) {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if creds == nil {
		return nil, &pkgerrs.ConfigError{Field: "Credentials", Message: "credentials cannot be nil"}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := url.Parse(tokenURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "TokenURL", Message: err.Error()}
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: "TokenURL", Message: errNotAbsolute.Error()}
	}

	return &Exchanger{
		client:    httpClient,
		creds:     creds,
		tokenURL:  parsedURL,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// tokenResponse accepts both the token and the error shape of the token endpoint.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	User         *types.User `json:"user"`
	Code         *int        `json:"code"`
	ErrorType    string      `json:"error_type"`
	ErrorMessage string      `json:"error_message"`
}

// Exchange performs the authorization-code grant. No access token is needed.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*types.OAuthToken, error) {
	if code == "" {
		return nil, &pkgerrs.ArgumentError{Argument: "code", Message: "cannot be empty"}
	}

	secret := e.creds.APISecret()
	if secret == "" {
		return nil, &pkgerrs.ConfigError{Field: "APISecret", Message: "required for the OAuth code exchange"}
	}
	callback := e.creds.APICallback()
	if callback == "" {
		return nil, &pkgerrs.ConfigError{Field: "APICallback", Message: "required for the OAuth code exchange"}
	}

	form := url.Values{}
	form.Set("grant_type", authorizationCodeGrant)
	form.Set("client_id", e.creds.APIKey())
	form.Set("client_secret", secret)
	form.Set("redirect_uri", callback)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &pkgerrs.TransportError{Operation: "token exchange", URL: e.tokenURL.String(), Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.TransportError{Operation: "token exchange", URL: e.tokenURL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &pkgerrs.TransportError{Operation: "token exchange", URL: e.tokenURL.String(), Err: err}
	}
	if len(body) == 0 {
		return nil, &pkgerrs.TransportError{Operation: "token exchange", URL: e.tokenURL.String(), Message: "empty response body"}
	}

	e.logger.Debug("oauth code exchange",
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &pkgerrs.MalformedResponseError{
			Operation:  "token exchange",
			HTTPStatus: resp.StatusCode,
			Body:       preview(body),
			Err:        fmt.Errorf("decode token response: %w", err),
		}
	}

	switch {
	case token.AccessToken != "":
		return &types.OAuthToken{AccessToken: token.AccessToken, User: token.User}, nil
	case token.Code != nil:
		status := types.Status{
			Code:         *token.Code,
			ErrorType:    token.ErrorType,
			ErrorMessage: token.ErrorMessage,
			HTTPStatus:   resp.StatusCode,
		}
		return nil, &pkgerrs.APIError{
			Code:         *token.Code,
			ErrorType:    token.ErrorType,
			ErrorMessage: token.ErrorMessage,
			HTTPStatus:   resp.StatusCode,
			Status:       status,
		}
	default:
		return nil, &pkgerrs.MalformedResponseError{
			Operation:  "token exchange",
			HTTPStatus: resp.StatusCode,
			Message:    "response carries neither an access token nor an error code",
			Body:       preview(body),
		}
	}
}
