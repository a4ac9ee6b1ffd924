package adversarial_tests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	instagram "github.com/jamesprial/go-instagram-api-wrapper"
	"github.com/jamesprial/go-instagram-api-wrapper/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

const (
	testToken  = "1574083.secret-token-value"
	testSecret = "very-secret-client-secret"
)

func createTestClient(t *testing.T, server *test_helpers.MockServer, httpClient *http.Client) *instagram.AuthClient {
	t.Helper()

	client, err := instagram.NewClient(instagram.Credentials{
		APIKey:      "client-id",
		APISecret:   testSecret,
		APICallback: "https://example.com/callback",
	}, &instagram.Config{
		BaseURL:    server.BaseURL(),
		TokenURL:   server.TokenURL(),
		OembedURL:  server.OembedURL(),
		HTTPClient: httpClient,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	client.SetAccessToken(testToken)
	return client
}

func newServer(t *testing.T) *test_helpers.MockServer {
	t.Helper()
	server := test_helpers.NewMockServer()
	t.Cleanup(server.Close)
	server.SetupUser("self", "snoopdogg")
	return server
}

// TestChaosTransportFailures checks that every injected failure surfaces as a
// typed error that never carries the access token or client secret
func TestChaosTransportFailures(t *testing.T) {
	testCases := []struct {
		name    string
		config  helpers.ChaosConfig
		wantErr any
	}{
		{"connection reset", helpers.ChaosConfig{Mode: helpers.ChaosConnectionReset}, &pkgerrs.TransportError{}},
		{"partial read", helpers.ChaosConfig{Mode: helpers.ChaosPartialRead}, &pkgerrs.TransportError{}},
		{"empty body", helpers.ChaosConfig{Mode: helpers.ChaosEmptyBody}, &pkgerrs.TransportError{}},
		{"html error page", helpers.ChaosConfig{Mode: helpers.ChaosHTMLBody}, &pkgerrs.MalformedResponseError{}},
		{"oversized body", helpers.ChaosConfig{Mode: helpers.ChaosOversizedBody, OversizedBytes: 17 * 1024 * 1024}, &pkgerrs.MalformedResponseError{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newServer(t)
			chaos := helpers.NewChaosTransport(nil, tc.config)
			client := createTestClient(t, server, chaos.Client())
			client.SetSignedHeader(true)

			result, err := client.GetUser(context.Background(), "")
			if err == nil {
				t.Fatalf("expected an error, got result %+v", result)
			}

			switch tc.wantErr.(type) {
			case *pkgerrs.TransportError:
				var target *pkgerrs.TransportError
				if !errors.As(err, &target) {
					t.Errorf("expected TransportError, got %T: %v", err, err)
				}
			case *pkgerrs.MalformedResponseError:
				var target *pkgerrs.MalformedResponseError
				if !errors.As(err, &target) {
					t.Errorf("expected MalformedResponseError, got %T: %v", err, err)
				} else if len(target.Body) > 1024 {
					t.Errorf("body preview not bounded: %d bytes", len(target.Body))
				}
			}

			if helpers.ContainsSecret(err.Error(), testToken, testSecret) {
				t.Errorf("error leaks a credential: %v", err)
			}
		})
	}
}

// TestChaosTokenExchange checks that a failed exchange never echoes the form
func TestChaosTokenExchange(t *testing.T) {
	server := newServer(t)
	chaos := helpers.NewChaosTransport(nil, helpers.ChaosConfig{Mode: helpers.ChaosConnectionReset})
	client := createTestClient(t, server, chaos.Client())

	_, err := client.ExchangeCode(context.Background(), "one-time-code")
	var transportErr *pkgerrs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if helpers.ContainsSecret(err.Error(), testSecret, "one-time-code") {
		t.Errorf("error leaks the exchange form: %v", err)
	}
}

// TestChaosIntermittent hammers the client through a flaky transport and
// checks that every outcome is either a success or a typed error
func TestChaosIntermittent(t *testing.T) {
	server := newServer(t)
	chaos := helpers.NewChaosTransport(nil, helpers.ChaosConfig{
		Mode:        helpers.ChaosIntermittent,
		FailureRate: 0.5,
		Seed:        42,
	})
	client := createTestClient(t, server, chaos.Client())

	const calls = 60
	var successes, failures int
	for i := 0; i < calls; i++ {
		result, err := client.GetUser(context.Background(), "")
		if err == nil {
			successes++
			if result.Data.Username != "snoopdogg" {
				t.Errorf("call %d: unexpected user %+v", i, result.Data)
			}
			continue
		}

		failures++
		var transportErr *pkgerrs.TransportError
		var malformedErr *pkgerrs.MalformedResponseError
		if !errors.As(err, &transportErr) && !errors.As(err, &malformedErr) {
			t.Errorf("call %d: untyped error %T: %v", i, err, err)
		}
		if helpers.ContainsSecret(err.Error(), testToken) {
			t.Errorf("call %d: error leaks the access token: %v", i, err)
		}
	}

	if successes == 0 || failures == 0 {
		t.Errorf("expected a mix of outcomes, got %d successes and %d failures", successes, failures)
	}
	if got := chaos.Requests(); got != calls {
		t.Errorf("expected %d round trips, got %d", calls, got)
	}
}

// TestRateLimitSurvivesFailures checks that a failed call does not erase the
// last known rate limit
func TestRateLimitSurvivesFailures(t *testing.T) {
	server := newServer(t)
	server.SetRateLimit("1234")
	client := createTestClient(t, server, nil)

	if _, err := client.GetUser(context.Background(), ""); err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	server.SetRateLimit("")
	server.SetAPIResponse(http.MethodGet, "users/self", &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   "not json",
	})
	if _, err := client.GetUser(context.Background(), ""); err == nil {
		t.Fatal("expected a malformed response error")
	}

	remaining, known := client.RateLimit()
	if !known || remaining != 1234 {
		t.Errorf("expected remaining 1234 to be kept, got %d (known=%v)", remaining, known)
	}
}
