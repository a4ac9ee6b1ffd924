package adversarial_tests

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

func nestedArray(depth int) string {
	return strings.Repeat("[", depth) + strings.Repeat("]", depth)
}

// TestHostileResponseBodies feeds bodies Instagram should never send and
// checks that each one yields a typed error rather than a panic or a success
func TestHostileResponseBodies(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"meta code as string", http.StatusOK, `{"meta":{"code":"200"},"data":{}}`},
		{"meta is an array", http.StatusOK, `{"meta":[200],"data":{}}`},
		{"error code null", http.StatusBadRequest, `{"code":null,"error_type":"OAuthException"}`},
		{"bare array", http.StatusOK, `[{"meta":{"code":200}}]`},
		{"bare string", http.StatusOK, `"meta"`},
		{"truncated envelope", http.StatusOK, `{"meta":{"code":200},"data":{"id":"1"`},
		{"deeply nested data", http.StatusOK, `{"meta":{"code":200},"data":` + nestedArray(20000) + `}`},
		{"data of the wrong shape", http.StatusOK, `{"meta":{"code":200},"data":"a string"}`},
		{"NUL bytes", http.StatusOK, "\x00\x00\x00"},
		{"UTF-8 BOM", http.StatusOK, "\xef\xbb\xbf{\"meta\":{\"code\":200}}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newServer(t)
			server.SetAPIResponse(http.MethodGet, "users/self", &test_helpers.MockResponse{
				Status: tc.status,
				Body:   tc.body,
			})
			client := createTestClient(t, server, nil)

			result, err := client.GetUser(context.Background(), "")
			if err == nil {
				t.Fatalf("expected an error, got %+v", result)
			}

			var malformed *pkgerrs.MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResponseError, got %T: %v", err, err)
			}
			if malformed.HTTPStatus != tc.status {
				t.Errorf("expected HTTP status %d, got %d", tc.status, malformed.HTTPStatus)
			}
			if len(malformed.Body) > 1024 {
				t.Errorf("body preview not bounded: %d bytes", len(malformed.Body))
			}
		})
	}
}

// TestAmbiguousEnvelope checks that a body with both meta and an error code is
// treated as a success
func TestAmbiguousEnvelope(t *testing.T) {
	server := newServer(t)
	server.SetAPIResponse(http.MethodGet, "users/self", &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   `{"meta":{"code":200},"code":400,"error_type":"Spoofed","data":{"id":"1","username":"real"}}`,
	})
	client := createTestClient(t, server, nil)

	result, err := client.GetUser(context.Background(), "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.Data.Username != "real" {
		t.Errorf("unexpected user %+v", result.Data)
	}
	if client.ErrorType() != "" {
		t.Errorf("expected no error type, got %q", client.ErrorType())
	}
}

// TestHostileRateLimitHeaders checks that junk rate limit headers never fail a call
func TestHostileRateLimitHeaders(t *testing.T) {
	values := []string{"-1", "abc", "99999999999999999999999", " 12 ", "1e3", "0x10"}

	for _, value := range values {
		t.Run(value, func(t *testing.T) {
			server := newServer(t)
			server.SetRateLimit(value)
			client := createTestClient(t, server, nil)

			if _, err := client.GetUser(context.Background(), ""); err != nil {
				t.Fatalf("rate limit header %q failed the call: %v", value, err)
			}
		})
	}
}

// TestHostileNextURL checks that pagination only ever follows plain resource
// paths on the configured API host
func TestHostileNextURL(t *testing.T) {
	t.Run("foreign host", func(t *testing.T) {
		server := newServer(t)
		client := createTestClient(t, server, nil)

		page := &types.Pagination{NextURL: "https://evil.example/v1/users/self/follows?cursor=abc"}
		if _, err := client.Paginate(context.Background(), page, 10); err != nil {
			t.Fatalf("Paginate failed: %v", err)
		}

		req, ok := server.LastRequest()
		if !ok {
			t.Fatal("expected the request to reach the configured server")
		}
		if req.Path != test_helpers.APIPath+"users/self/follows" {
			t.Errorf("unexpected path %s", req.Path)
		}
	})

	hostile := []string{
		"https://api.instagram.com/v1/../../admin?cursor=1",
		"https://api.instagram.com/v1/users/./self?cursor=1",
		"https://api.instagram.com/v1/users//self?cursor=1",
		"javascript:alert(1)?cursor=1",
		"https://api.instagram.com/v1/users/%2e%2e/self?cursor=1",
	}
	for _, nextURL := range hostile {
		t.Run(nextURL, func(t *testing.T) {
			server := newServer(t)
			client := createTestClient(t, server, nil)

			_, err := client.Paginate(context.Background(), &types.Pagination{NextURL: nextURL}, 10)
			var malformed *pkgerrs.MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("expected MalformedResponseError, got %v", err)
			}
			if log := server.GetRequestLog(); len(log) != 0 {
				t.Errorf("expected no request, got %s", log[0].Path)
			}
		})
	}
}
