package adversarial_tests

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	instagram "github.com/jamesprial/go-instagram-api-wrapper"
	"github.com/jamesprial/go-instagram-api-wrapper/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

func expectArgumentError(t *testing.T, label string, err error) {
	t.Helper()
	var argErr *pkgerrs.ArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("%s: expected ArgumentError, got %T: %v", label, err, err)
	}
}

// TestPathSegmentInjection checks that hostile IDs are refused before any
// request is built
func TestPathSegmentInjection(t *testing.T) {
	server := newServer(t)
	client := createTestClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(1)
	ctx := context.Background()

	for _, value := range fuzzer.FuzzPathSegment() {
		_, err := client.GetMedia(ctx, value)
		expectArgumentError(t, "GetMedia "+value, err)

		_, err = client.GetTag(ctx, value)
		expectArgumentError(t, "GetTag "+value, err)

		_, err = client.GetMediaShort(ctx, value)
		expectArgumentError(t, "GetMediaShort "+value, err)

		_, err = client.DeleteMediaComment(ctx, "1", value)
		expectArgumentError(t, "DeleteMediaComment "+value, err)

		if value != "" {
			_, err = client.GetUser(ctx, value)
			expectArgumentError(t, "GetUser "+value, err)
		}
	}

	if log := server.GetRequestLog(); len(log) != 0 {
		t.Errorf("expected no requests, got %d (first: %s)", len(log), log[0].Path)
	}
}

// TestUserAgentInjection checks that a hostile user agent is refused at construction
func TestUserAgentInjection(t *testing.T) {
	fuzzer := helpers.NewFuzzer(2)

	for _, ua := range fuzzer.FuzzUserAgent() {
		_, err := instagram.NewPublicClient("client-id", &instagram.Config{UserAgent: ua})
		var cfgErr *pkgerrs.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("user agent %q: expected ConfigError, got %v", ua, err)
			continue
		}
		if cfgErr.Field != "UserAgent" {
			t.Errorf("user agent %q: expected field UserAgent, got %s", ua, cfgErr.Field)
		}
	}
}

// TestScopeAndActionAllowLists checks the login scopes and relationship actions
func TestScopeAndActionAllowLists(t *testing.T) {
	server := newServer(t)
	client := createTestClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(3)

	for _, scope := range fuzzer.FuzzScope() {
		_, err := client.LoginURL("basic", scope)
		expectArgumentError(t, "scope "+scope, err)
	}

	for _, action := range fuzzer.FuzzRelationshipAction() {
		_, err := client.ModifyRelationship(context.Background(), action, "123")
		expectArgumentError(t, "action "+action, err)
	}

	if log := server.GetRequestLog(); len(log) != 0 {
		t.Errorf("expected no requests, got %d", len(log))
	}
}

// TestCoordinateBounds checks that impossible coordinates never reach the API
func TestCoordinateBounds(t *testing.T) {
	server := newServer(t)
	client := createTestClient(t, server, nil)
	ctx := context.Background()

	coordinates := [][2]float64{
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
		{90.000001, 0},
		{0, -180.000001},
	}

	for _, c := range coordinates {
		_, err := client.SearchMedia(ctx, c[0], c[1], 0)
		expectArgumentError(t, "SearchMedia", err)

		_, err = client.SearchLocation(ctx, c[0], c[1], "", 0)
		expectArgumentError(t, "SearchLocation", err)
	}

	if log := server.GetRequestLog(); len(log) != 0 {
		t.Errorf("expected no requests, got %d", len(log))
	}
}

// TestParameterSmuggling checks that free text cannot add parameters to a call
func TestParameterSmuggling(t *testing.T) {
	server := newServer(t)
	client := createTestClient(t, server, nil)
	ctx := context.Background()

	text := "nice&action=block&access_token=other"
	if _, err := client.AddMediaComment(ctx, "555", text); err != nil {
		t.Fatalf("AddMediaComment failed: %v", err)
	}

	req, ok := server.LastRequest()
	if !ok {
		t.Fatal("expected a request")
	}
	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if got := req.Form.Get("text"); got != text {
		t.Errorf("expected text %q, got %q", text, got)
	}
	if req.Form.Has("action") {
		t.Error("comment text leaked an action parameter")
	}
	if got := req.Query.Get("access_token"); got != testToken {
		t.Errorf("access token was overridden: %q", got)
	}

	query := "q&hidecaption=false"
	if _, err := client.SearchTags(ctx, query); err != nil {
		t.Fatalf("SearchTags failed: %v", err)
	}
	req, _ = server.LastRequest()
	if got := req.Query.Get("q"); got != query {
		t.Errorf("expected q %q, got %q", query, got)
	}
}

// TestOembedURLEscaping checks that a hostile permalink stays one url parameter
func TestOembedURLEscaping(t *testing.T) {
	server := newServer(t)
	client := createTestClient(t, server, nil)

	permalink := "https://www.instagram.com/p/abc/?taken-by=x&hidecaption=false#frag"
	_, _ = client.GetOembed(context.Background(), permalink)

	req, ok := server.LastRequest()
	if !ok {
		t.Fatal("expected a request")
	}
	if got := req.Query.Get("url"); got != permalink {
		t.Errorf("expected url %q, got %q", permalink, got)
	}
	if got := req.Query["hidecaption"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("expected a single hidecaption=true, got %v", got)
	}
}
