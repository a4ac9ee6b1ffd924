package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func clearInstagramEnv(t *testing.T) {
	t.Helper()
	for name := range envOverrides {
		t.Setenv(name, "")
	}
}

func mockConfig(t *testing.T, server *test_helpers.MockServer, extra string) string {
	t.Helper()
	content := `client_id = "client-id"
access_token = "token.value"
base_url = "` + server.BaseURL() + `"
token_url = "` + server.TokenURL() + `"
oembed_url = "` + server.OembedURL() + `"
` + extra
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	clearInstagramEnv(t)

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr

	err := cmd.Run(context.Background(), append([]string{"instagram"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func newCLIServer(t *testing.T) *test_helpers.MockServer {
	t.Helper()
	server := test_helpers.NewMockServer()
	t.Cleanup(server.Close)
	return server
}

func TestCLI_User(t *testing.T) {
	server := newCLIServer(t)
	server.SetupUser("self", "snoopdogg")
	server.SetRateLimit("4998")
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "user")
	require.NoError(t, res.err)

	var user map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &user))
	assert.Equal(t, "snoopdogg", user["username"])
	assert.Contains(t, res.stderr, "INFO: rate limit (remaining='4998')")

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, test_helpers.APIPath+"users/self", req.Path)
	assert.Equal(t, "token.value", req.Query.Get("access_token"))
}

func TestCLI_AccessTokenFlagOverridesConfig(t *testing.T) {
	server := newCLIServer(t)
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "--access-token", "flag-token", "media", "555")
	require.NoError(t, res.err)

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, test_helpers.APIPath+"media/555", req.Path)
	assert.Equal(t, "flag-token", req.Query.Get("access_token"))
}

func TestCLI_YAMLFormat(t *testing.T) {
	server := newCLIServer(t)
	server.SetAPIResponse(http.MethodGet, "tags/nofilter", &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   test_helpers.SuccessBody(map[string]any{"name": "nofilter", "media_count": 472}, nil),
	})
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "--format", "yaml", "tag", "nofilter")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "name: nofilter")
	assert.Contains(t, res.stdout, "media_count: 472")
}

func TestCLI_FollowersAll(t *testing.T) {
	server := newCLIServer(t)
	server.SetAPIResponse(http.MethodGet, "users/self/followed-by", &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body: test_helpers.SuccessBody([]map[string]any{
			{"id": "1", "username": "one"},
			{"id": "2", "username": "two"},
		}, nil),
	})
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "followers", "--all", "--count", "2")
	require.NoError(t, res.err)

	var users []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &users))
	assert.Len(t, users, 2)

	req, _ := server.LastRequest()
	assert.Equal(t, "2", req.Query.Get("count"))
}

func TestCLI_Comment(t *testing.T) {
	server := newCLIServer(t)
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "comment", "555", "nice shot")
	require.NoError(t, res.err)

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, test_helpers.APIPath+"media/555/comments", req.Path)
	assert.Equal(t, "nice shot", req.Form.Get("text"))
}

func TestCLI_Errors(t *testing.T) {
	server := newCLIServer(t)
	path := mockConfig(t, server, "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown relationship action", []string{"relationship", "block", "123"}, "action"},
		{"missing argument", []string{"media"}, "usage: instagram media <id>"},
		{"login url without secret", []string{"login-url"}, "needs client_secret and callback"},
		{"signed without secret", []string{"--signed", "user"}, "signed requests need client_secret"},
		{"bad format", []string{"--format", "xml", "user"}, "format must be"},
		{"bad log level", []string{"--log-level", "loud", "user"}, "log level must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server.ClearLog()
			res := runCLI(t, append([]string{"--config", path}, tt.args...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.wantErr)
			assert.Empty(t, server.GetRequestLog())
		})
	}
}

func TestCLI_MissingClientID(t *testing.T) {
	res := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "user")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "client_id is required")
}

func TestCLI_EnvFile(t *testing.T) {
	server := newCLIServer(t)
	server.SetupUser("self", "snoopdogg")

	envPath := filepath.Join(t.TempDir(), ".env")
	content := "INSTAGRAM_CLIENT_ID=client-id\nINSTAGRAM_ACCESS_TOKEN=dotenv-token\nINSTAGRAM_BASE_URL=" + server.BaseURL() + "\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	res := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "--env-file", envPath, "user")
	require.NoError(t, res.err)

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "dotenv-token", req.Query.Get("access_token"))
}

func TestCLI_LoginURLAndExchange(t *testing.T) {
	server := newCLIServer(t)
	server.SetupToken("fresh.token")
	path := mockConfig(t, server, `client_secret = "client-secret"
callback = "https://example.com/callback"
`)

	res := runCLI(t, "--config", path, "login-url", "--scope", "basic", "--scope", "likes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "client_id=client-id")
	assert.Contains(t, res.stdout, "scope=basic+likes")
	assert.Contains(t, res.stdout, "response_type=code")

	res = runCLI(t, "--config", path, "exchange", "the-code")
	require.NoError(t, res.err)

	var token map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &token))
	assert.Equal(t, "fresh.token", token["access_token"])

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "the-code", req.Form.Get("code"))
}

func TestCLI_SignedRequests(t *testing.T) {
	server := newCLIServer(t)
	path := mockConfig(t, server, `client_secret = "client-secret"
callback = "https://example.com/callback"
signed = true
`)

	res := runCLI(t, "--config", path, "like", "555")
	require.NoError(t, res.err)

	req, ok := server.LastRequest()
	require.True(t, ok)
	assert.Len(t, req.Query.Get("sig"), 64)
}

func TestCLI_Oembed(t *testing.T) {
	server := newCLIServer(t)
	server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   `{"media_id":"1_2","type":"rich","version":"1.0"}`,
	})
	path := mockConfig(t, server, "")

	res := runCLI(t, "--config", path, "oembed", "BXUdtPeB9F1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"media_id": "1_2"`)
}
