package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	// APIPath is the path prefix of the versioned API on the mock server
	APIPath = "/v1/"
	// TokenPath is the OAuth token endpoint on the mock server
	TokenPath = "/oauth/access_token"
	// OembedPath is the oEmbed endpoint on the mock server
	OembedPath = "/oembed/"
)

// MockServer provides a configurable mock Instagram API server for testing
type MockServer struct {
	server  *httptest.Server
	handler *MockHandler
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method       string
	Path         string
	Query        url.Values
	Form         url.Values
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockHandler handles mock API responses
type MockHandler struct {
	responses   map[string]*MockResponse
	defaultResp *MockResponse
	rateLimit   string
	delay       time.Duration
	callCount   map[string]int
	requestLog  []RequestEntry
	mutex       sync.RWMutex
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status   int
	Body     string
	Headers  map[string]string
	Delay    time.Duration
	MaxCalls int // 0 = unlimited
}

// NewMockServer creates a new mock server instance. Unknown routes answer with
// an empty success envelope and a X-Ratelimit-Remaining of 4999.
func NewMockServer() *MockServer {
	handler := &MockHandler{
		responses: make(map[string]*MockResponse),
		callCount: make(map[string]int),
		rateLimit: "4999",
		defaultResp: &MockResponse{
			Status: http.StatusOK,
			Body:   SuccessBody(nil, nil),
		},
	}

	return &MockServer{
		server:  httptest.NewServer(handler),
		handler: handler,
	}
}

// URL returns the root URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// BaseURL returns the versioned API base URL to use as Config.BaseURL
func (ms *MockServer) BaseURL() string {
	return ms.server.URL + APIPath
}

// TokenURL returns the OAuth token URL to use as Config.TokenURL
func (ms *MockServer) TokenURL() string {
	return ms.server.URL + TokenPath
}

// OembedURL returns the oEmbed URL to use as Config.OembedURL
func (ms *MockServer) OembedURL() string {
	return ms.server.URL + OembedPath
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures the response for a method and request path,
// e.g. SetResponse(http.MethodGet, "/v1/users/self", ...).
func (ms *MockServer) SetResponse(method, path string, response *MockResponse) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.responses[routeKey(method, path)] = response
}

// SetAPIResponse is SetResponse for a path relative to the API base,
// e.g. SetAPIResponse(http.MethodGet, "users/self", ...).
func (ms *MockServer) SetAPIResponse(method, resource string, response *MockResponse) {
	ms.SetResponse(method, APIPath+resource, response)
}

// SetDefaultResponse configures the response for unknown routes
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.defaultResp = response
}

// SetRateLimit sets the X-Ratelimit-Remaining value sent with every response.
// An empty value omits the header.
func (ms *MockServer) SetRateLimit(remaining string) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.rateLimit = remaining
}

// SetDelay adds delay to all responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.delay = delay
}

// GetRequestLog returns the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.handler.mutex.RLock()
	defer ms.handler.mutex.RUnlock()
	return append([]RequestEntry{}, ms.handler.requestLog...)
}

// LastRequest returns the most recent request, or false if none arrived
func (ms *MockServer) LastRequest() (RequestEntry, bool) {
	log := ms.GetRequestLog()
	if len(log) == 0 {
		return RequestEntry{}, false
	}
	return log[len(log)-1], true
}

// GetCallCount returns the number of requests received for a path
func (ms *MockServer) GetCallCount(path string) int {
	ms.handler.mutex.RLock()
	defer ms.handler.mutex.RUnlock()
	return ms.handler.callCount[path]
}

// ClearLog clears the request log and call counts
func (ms *MockServer) ClearLog() {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.requestLog = nil
	ms.handler.callCount = make(map[string]int)
}

// ServeHTTP implements http.Handler
func (h *MockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))

	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Form:      form,
		Headers:   r.Header.Clone(),
		Body:      string(raw),
		Timestamp: time.Now(),
	}

	h.mutex.Lock()
	h.callCount[r.URL.Path]++
	calls := h.callCount[r.URL.Path]
	response, exists := h.responses[routeKey(r.Method, r.URL.Path)]
	if !exists {
		response = h.defaultResp
	}
	rateLimit := h.rateLimit
	delay := h.delay + response.Delay
	h.mutex.Unlock()

	status := response.Status
	body := response.Body
	if response.MaxCalls > 0 && calls > response.MaxCalls {
		status = http.StatusNotFound
		body = ErrorBody(404, "APINotFoundError", "mock call limit reached")
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	if rateLimit != "" {
		w.Header().Set("X-Ratelimit-Remaining", rateLimit)
	}
	w.Header().Set("Content-Type", "application/json")
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(status)
	w.Write([]byte(body))

	entry.ResponseCode = status
	h.mutex.Lock()
	h.requestLog = append(h.requestLog, entry)
	h.mutex.Unlock()
}

func routeKey(method, path string) string {
	return method + " " + path
}

// SuccessBody renders a meta envelope around data with an optional pagination object
func SuccessBody(data any, pagination map[string]any) string {
	envelope := map[string]any{
		"meta": map[string]any{"code": 200},
		"data": data,
	}
	if pagination != nil {
		envelope["pagination"] = pagination
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		panic(fmt.Sprintf("mock success body: %v", err))
	}
	return string(body)
}

// ErrorBody renders a top-level error envelope
func ErrorBody(code int, errorType, message string) string {
	return `{"code":` + strconv.Itoa(code) + `,"error_type":` + strconv.Quote(errorType) + `,"error_message":` + strconv.Quote(message) + `}`
}

// NextURL builds a pagination next_url pointing back at the mock server
func (ms *MockServer) NextURL(resource string, query url.Values) string {
	return ms.BaseURL() + resource + "?" + query.Encode()
}

// SetupUser configures GET users/<id> with a minimal profile
func (ms *MockServer) SetupUser(id, username string) {
	ms.SetAPIResponse(http.MethodGet, "users/"+id, &MockResponse{
		Status: http.StatusOK,
		Body: SuccessBody(map[string]any{
			"id":        id,
			"username":  username,
			"full_name": username,
			"counts":    map[string]int{"media": 10, "follows": 5, "followed_by": 20},
		}, nil),
	})
}

// SetupToken configures the OAuth token endpoint to return accessToken
func (ms *MockServer) SetupToken(accessToken string) {
	body, _ := json.Marshal(map[string]any{
		"access_token": accessToken,
		"user":         map[string]any{"id": "1574083", "username": "snoopdogg"},
	})
	ms.SetResponse(http.MethodPost, TokenPath, &MockResponse{
		Status: http.StatusOK,
		Body:   string(body),
	})
}
