package internal

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

const (
	// StatusLineKey is the reserved key holding the HTTP status line.
	StatusLineKey = "http_code"
	// RateLimitRemainingHeader is the header Instagram uses to report the
	// calls left in the current window.
	RateLimitRemainingHeader = "X-Ratelimit-Remaining"
)

// Headers maps header names, case as delivered, to their values.
type Headers map[string]string

// ParseHeaders splits a raw CRLF-separated header block. The first line is kept
// verbatim under StatusLineKey; every other non-empty line is split on its first
// colon. A line without a colon is rejected rather than silently dropped.
func ParseHeaders(raw string) (Headers, error) {
	lines := strings.Split(raw, "\r\n")
	headers := make(Headers, len(lines))

	for i, line := range lines {
		if i == 0 {
			headers[StatusLineKey] = line
			continue
		}
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, &pkgerrs.MalformedResponseError{
				Operation: "parse headers",
				Message:   fmt.Sprintf("header line %d has no colon", i),
				Body:      line,
			}
		}
		headers[key] = strings.TrimSpace(value)
	}

	return headers, nil
}

// StatusLine returns the HTTP status line, e.g. "HTTP/1.1 200 OK".
func (h Headers) StatusLine() string {
	return h[StatusLineKey]
}

// RateLimitRemaining returns the parsed X-Ratelimit-Remaining value.
func (h Headers) RateLimitRemaining() (int, bool) {
	raw, ok := h[RateLimitRemainingHeader]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// rawHeaderBlock renders a received response's status line and headers back
// into the CRLF wire form consumed by ParseHeaders.
func rawHeaderBlock(resp *http.Response) string {
	var b strings.Builder

	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	b.WriteString(proto + " " + status + "\r\n")

	// Header.Write only fails when the writer does; strings.Builder never does.
	_ = resp.Header.Write(&b)
	return b.String()
}
