// Package errors defines the error kinds returned by the Instagram API wrapper.
//
// Every failure is one of the types below and can be matched with errors.As.
package errors

import (
	"fmt"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthenticationRequiredError is returned when an authenticated endpoint is
// called before an access token has been set.
type AuthenticationRequiredError struct {
	// Resource is the API resource path that was requested
	Resource string
}

func (e *AuthenticationRequiredError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("authentication required: %s needs an access token", e.Resource)
	}
	return "authentication required: an access token must be set"
}

// ArgumentError indicates a caller supplied value outside of what the API accepts,
// such as an unknown scope or relationship action.
type ArgumentError struct {
	// Argument is the name of the offending argument
	Argument string
	// Value is the rejected value
	Value string
	// Message contains the detailed error message
	Message string
}

func (e *ArgumentError) Error() string {
	var parts []string
	parts = append(parts, "invalid argument")

	if e.Argument != "" {
		parts = append(parts, e.Argument)
	}
	if e.Value != "" {
		parts = append(parts, fmt.Sprintf("%q", e.Value))
	}

	head := joinParts(parts, " ")
	if e.Message == "" {
		return head
	}
	return head + ": " + e.Message
}

// TransportError indicates the HTTP round trip failed or returned no body.
type TransportError struct {
	// Operation is the resource path or flow that was being executed
	Operation string
	// URL is the URL that was being accessed, with credentials redacted
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("transport error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("transport error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("transport error: %s", msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is returned when Instagram answers with an error envelope
// ({"code": ..., "error_type": ..., "error_message": ...}).
type APIError struct {
	// Code is the code field of the error envelope
	Code int
	// ErrorType is the error_type field, e.g. "OAuthException"
	ErrorType string
	// ErrorMessage is the error_message field
	ErrorMessage string
	// HTTPStatus is the HTTP status code of the response
	HTTPStatus int
	// Status is the response status observed for the failed call
	Status types.Status
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("instagram API error (code %d, type %s): %s", e.Code, e.ErrorType, e.ErrorMessage)
	}
	return fmt.Sprintf("instagram API error (code %d): %s", e.Code, e.ErrorMessage)
}

// MalformedResponseError indicates a response body that is neither a success
// envelope nor an error envelope, or a response header block that cannot be parsed.
type MalformedResponseError struct {
	// Operation is the resource path or flow whose response could not be read
	Operation string
	// HTTPStatus is the HTTP status code of the response, if known
	HTTPStatus int
	// Message contains the detailed error message
	Message string
	// Body holds a preview of the offending payload
	Body string
	// Err contains the underlying decode error if available
	Err error
}

func (e *MalformedResponseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "response is neither a success nor an error envelope"
	}

	var parts []string
	if e.HTTPStatus > 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.HTTPStatus))
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}

	prefix := "malformed response"
	if e.Operation != "" {
		prefix = fmt.Sprintf("malformed response from %s", e.Operation)
	}
	if len(parts) == 0 {
		return prefix + ": " + msg
	}
	return fmt.Sprintf("%s: %s (%s)", prefix, msg, joinParts(parts, ", "))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
