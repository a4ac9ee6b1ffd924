package internal

import (
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// maxBodyPreview bounds how much of an unreadable payload is kept on errors.
const maxBodyPreview = 512

// successEnvelope is the {"meta": ..., "data": ..., "pagination": ...} shape.
type successEnvelope struct {
	Meta       *types.Meta       `json:"meta"`
	Data       json.RawMessage   `json:"data"`
	Pagination *types.Pagination `json:"pagination"`
}

// errorEnvelope is the top-level {"code", "error_type", "error_message"} shape.
type errorEnvelope struct {
	Code         *int   `json:"code"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

// Classify interprets a response body. The variants are tried in order:
// a success envelope (has meta), an error envelope (has a top-level code),
// and otherwise the body is malformed. status is updated in place with the
// code and error fields so callers can report it alongside the outcome.
func Classify(body []byte, status *types.Status) (*types.Response, error) {
	if status == nil {
		status = &types.Status{}
	}

	var success successEnvelope
	successErr := json.Unmarshal(body, &success)
	if successErr == nil && success.Meta != nil {
		status.Code = success.Meta.Code
		status.ErrorType = ""
		status.ErrorMessage = ""

		return &types.Response{
			Meta:       *success.Meta,
			Data:       success.Data,
			Pagination: success.Pagination,
			Status:     *status,
		}, nil
	}

	var failure errorEnvelope
	if err := json.Unmarshal(body, &failure); err == nil && failure.Code != nil {
		status.Code = *failure.Code
		status.ErrorType = failure.ErrorType
		status.ErrorMessage = failure.ErrorMessage

		return nil, &pkgerrs.APIError{
			Code:         *failure.Code,
			ErrorType:    failure.ErrorType,
			ErrorMessage: failure.ErrorMessage,
			HTTPStatus:   status.HTTPStatus,
			Status:       *status,
		}
	}

	malformed := &pkgerrs.MalformedResponseError{
		HTTPStatus: status.HTTPStatus,
		Body:       preview(body),
	}
	if successErr != nil {
		malformed.Err = fmt.Errorf("decode response: %w", successErr)
	}
	return nil, malformed
}

func preview(body []byte) string {
	if len(body) > maxBodyPreview {
		return string(body[:maxBodyPreview]) + "..."
	}
	return string(body)
}
