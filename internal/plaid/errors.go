package plaid

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/plaid/plaid-go/v20/plaid"
)

// APIError is the normalized form of an error reported by the Plaid API.
type APIError struct {
	DisplayMessage string `json:"display_message"`
	ErrorCode      string `json:"error_code"`
	ErrorType      string `json:"error_type"`
	StatusCode     int    `json:"status_code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid API error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.DisplayMessage)
}

// Response returns the error as the mapping reported to callers, keyed by "error".
func (e *APIError) Response() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"status_code":     e.StatusCode,
			"display_message": e.DisplayMessage,
			"error_code":      e.ErrorCode,
			"error_type":      e.ErrorType,
		},
	}
}

// ErrorResponse returns the "error" mapping for err when it carries an APIError.
// It returns nil for errors that did not come from the Plaid API.
func ErrorResponse(err error) map[string]any {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Response()
	}
	return nil
}

// normalizeError converts an error returned by the generated Plaid client.
// Errors with a Plaid error body become *APIError, anything else is a
// connection failure.
func normalizeError(op string, httpResp *http.Response, err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("failed to %s: %w: %w", op, common.ErrPlaidConnection, err)
	}

	status := int(plaidErr.GetStatus())
	if httpResp != nil {
		status = httpResp.StatusCode
	}

	return &APIError{
		StatusCode:     status,
		DisplayMessage: plaidErr.ErrorMessage,
		ErrorCode:      plaidErr.ErrorCode,
		ErrorType:      string(plaidErr.ErrorType),
	}
}
