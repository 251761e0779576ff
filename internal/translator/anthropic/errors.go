package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nadzzz/codeswitch/internal/errors"
)

const (
	solutionsAuth        = "Solutions: 1. Check your API key in .env file 2. Verify the key at https://console.anthropic.com/ 3. Make sure the key has proper permissions"
	solutionsRateLimit   = "Solutions: 1. Wait a few minutes and try again 2. Check your Anthropic usage limits 3. Upgrade your Anthropic plan if needed 4. Contact Anthropic support if the issue persists"
	solutionsUnavailable = "Solutions: 1. Try again in a few minutes 2. Check Anthropic status 3. Use mock mode for testing"
	solutionsGeneric     = "Solutions: 1. Check your API key and account 2. Review Anthropic documentation 3. Contact support if needed"
	solutionsUnparsed    = "Solutions: 1. Check your Anthropic API key 2. Try again later 3. Contact Anthropic support"
)

// APIError is a classified non-2xx response from the Messages API.
type APIError struct {
	StatusCode int
	Type       string // error.type from the body, empty if the body did not parse
	Detail     string // error.message from the body
	Solutions  string
	message    string
}

func (e *APIError) Error() string { return e.message }

// Kind returns the sentinel the error is marked with.
func (e *APIError) Kind() error {
	return kindFor(e.StatusCode)
}

func kindFor(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return errors.ErrBackendAuth
	case http.StatusTooManyRequests:
		return errors.ErrBackendRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return errors.ErrBackendUnavailable
	default:
		return errors.ErrBackendGeneric
	}
}

// classify builds the marked error for a failed response. The summary and
// solutions depend on the status alone; the body's error type and message
// are appended when it parses.
func classify(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var parsed struct {
		Error *struct {
			Type    *string `json:"type"`
			Message *string `json:"message"`
		} `json:"error"`
	}
	bodyParsed := json.Unmarshal(body, &parsed) == nil && parsed.Error != nil
	if bodyParsed {
		apiErr.Type = "unknown"
		if parsed.Error.Type != nil {
			apiErr.Type = *parsed.Error.Type
		}
		apiErr.Detail = "Unknown error"
		if parsed.Error.Message != nil {
			apiErr.Detail = *parsed.Error.Message
		}
	}

	var summary string
	switch apiErr.Kind() {
	case errors.ErrBackendAuth:
		summary = "Anthropic API authentication failed. Invalid API key."
		apiErr.Solutions = solutionsAuth
	case errors.ErrBackendRateLimited:
		summary = "Anthropic API rate limit exceeded (429 Too Many Requests)."
		apiErr.Solutions = solutionsRateLimit
	case errors.ErrBackendUnavailable:
		summary = "Anthropic API server error. The service is temporarily unavailable."
		apiErr.Solutions = solutionsUnavailable
	default:
		if bodyParsed {
			summary = "Anthropic API error: " + apiErr.Detail
			apiErr.Solutions = solutionsGeneric
		} else {
			summary = fmt.Sprintf("Anthropic API error (status %d %s).", status, http.StatusText(status))
			apiErr.Solutions = solutionsUnparsed
		}
	}

	if bodyParsed {
		apiErr.message = fmt.Sprintf("%s Error Type: %s Details: %s. %s",
			summary, apiErr.Type, apiErr.Detail, apiErr.Solutions)
	} else {
		apiErr.message = summary + " " + apiErr.Solutions
	}
	return errors.Mark(apiErr, apiErr.Kind())
}
