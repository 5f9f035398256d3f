package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrUnauthorized         = errors.New("orders api unauthorized")
	ErrTransport            = errors.New("orders api unreachable")
	ErrMalformedBody        = errors.New("orders api malformed body")
	ErrUnrecognizedEnvelope = errors.New("orders api unrecognized order list envelope")
	ErrMissingID            = errors.New("id is required")
	ErrInvalidInput         = errors.New("invalid input")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("orders api error: %s: %s", e.Status, e.Message)
	}
	if e.Body == "" {
		return fmt.Sprintf("orders api error: %s", e.Status)
	}
	return fmt.Sprintf("orders api error: %s: %s", e.Status, e.Body)
}

// FailureError is a 2xx response whose body says success:false.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	if e.Message == "" {
		return "orders api request failed"
	}
	return "orders api request failed: " + e.Message
}

// ServerMessage extracts the message the backend attached to err, if any.
func ServerMessage(err error) string {
	var failure *FailureError
	if errors.As(err, &failure) {
		return failure.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func apiErrorFromResponse(resp *resty.Response) *APIError {
	body := strings.TrimSpace(resp.String())
	return &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
		Message:    messageFromBody(resp.Body()),
	}
}

func messageFromBody(body []byte) string {
	data, err := unwrapBody(body)
	if err != nil || len(data) == 0 || data[0] != '{' {
		return ""
	}
	var status statusEnvelope
	if err := json.Unmarshal(data, &status); err != nil {
		return ""
	}
	if status.Message != "" {
		return status.Message
	}
	return status.Error
}

func isUnauthorized(resp *resty.Response) bool {
	return resp != nil && resp.StatusCode() == http.StatusUnauthorized
}
