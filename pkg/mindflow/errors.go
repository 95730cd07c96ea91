package mindflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuthenticationRequired is returned before any network activity when an
// authenticated call is made with no stored token.
var ErrAuthenticationRequired = errors.New("mindflow: Authentication required")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the backend, which is how
// an expired or revoked token surfaces.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// newAPIError picks the message from the first non-empty of details, error,
// message, the status text and a generic fallback.
func newAPIError(resp *http.Response, body json.RawMessage) *APIError {
	var fields struct {
		Details json.RawMessage `json:"details"`
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	// Non-object bodies (arrays, strings) carry no known fields.
	_ = json.Unmarshal(body, &fields)

	msg := firstMessage(fields.Details, fields.Error, fields.Message)
	if msg == "" {
		msg = statusText(resp)
	}
	if msg == "" {
		msg = fmt.Sprintf("Errore %d", resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Body:       body,
	}
}

func firstMessage(candidates ...json.RawMessage) string {
	for _, raw := range candidates {
		if msg := messageText(raw); msg != "" {
			return msg
		}
	}
	return ""
}

// messageText renders a body field as a message. Strings are used as-is, other
// non-empty values keep their JSON text. false, 0, "" and null are skipped.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	switch text := strings.TrimSpace(string(raw)); text {
	case "null", "false", "0":
		return ""
	default:
		return text
	}
}

// statusText returns a reason phrase the server chose itself. HTTP/2 carries
// none, and on HTTP/1.x the canonical phrase adds nothing to the code.
func statusText(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if reason == http.StatusText(resp.StatusCode) {
		return ""
	}
	return reason
}
