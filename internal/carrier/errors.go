package carrier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed carrier interaction.
type ErrorKind string

const (
	// KindMissingCredentials means no API key resolved; no network call was made.
	KindMissingCredentials ErrorKind = "MISSING_CREDENTIALS"
	// KindShipmentNotFound means the carrier confirmed the shipment id does not
	// exist upstream. This is the only kind the orchestrator recovers from.
	KindShipmentNotFound ErrorKind = "SHIPMENT_NOT_FOUND"
	// KindUpstreamError means the carrier rejected the request for another reason.
	KindUpstreamError ErrorKind = "UPSTREAM_ERROR"
	// KindConnectivityError means the proxy route itself, or the path to it,
	// appears broken rather than the carrier reporting a business error.
	KindConnectivityError ErrorKind = "CONNECTIVITY_ERROR"
	// KindProxyInternalError covers transport failures: DNS, timeout, refused.
	KindProxyInternalError ErrorKind = "PROXY_INTERNAL_ERROR"
)

// Error is a classified carrier failure. StatusCode is the upstream HTTP
// status (0 when no response was received) and Upstream preserves the raw
// response body for diagnostics.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Upstream   string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (upstream status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the ErrorKind from err, unwrapping as needed.
// Returns "" when err is not a carrier error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// classifyResponse maps a non-2xx carrier response to a taxonomy error.
//
// A 404 carrying a structured error envelope is the carrier's authoritative
// "this shipment id does not exist". A bare 404 (HTML error page, empty body,
// plain text) means the request never reached a carrier route that understood
// it, which is a connectivity problem, not a business error. The two must
// never be conflated: only the former triggers the booking fallback.
func classifyResponse(statusCode int, body []byte) *Error {
	if statusCode == http.StatusNotFound {
		if isStructuredError(body) {
			return &Error{
				Kind:       KindShipmentNotFound,
				Message:    "Shipment Not Found",
				StatusCode: statusCode,
				Upstream:   string(body),
			}
		}
		return &Error{
			Kind:       KindConnectivityError,
			Message:    "carrier endpoint not reachable; check the proxy route and endpoint configuration",
			StatusCode: statusCode,
			Upstream:   string(body),
		}
	}

	return &Error{
		Kind:       KindUpstreamError,
		Message:    fmt.Sprintf("carrier rejected the request with status %d", statusCode),
		StatusCode: statusCode,
		Upstream:   string(body),
	}
}

// isStructuredError reports whether body parses as a JSON error envelope.
func isStructuredError(body []byte) bool {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	for _, key := range []string{"error", "errors", "message", "detail"} {
		if _, ok := envelope[key]; ok {
			return true
		}
	}
	return false
}
