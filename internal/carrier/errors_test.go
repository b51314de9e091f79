package carrier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantKind   ErrorKind
	}{
		{
			name:       "404 with structured error envelope is shipment not found",
			statusCode: 404,
			body:       `{"error": "Shipment not found"}`,
			wantKind:   KindShipmentNotFound,
		},
		{
			name:       "404 with errors array is shipment not found",
			statusCode: 404,
			body:       `{"errors": [{"code": "not_found"}]}`,
			wantKind:   KindShipmentNotFound,
		},
		{
			name:       "404 with message key is shipment not found",
			statusCode: 404,
			body:       `{"message": "no such shipment"}`,
			wantKind:   KindShipmentNotFound,
		},
		{
			name:       "bare 404 with empty body is connectivity",
			statusCode: 404,
			body:       "",
			wantKind:   KindConnectivityError,
		},
		{
			name:       "404 with HTML body is connectivity",
			statusCode: 404,
			body:       "<html><body>404 Not Found</body></html>",
			wantKind:   KindConnectivityError,
		},
		{
			name:       "404 with JSON lacking error keys is connectivity",
			statusCode: 404,
			body:       `{"status": "gone"}`,
			wantKind:   KindConnectivityError,
		},
		{
			name:       "500 is upstream error",
			statusCode: 500,
			body:       `{"error": "internal"}`,
			wantKind:   KindUpstreamError,
		},
		{
			name:       "422 is upstream error",
			statusCode: 422,
			body:       `{"errors": ["invalid parcel"]}`,
			wantKind:   KindUpstreamError,
		},
		{
			name:       "401 is upstream error",
			statusCode: 401,
			body:       "unauthorized",
			wantKind:   KindUpstreamError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := classifyResponse(tt.statusCode, []byte(tt.body))
			assert.Equal(t, tt.wantKind, cerr.Kind)
			assert.Equal(t, tt.statusCode, cerr.StatusCode)
			assert.Equal(t, tt.body, cerr.Upstream)
		})
	}
}

func TestClassifyResponseNotFoundMessage(t *testing.T) {
	cerr := classifyResponse(404, []byte(`{"error": "gone"}`))
	assert.Equal(t, "Shipment Not Found", cerr.Message)
}

func TestIsStructuredError(t *testing.T) {
	assert.True(t, isStructuredError([]byte(`{"error": "x"}`)))
	assert.True(t, isStructuredError([]byte(`{"detail": "x"}`)))
	assert.False(t, isStructuredError([]byte(`"just a string"`)))
	assert.False(t, isStructuredError([]byte(`[1, 2, 3]`)))
	assert.False(t, isStructuredError([]byte(``)))
	assert.False(t, isStructuredError([]byte(`not json at all`)))
}

func TestKindOf(t *testing.T) {
	cerr := &Error{Kind: KindUpstreamError, Message: "boom"}
	assert.Equal(t, KindUpstreamError, KindOf(cerr))

	wrapped := fmt.Errorf("outer: %w", cerr)
	assert.Equal(t, KindUpstreamError, KindOf(wrapped))

	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestErrorString(t *testing.T) {
	withStatus := &Error{Kind: KindUpstreamError, Message: "rejected", StatusCode: 500}
	assert.Contains(t, withStatus.Error(), "UPSTREAM_ERROR")
	assert.Contains(t, withStatus.Error(), "500")

	noStatus := &Error{Kind: KindMissingCredentials, Message: "no key"}
	assert.Contains(t, noStatus.Error(), "MISSING_CREDENTIALS")
	assert.NotContains(t, noStatus.Error(), "upstream status")
}
