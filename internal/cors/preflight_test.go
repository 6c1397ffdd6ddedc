package cors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerValue(d Decision, name string) string {
	for _, h := range d.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func preflight(origin, method string, headers ...string) Request {
	return Request{
		Origin:           origin,
		Method:           http.MethodOptions,
		RequestedMethod:  method,
		RequestedHeaders: headers,
		IsPreflight:      true,
	}
}

func TestPreflightAllowed(t *testing.T) {
	p, err := NewPolicy(Config{
		Origins:      []string{"https://app.example"},
		Methods:      []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:       600,
	})
	require.NoError(t, err)

	d := evaluatePreflight(p, preflight("https://app.example", "DELETE", "content-type"))
	require.True(t, d.Allowed)
	assert.Equal(t, "https://app.example", headerValue(d, "Access-Control-Allow-Origin"))
	// The full configured lists go out, not just what was requested, so
	// the browser can cache the result for differently shaped requests.
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", headerValue(d, "Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-Request-ID", headerValue(d, "Access-Control-Allow-Headers"))
	assert.Equal(t, "600", headerValue(d, "Access-Control-Max-Age"))
	assert.Empty(t, headerValue(d, "Access-Control-Allow-Credentials"))
}

func TestPreflightDenied(t *testing.T) {
	p, err := NewPolicy(Config{
		Origins:      []string{"https://app.example"},
		Methods:      []string{"POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
	}{
		{"origin not allowed", preflight("https://other.example", "POST")},
		{"method not allowed", preflight("https://app.example", "DELETE")},
		{"method case mismatch", preflight("https://app.example", "post")},
		{"header not allowed", preflight("https://app.example", "POST", "content-type", "x-secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evaluatePreflight(p, tt.req)
			assert.False(t, d.Allowed)
			// Denied decisions carry no headers at all.
			assert.Empty(t, d.Headers)
			assert.Empty(t, d.EffectiveOrigin)
		})
	}
}

func TestPreflightHeaderMatchingIsCaseInsensitive(t *testing.T) {
	p, err := NewPolicy(Config{
		Origins:      []string{"https://app.example"},
		Methods:      []string{"POST"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	})
	require.NoError(t, err)

	d := evaluatePreflight(p, preflight("https://app.example", "POST", "CONTENT-TYPE", "authorization"))
	require.True(t, d.Allowed)
	// The emitted list is the configured spelling, never an echo of the
	// request's Access-Control-Request-Headers value.
	assert.Equal(t, "Content-Type, Authorization", headerValue(d, "Access-Control-Allow-Headers"))
}

func TestPreflightCredentialed(t *testing.T) {
	p, err := NewPolicy(Config{
		AllowAnyOrigin:   true,
		AllowCredentials: true,
		Methods:          []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
	})
	require.NoError(t, err)

	d := evaluatePreflight(p, preflight("https://client.example", "POST", "content-type"))
	require.True(t, d.Allowed)
	assert.Equal(t, "https://client.example", headerValue(d, "Access-Control-Allow-Origin"))
	assert.Equal(t, "true", headerValue(d, "Access-Control-Allow-Credentials"))
	assert.NotEqual(t, "*", d.EffectiveOrigin)
}
