package cors

import (
	"net/http"
	"strings"
)

// Header names this package reads and writes, in canonical form.
const (
	headerOrigin = "Origin"

	headerACRM = "Access-Control-Request-Method"
	headerACRH = "Access-Control-Request-Headers"

	headerACAO = "Access-Control-Allow-Origin"
	headerACAC = "Access-Control-Allow-Credentials"
	headerACAM = "Access-Control-Allow-Methods"
	headerACAH = "Access-Control-Allow-Headers"
	headerACMA = "Access-Control-Max-Age"
	headerACEH = "Access-Control-Expose-Headers"
)

// Request is the minimal view of an inbound HTTP request the engine needs.
// It is ephemeral and owned by the caller for the duration of one request.
type Request struct {
	Origin string
	Method string

	// Preflight-only fields, taken from the Access-Control-Request-*
	// headers. Empty on actual requests.
	RequestedMethod  string
	RequestedHeaders []string

	// IsPreflight is derived at parse time: an OPTIONS request carrying
	// both an Origin and an Access-Control-Request-Method header.
	IsPreflight bool
}

// ParseRequest extracts the engine's request view from r. It never fails:
// malformed or missing CORS headers simply yield a view that evaluates to
// "not cross-origin" or "denied preflight".
func ParseRequest(r *http.Request) Request {
	req := Request{
		Origin:          r.Header.Get(headerOrigin),
		Method:          r.Method,
		RequestedMethod: r.Header.Get(headerACRM),
	}
	req.IsPreflight = r.Method == http.MethodOptions &&
		req.Origin != "" &&
		req.RequestedMethod != ""
	if req.IsPreflight {
		req.RequestedHeaders = splitRequestedHeaders(r.Header.Get(headerACRH))
	}
	return req
}

// splitRequestedHeaders splits a comma-separated Access-Control-Request-Headers
// value, trimming optional whitespace around each name. Browsers send the
// list byte-lowercased, but membership checks lowercase again anyway.
func splitRequestedHeaders(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.Trim(part, " \t"); name != "" {
			out = append(out, name)
		}
	}
	return out
}
