package gateway

import "net/http"

// setSecurityHeaders adds baseline hardening headers to forwarded
// responses. CORS headers are deliberately absent here: those belong to
// the policy engine alone.
func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
