package cors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginAllowed(t *testing.T) {
	exact, err := NewPolicy(Config{
		Origins: []string{"https://www.my-frontend.com", "http://localhost:3000"},
		Methods: []string{"GET"},
	})
	require.NoError(t, err)

	any, err := NewPolicy(Config{AllowAnyOrigin: true, Methods: []string{"GET"}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		policy *Policy
		origin string
		want   bool
	}{
		{"absent origin bypasses the policy", exact, "", true},
		{"listed origin", exact, "https://www.my-frontend.com", true},
		{"second listed origin", exact, "http://localhost:3000", true},
		{"unlisted origin", exact, "https://other.com", false},
		{"case-sensitive host", exact, "https://WWW.my-frontend.com", false},
		{"case-sensitive scheme", exact, "HTTPS://www.my-frontend.com", false},
		{"no subdomain wildcarding", exact, "https://api.my-frontend.com", false},
		{"no scheme relaxation", exact, "http://www.my-frontend.com", false},
		{"no port relaxation", exact, "https://www.my-frontend.com:8443", false},
		{"any-origin flag", any, "https://evil.example", true},
		{"any-origin with absent origin", any, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.policy, tt.origin))
		})
	}
}
