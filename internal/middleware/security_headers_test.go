package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: "production"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "no-referrer"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, w.Header().Get(tt.header), tt.header)
	}
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "plain HTTP gets no HSTS")
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_HSTSBehindTLSProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	w := httptest.NewRecorder()
	SecurityHeaders(SecurityHeadersConfig{Env: "production"})(okHandler()).ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")

	w = httptest.NewRecorder()
	SecurityHeaders(SecurityHeadersConfig{Env: "development"})(okHandler()).ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_NoStoreForAuthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me/quota", nil)
	req.Header.Set("Authorization", "Bearer x")

	w := httptest.NewRecorder()
	SecurityHeaders(SecurityHeadersConfig{})(okHandler()).ServeHTTP(w, req)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
