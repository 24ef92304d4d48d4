package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

func mustIPConfig(t *testing.T, cidrs ...string) *pkghttp.IPConfig {
	t.Helper()
	cfg, err := pkghttp.NewIPConfig(cidrs)
	require.NoError(t, err)
	return cfg
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		config     *pkghttp.IPConfig
		want       string
	}{
		{
			name:       "direct client headers ignored",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4, 5.6.7.8",
			realIP:     "192.168.1.1",
			config:     mustIPConfig(t, "10.0.0.0/8", "127.0.0.1/32"),
			want:       "203.0.113.10",
		},
		{
			name:       "trusted proxy uses first forwarded address",
			remoteAddr: "10.0.0.5:54321",
			xff:        "203.0.113.42, 203.0.113.43, 10.0.0.5",
			config:     mustIPConfig(t, "10.0.0.0/8"),
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy falls back to X-Real-IP",
			remoteAddr: "10.0.0.5:54321",
			realIP:     "203.0.113.42",
			config:     mustIPConfig(t, "10.0.0.0/8"),
			want:       "203.0.113.42",
		},
		{
			name:       "ipv6 trusted proxy",
			remoteAddr: "[::1]:54321",
			xff:        "2001:db8::1",
			config:     mustIPConfig(t, "::1/128"),
			want:       "2001:db8::1",
		},
		{
			name:       "nil config trusts nothing",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4",
			want:       "203.0.113.10",
		},
		{
			name:       "localhost claim from untrusted peer",
			remoteAddr: "203.0.113.10:54321",
			xff:        "127.0.0.1, 203.0.113.10",
			config:     mustIPConfig(t, "10.0.0.0/8"),
			want:       "203.0.113.10",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.10",
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestNewIPConfig_RejectsInvalidRange(t *testing.T) {
	_, err := pkghttp.NewIPConfig([]string{"10.0.0.0/8", "not-a-cidr"})
	assert.Error(t, err)

	cfg, err := pkghttp.NewIPConfig([]string{"", " "})
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestClientIPPtr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	ip := pkghttp.ClientIPPtr(req, nil)
	require.NotNil(t, ip)
	assert.Equal(t, "198.51.100.7", *ip)

	req.RemoteAddr = ""
	assert.Nil(t, pkghttp.ClientIPPtr(req, nil))
}
