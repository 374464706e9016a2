package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "cloudflare header wins",
			headers:    map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2", "X-Real-IP": "3.3.3.3"},
			remoteAddr: "4.4.4.4:1234",
			want:       "1.1.1.1",
		},
		{
			name:       "first forwarded hop",
			headers:    map[string]string{"X-Forwarded-For": "5.5.5.5, 6.6.6.6, 7.7.7.7"},
			remoteAddr: "4.4.4.4:1234",
			want:       "5.5.5.5",
		},
		{
			name:       "real ip fallback",
			headers:    map[string]string{"X-Real-IP": "8.8.8.8"},
			remoteAddr: "4.4.4.4:1234",
			want:       "8.8.8.8",
		},
		{
			name:       "remote addr host",
			remoteAddr: "9.9.9.9:5678",
			want:       "9.9.9.9",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "9.9.9.9",
			want:       "9.9.9.9",
		},
		{
			name: "nothing available",
			want: UnknownIP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := DeviceID(r); got != "" {
		t.Errorf("DeviceID() = %q, want empty", got)
	}

	r.Header.Set("X-Device-ID", " dev-abc ")
	if got := DeviceID(r); got != "dev-abc" {
		t.Errorf("DeviceID() = %q, want dev-abc", got)
	}
}
