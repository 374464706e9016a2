package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestCertificateExpiryStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt sql.NullTime
		want      string
	}{
		{
			name:      "no expiry date",
			expiresAt: sql.NullTime{},
			want:      CertStatusValid,
		},
		{
			name:      "expires next year",
			expiresAt: sql.NullTime{Time: now.AddDate(1, 0, 0), Valid: true},
			want:      CertStatusValid,
		},
		{
			name:      "expires in ten days",
			expiresAt: sql.NullTime{Time: now.AddDate(0, 0, 10), Valid: true},
			want:      CertStatusExpiringSoon,
		},
		{
			name:      "expires in exactly thirty one days",
			expiresAt: sql.NullTime{Time: now.AddDate(0, 0, 31), Valid: true},
			want:      CertStatusValid,
		},
		{
			name:      "expired yesterday",
			expiresAt: sql.NullTime{Time: now.AddDate(0, 0, -1), Valid: true},
			want:      CertStatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Certificate{ExpiresAt: tt.expiresAt}
			if got := c.ExpiryStatus(now); got != tt.want {
				t.Errorf("ExpiryStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
