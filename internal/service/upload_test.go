// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "photo.jpg", "photo.jpg"},
		{"spaces replaced", "my photo.jpg", "my-photo.jpg"},
		{"path stripped", "../../etc/passwd.png", "passwd.png"},
		{"special chars removed", "a<b>&c#d?.png", "abcd.png"},
		{"no extension gets jpg", "photo", "photo.jpg"},
		{"quotes removed", `it's "fine".webp`, "its-fine.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
