package cache

import (
	"testing"
	"time"
)

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New returned %T, want *MemoryCache", c)
	}
}

func TestNewWithTTL(t *testing.T) {
	c := NewWithTTL(time.Minute)
	defer func() { _ = c.Close() }()

	if c == nil {
		t.Fatal("NewWithTTL returned nil")
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "not-a-url"

	if _, err := New(cfg); err == nil {
		t.Error("New should reject an invalid Redis URL")
	}
}
