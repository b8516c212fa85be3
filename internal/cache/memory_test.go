package cache

import (
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache()

	if _, err := c.Get("missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get("key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "value" {
		t.Fatalf("expected %q, got %q", "value", got)
	}

	if err := c.Delete("key"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get("key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache()

	if err := c.Set("ephemeral", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.Get("ephemeral"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get("ephemeral"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()

	if err := c.Set("pinned", "value", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := c.Get("pinned"); err != nil {
		t.Fatalf("expected zero-ttl entry to persist, got %v", err)
	}
}
