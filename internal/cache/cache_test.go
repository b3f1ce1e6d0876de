package cache

import (
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	t.Run("Set Then Get", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set("source-url", "destination-url", time.Minute)

		got, ok := c.Get("source-url")
		if !ok || got != "destination-url" {
			t.Errorf("expected hit with destination-url, got %q (present=%v)", got, ok)
		}
	})

	t.Run("Miss On Absent Key", func(t *testing.T) {
		c := NewMemoryCache()
		if _, ok := c.Get("never-set"); ok {
			t.Error("expected a miss")
		}
	})

	t.Run("Set Replaces Value", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set("key", "old", time.Minute)
		c.Set("key", "new", time.Minute)

		got, _ := c.Get("key")
		if got != "new" {
			t.Errorf("expected replacement, got %q", got)
		}
	})

	t.Run("Expiry Drops Entry", func(t *testing.T) {
		c := NewMemoryCache()
		current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return current }

		c.Set("key", "value", time.Hour)

		if _, ok := c.Get("key"); !ok {
			t.Fatal("expected hit before expiry")
		}

		current = current.Add(2 * time.Hour)
		if _, ok := c.Get("key"); ok {
			t.Error("expected miss after expiry")
		}
		if c.Len() != 0 {
			t.Errorf("expected lazy eviction on read, len=%d", c.Len())
		}
	})

	t.Run("Clear", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set("a", "1", time.Minute)
		c.Set("b", "2", time.Minute)

		if c.Len() != 2 {
			t.Fatalf("expected 2 entries, got %d", c.Len())
		}

		c.Clear()
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", c.Len())
		}
		if _, ok := c.Get("a"); ok {
			t.Error("expected miss after clear")
		}
	})
}
