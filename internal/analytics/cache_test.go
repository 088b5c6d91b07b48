package analytics

import (
	"testing"
	"time"
)

func TestCacheHitAndExpiry(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	rows := []map[string]any{{"airport": "JFK", "requests": 12}}
	c.Set("q", rows)

	got, ok := c.Get("q")
	if !ok || len(got) != 1 {
		t.Fatalf("expected cache hit, got ok=%v rows=%v", ok, got)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("q"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("expected miss")
	}
}
