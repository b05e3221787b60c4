package cache

import (
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache(time.Minute, nil, "")

	if _, ok := c.Get("u1|q"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Set("u1|q", "payload")
	v, ok := c.Get("u1|q")
	if !ok || v.(string) != "payload" {
		t.Fatalf("got (%v, %v)", v, ok)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(10*time.Millisecond, nil, "")
	c.Set("k", 1)
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestInvalidateUserScope(t *testing.T) {
	c := NewTTLCache(time.Minute, nil, "")
	c.Set(Key("u1", "search", "a"), 1)
	c.Set(Key("u1", "search", "b"), 2)
	c.Set(Key("u2", "search", "a"), 3)

	c.Invalidate("u1")

	if _, ok := c.Get(Key("u1", "search", "a")); ok {
		t.Fatal("u1 entry survived invalidation")
	}
	if _, ok := c.Get(Key("u1", "search", "b")); ok {
		t.Fatal("u1 entry survived invalidation")
	}
	if _, ok := c.Get(Key("u2", "search", "a")); !ok {
		t.Fatal("u2 entry should be untouched")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := NewTTLCache(time.Minute, nil, "")
	c.Set(Key("u1", "a"), 1)
	c.Set(Key("u2", "b"), 2)

	c.Invalidate("ALL")

	if _, ok := c.Get(Key("u1", "a")); ok {
		t.Fatal("cache should be empty after ALL")
	}
	if _, ok := c.Get(Key("u2", "b")); ok {
		t.Fatal("cache should be empty after ALL")
	}
}

func TestKeyScoping(t *testing.T) {
	if Key("u1", "search", "q=x") != "u1|search|q=x" {
		t.Fatalf("key = %q", Key("u1", "search", "q=x"))
	}
}
