package cache_test

import (
	"testing"

	"github.com/funvibe/flowtype/internal/cache"
)

func TestKeyIsContentAddressedNotPathAddressed(t *testing.T) {
	a := cache.Key([]byte("let x = 1;"))
	b := cache.Key([]byte("let x = 1;"))
	if a != b {
		t.Errorf("Key should be deterministic for identical content: %s != %s", a, b)
	}
	c := cache.Key([]byte("let x = 2;"))
	if a == c {
		t.Errorf("Key should differ for different content")
	}
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := cache.Key([]byte("let x = 1;"))
	if _, ok := c.Get(key, "report"); ok {
		t.Fatalf("expected a miss before any Put")
	}
	if err := c.Put(key, "report", "declare let x: number(1);\n"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(key, "report")
	if !ok {
		t.Fatalf("expected a hit after Put")
	}
	if got != "declare let x: number(1);\n" {
		t.Errorf("Get = %q, want the stored payload", got)
	}
	// A different format key is tracked independently.
	if _, ok := c.Get(key, "json"); ok {
		t.Errorf("expected a miss for an unstored format")
	}
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := cache.Key([]byte("let x = 1;"))
	if err := c.Put(key, "decl", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(key, "decl", "v2"); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(key, "decl")
	if !ok || got != "v2" {
		t.Errorf("Get = (%q, %v), want (\"v2\", true)", got, ok)
	}
}
