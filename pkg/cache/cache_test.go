package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "absent"); hit {
		t.Error("expected miss for absent key")
	}

	if err := c.Set(ctx, "graph:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "graph:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q, want payload", data)
	}

	// Expired entries read as misses.
	if err := c.Set(ctx, "graph:old", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:old"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("deleted entry should be a miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars.
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	g1 := k.GraphKey("srchash", GraphKeyOpts{Language: "python"})
	g2 := k.GraphKey("srchash", GraphKeyOpts{Language: "java"})
	if g1 == g2 {
		t.Error("different languages should produce different graph keys")
	}

	l1 := k.LayoutKey("ghash", LayoutKeyOpts{Kind: "pack"})
	l2 := k.LayoutKey("ghash", LayoutKeyOpts{Kind: "layered"})
	if l1 == l2 {
		t.Error("different layout kinds should produce different keys")
	}

	a1 := k.ArtifactKey("lhash", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("lhash", ArtifactKeyOpts{Format: "svg", Detailed: true})
	if a1 == a2 {
		t.Error("detailed flag should change artifact keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "repo:x:")

	got := scoped.GraphKey("h", GraphKeyOpts{Language: "python"})
	want := "repo:x:" + inner.GraphKey("h", GraphKeyOpts{Language: "python"})
	if got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}
