package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain/search/result"
)

func withClock(c *QueryCache, t0 time.Time) *time.Time {
	now := t0
	c.now = func() time.Time { return now }
	return &now
}

func TestGet_Missing(t *testing.T) {
	c := New(time.Minute, 10, nil)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("want miss for unknown fingerprint")
	}
}

func TestPutGet(t *testing.T) {
	c := New(time.Minute, 10, nil)
	c.Put("fp1", []result.Ranked{})

	entry, ok := c.Get("fp1")
	if !ok {
		t.Fatal("want hit")
	}
	if entry.Fingerprint != "fp1" {
		t.Errorf("want fp1, got %s", entry.Fingerprint)
	}
}

func TestTTLBoundary(t *testing.T) {
	c := New(time.Minute, 10, nil)
	now := withClock(c, time.UnixMilli(0))

	c.Put("fp1", nil)

	// Just before expiry: present.
	*now = time.UnixMilli(0).Add(time.Minute - time.Millisecond)
	if _, ok := c.Get("fp1"); !ok {
		t.Fatal("entry must be retrievable at t0+T-eps")
	}

	// At and after expiry: absent.
	*now = time.UnixMilli(0).Add(time.Minute + time.Millisecond)
	if _, ok := c.Get("fp1"); ok {
		t.Fatal("entry must be absent at t0+T+eps")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry must be lazily evicted, len=%d", c.Len())
	}
}

func TestCapacityBound_LRUEviction(t *testing.T) {
	c := New(time.Minute, 3, nil)

	c.Put("a", nil)
	c.Put("b", nil)
	c.Put("c", nil)

	// Touch "a" so "b" becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("want hit on a")
	}

	c.Put("d", nil)

	if c.Len() != 3 {
		t.Fatalf("capacity exceeded: len=%d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("LRU entry b should have been evicted")
	}
	for _, fp := range []string{"a", "c", "d"} {
		if _, ok := c.Get(fp); !ok {
			t.Errorf("entry %s should survive", fp)
		}
	}
}

func TestCapacityBound_ManyInserts(t *testing.T) {
	c := New(time.Minute, 8, nil)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("fp-%d", i), nil)
		if c.Len() > 8 {
			t.Fatalf("insert %d: len %d exceeds capacity", i, c.Len())
		}
	}
}

func TestPut_OverwriteSameFingerprint(t *testing.T) {
	c := New(time.Minute, 2, nil)
	c.Put("fp1", nil)
	c.Put("fp1", []result.Ranked{})
	if c.Len() != 1 {
		t.Fatalf("overwrite must not grow the cache, len=%d", c.Len())
	}
}

func TestInvalidate_Predicate(t *testing.T) {
	c := New(time.Minute, 10, nil)
	c.Put("keep", nil)
	c.Put("drop-1", nil)
	c.Put("drop-2", nil)

	n := c.Invalidate(func(fp string) bool { return fp != "keep" })
	if n != 2 {
		t.Errorf("want 2 removed, got %d", n)
	}
	if _, ok := c.Get("keep"); !ok {
		t.Error("keep should survive")
	}
	if _, ok := c.Get("drop-1"); ok {
		t.Error("drop-1 should be gone")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New(time.Minute, 10, nil)
	c.Put("a", nil)
	c.Put("b", nil)

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Fatalf("want empty cache, len=%d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry must be gone after InvalidateAll")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Minute, 32, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				fp := fmt.Sprintf("fp-%d", (g*7+i)%64)
				c.Put(fp, nil)
				c.Get(fp)
				if i%50 == 0 {
					c.InvalidateAll()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 32 {
		t.Fatalf("capacity violated under concurrency: %d", c.Len())
	}
}
