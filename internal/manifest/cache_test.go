package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCacheDiscover(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts/utils.clar"), "(ok true)")

	c := NewCache()
	p := newTestParser()

	ds, _ := c.Discover(p, root)
	if len(ds) != 1 {
		t.Fatalf("got %v, want one contract", names(ds))
	}

	// A second contract appears but the cache still serves the old view.
	writeFile(t, filepath.Join(root, "contracts/extra.clar"), "(ok true)")
	ds, _ = c.Discover(p, root)
	if len(ds) != 1 {
		t.Fatalf("cached result should be served, got %v", names(ds))
	}

	c.Invalidate(root)
	ds, _ = c.Discover(p, root)
	if len(ds) != 2 {
		t.Fatalf("after invalidation got %v, want two contracts", names(ds))
	}
}

func TestCacheEntriesAreScopedPerDirectory(t *testing.T) {
	t.Parallel()
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, filepath.Join(rootA, "contracts/a.clar"), "(ok true)")
	writeFile(t, filepath.Join(rootB, "contracts/b.clar"), "(ok true)")

	c := NewCache()
	p := newTestParser()
	c.Discover(p, rootA)
	c.Discover(p, rootB)

	c.Invalidate(rootA)
	if _, _, ok := c.Get(rootA); ok {
		t.Error("rootA entry should be gone")
	}
	if _, _, ok := c.Get(rootB); !ok {
		t.Error("rootB entry should survive")
	}
}

func TestWatcherInvalidatesOnContractChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts/utils.clar"), "(ok true)")

	c := NewCache()
	p := newTestParser()
	c.Discover(p, root)

	w, err := WatchDirectory(c, root, zerolog.Nop())
	if err != nil {
		t.Fatalf("WatchDirectory: %v", err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(root, "contracts/utils.clar"), "(ok false)")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, ok := c.Get(root); !ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("cache entry was not invalidated after a contract write")
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	c := NewCache()
	c.Put(root, nil, Stats{})

	w, err := WatchDirectory(c, root, zerolog.Nop())
	if err != nil {
		t.Fatalf("WatchDirectory: %v", err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(root, "notes.txt"), "nothing to see")

	time.Sleep(400 * time.Millisecond)
	if _, _, ok := c.Get(root); !ok {
		t.Error("unrelated file writes must not invalidate the cache")
	}
}
