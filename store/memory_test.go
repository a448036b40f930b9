package store

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	if _, err := m.Set(ctx, "a", Entry[string]{Value: "1"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entry, ok, err := m.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if entry.Value != "1" {
		t.Errorf("Value = %q, want %q", entry.Value, "1")
	}
	if entry.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", entry.AccessCount)
	}
}

func TestMemory_GetMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	_, ok, err := m.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() hit, want miss")
	}
}

func TestMemory_ExpiredEntryReportsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1", ExpiresAt: time.Now().Add(-time.Second)})

	_, ok, err := m.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() returned expired entry as hit")
	}

	size, _ := m.Size(ctx)
	if size != 0 {
		t.Errorf("Size() = %d after expiry eviction, want 0", size)
	}
}

func TestMemory_LRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{MaxSize: 2})

	mustSet := func(key, val string) {
		t.Helper()
		if _, err := m.Set(ctx, key, Entry[string]{Value: val}); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	mustSet("a", "1")
	mustSet("b", "2")

	// Touch "a" so "b" becomes the LRU victim.
	if _, _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	evicted, err := m.Set(ctx, "c", Entry[string]{Value: "3"})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !evicted {
		t.Error("Set() evicted = false, want true")
	}

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("expected \"b\" to have been evicted")
	}
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Error("expected \"a\" to still be present")
	}
	if _, ok, _ := m.Get(ctx, "c"); !ok {
		t.Error("expected \"c\" to be present")
	}
}

func TestMemory_SetExistingKeyDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{MaxSize: 1})

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1"})
	evicted, err := m.Set(ctx, "a", Entry[string]{Value: "2"})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if evicted {
		t.Error("updating an existing key reported eviction")
	}

	entry, ok, _ := m.Get(ctx, "a")
	if !ok || entry.Value != "2" {
		t.Errorf("Get() = (%v, %v), want (\"2\", true)", entry.Value, ok)
	}
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	if err := m.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1"})
	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if has, _ := m.Has(ctx, "a"); has {
		t.Error("Has() true after Delete()")
	}
}

func TestMemory_ClearResetsState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1"})
	_, _ = m.Set(ctx, "b", Entry[string]{Value: "2"})

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	size, _ := m.Size(ctx)
	if size != 0 {
		t.Errorf("Size() = %d after Clear(), want 0", size)
	}
}

func TestMemory_KeysMostRecentlyUsedFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1"})
	_, _ = m.Set(ctx, "b", Entry[string]{Value: "2"})
	_, _, _ = m.Get(ctx, "a")

	keys, err := m.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
}

func TestMemory_EntriesSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{})

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1"})

	entries, err := m.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if entries["a"].Value != "1" {
		t.Errorf("Entries()[\"a\"].Value = %q, want \"1\"", entries["a"].Value)
	}
}

func TestMemory_SweeperRemovesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](Options{CleanupInterval: 10 * time.Millisecond})
	defer m.Close()

	_, _ = m.Set(ctx, "a", Entry[string]{Value: "1", ExpiresAt: time.Now().Add(5 * time.Millisecond)})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		size, _ := m.Size(ctx)
		if size == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("sweeper did not remove expired entry within deadline")
}
