package cachestore

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	t.Cleanup(m.Close)
	return m
}

func TestPutGet(t *testing.T) {
	m := newTestStore(t)

	m.Put("project:acme:all", "value", time.Minute, []string{"content-items"})

	ent, ok := m.Get("project:acme:all")
	if !ok {
		t.Fatalf("entry absent after Put")
	}
	if ent.Value.(string) != "value" {
		t.Fatalf("value = %v", ent.Value)
	}
}

func TestGet_ExpiredIsAbsent(t *testing.T) {
	m := newTestStore(t)

	m.mu.Lock()
	m.entries["k"] = Entry{Key: "k", Value: 1, ExpiresAt: time.Now().Add(-time.Second)}
	m.mu.Unlock()

	if _, ok := m.Get("k"); ok {
		t.Fatalf("expired entry served as live")
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not dropped on Get")
	}
}

func TestPut_ZeroTTLIsAbsentOnNextGet(t *testing.T) {
	m := newTestStore(t)

	m.Put("k", "v", 0, nil)
	if _, ok := m.Get("k"); ok {
		t.Fatalf("zero-TTL entry served as live")
	}

	m.Put("k", "v", -time.Second, nil)
	if _, ok := m.Get("k"); ok {
		t.Fatalf("negative-TTL entry served as live")
	}
}

func TestPut_Overwrites(t *testing.T) {
	m := newTestStore(t)

	m.Put("k", "first", time.Minute, nil)
	m.Put("k", "second", time.Minute, nil)

	ent, ok := m.Get("k")
	if !ok || ent.Value.(string) != "second" {
		t.Fatalf("overwrite failed: %+v ok=%v", ent, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
}

func TestInvalidateByTag(t *testing.T) {
	m := newTestStore(t)

	m.Put("a", 1, time.Minute, []string{"content-items", "projects"})
	m.Put("b", 2, time.Minute, []string{"content-items"})
	m.Put("c", 3, time.Minute, []string{"media"})

	if n := m.InvalidateByTag("content-items"); n != 2 {
		t.Fatalf("dropped %d entries, want 2", n)
	}
	if _, ok := m.Get("a"); ok {
		t.Fatalf("tagged entry survived invalidation")
	}
	if _, ok := m.Get("c"); !ok {
		t.Fatalf("untagged entry was dropped")
	}
}

func TestSweep_RemovesExpired(t *testing.T) {
	m := newTestStore(t)

	m.mu.Lock()
	m.entries["dead"] = Entry{Key: "dead", ExpiresAt: time.Now().Add(-time.Minute)}
	m.entries["live"] = Entry{Key: "live", ExpiresAt: time.Now().Add(time.Minute)}
	m.mu.Unlock()

	m.sweep(time.Now())

	if m.Len() != 1 {
		t.Fatalf("len after sweep = %d, want 1", m.Len())
	}
	if _, ok := m.Get("live"); !ok {
		t.Fatalf("live entry swept")
	}
}
