package gateway

import (
	"testing"
	"time"
)

func TestRegistry_PutGetRemove(t *testing.T) {
	r := NewRegistry(10)
	art := &Artifact{MessageID: "m1", OwnerID: "u1", CreatedAt: time.Now()}

	r.Put(art)
	got, ok := r.Get("m1")
	if !ok || got.OwnerID != "u1" {
		t.Fatalf("Get(m1) = %+v, %v", got, ok)
	}

	r.Remove("m1")
	if _, ok := r.Get("m1"); ok {
		t.Error("artifact still present after Remove")
	}
}

func TestRegistry_EvictsOldest(t *testing.T) {
	r := NewRegistry(2)
	base := time.Now()

	r.Put(&Artifact{MessageID: "old", CreatedAt: base})
	r.Put(&Artifact{MessageID: "mid", CreatedAt: base.Add(time.Second)})
	r.Put(&Artifact{MessageID: "new", CreatedAt: base.Add(2 * time.Second)})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Get("old"); ok {
		t.Error("oldest artifact should have been evicted")
	}
	if _, ok := r.Get("mid"); !ok {
		t.Error("mid artifact missing")
	}
	if _, ok := r.Get("new"); !ok {
		t.Error("new artifact missing")
	}
}

func TestRegistry_UpdateDoesNotEvict(t *testing.T) {
	r := NewRegistry(2)
	base := time.Now()

	r.Put(&Artifact{MessageID: "a", CreatedAt: base})
	r.Put(&Artifact{MessageID: "b", CreatedAt: base.Add(time.Second)})
	// Re-putting an existing ID replaces it in place.
	r.Put(&Artifact{MessageID: "a", OwnerID: "updated", CreatedAt: base})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	got, _ := r.Get("a")
	if got.OwnerID != "updated" {
		t.Errorf("OwnerID = %q, want updated", got.OwnerID)
	}
}
