package cache

import (
	"testing"

	"github.com/nhle/ghnotif/internal/github"
)

func notif(id string) github.Notification {
	return github.Notification{
		Stub:   github.Stub{ID: id},
		Target: github.Unknown{},
	}
}

func ids(notifications []github.Notification) []string {
	out := make([]string, len(notifications))
	for i, n := range notifications {
		out[i] = n.Stub.ID
	}
	return out
}

func TestReplaceSwapsContents(t *testing.T) {
	c := New()
	c.Replace([]github.Notification{notif("1"), notif("2")})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.Replace([]github.Notification{notif("3")})
	got := ids(c.Snapshot())
	if len(got) != 1 || got[0] != "3" {
		t.Errorf("after replace, ids = %v, want [3]", got)
	}
}

func TestReplaceCopiesInput(t *testing.T) {
	c := New()
	input := []github.Notification{notif("1"), notif("2")}
	c.Replace(input)

	// Mutating the caller's slice must not leak into the cache.
	input[0] = notif("mutated")

	if got, _ := c.Get(0); got.Stub.ID != "1" {
		t.Errorf("Get(0).ID = %q, want %q", got.Stub.ID, "1")
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	c := New()
	c.Replace([]github.Notification{notif("1"), notif("2"), notif("3")})

	c.Remove("2")

	got := ids(c.Snapshot())
	want := []string{"1", "3"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids = %v, want %v", got, want)
			break
		}
	}
}

func TestRemoveAbsentIDIsNoOp(t *testing.T) {
	c := New()
	c.Replace([]github.Notification{notif("1")})

	c.Remove("nope")

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	c := New()
	c.Replace([]github.Notification{notif("1"), notif("2")})

	snapshot := c.Snapshot()
	c.Remove("1")

	if len(snapshot) != 2 {
		t.Errorf("snapshot len = %d, want 2 after a later Remove", len(snapshot))
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestGetBounds(t *testing.T) {
	c := New()
	c.Replace([]github.Notification{notif("1")})

	if _, ok := c.Get(-1); ok {
		t.Error("Get(-1) must report false")
	}
	if _, ok := c.Get(1); ok {
		t.Error("Get(1) past the end must report false")
	}
	if n, ok := c.Get(0); !ok || n.Stub.ID != "1" {
		t.Errorf("Get(0) = (%v, %t), want id 1", n.Stub.ID, ok)
	}
}

func TestEmptyCache(t *testing.T) {
	c := New()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if got := c.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty", got)
	}
	c.Remove("anything")
}
