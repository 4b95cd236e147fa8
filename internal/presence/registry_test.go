package presence

import (
	"testing"

	"messenger-service/internal/models"
)

type fakeHandle struct {
	name string
}

func (f *fakeHandle) Send(models.Envelope) error { return nil }

func TestLookupReturnsLatestRegisteredHandle(t *testing.T) {
	registry := NewRegistry()
	first := &fakeHandle{name: "first"}
	second := &fakeHandle{name: "second"}

	registry.Register(7, first)
	registry.Register(7, second)

	handle, ok := registry.Lookup(7)
	if !ok {
		t.Fatalf("expected user 7 to be online")
	}
	if handle != second {
		t.Fatalf("expected lookup to return the most recent handle")
	}
}

func TestUnregisterRemovesOnlyCurrentHandle(t *testing.T) {
	registry := NewRegistry()
	stale := &fakeHandle{name: "stale"}
	current := &fakeHandle{name: "current"}

	registry.Register(7, stale)
	registry.Register(7, current)

	// The replaced connection closing must not knock the new one offline.
	if _, removed := registry.Unregister(stale); removed {
		t.Fatalf("unregistering a stale handle must be a no-op")
	}
	if _, ok := registry.Lookup(7); !ok {
		t.Fatalf("expected user 7 to stay online")
	}

	userID, removed := registry.Unregister(current)
	if !removed || userID != 7 {
		t.Fatalf("expected current handle removal to report user 7, got %d %v", userID, removed)
	}
	if _, ok := registry.Lookup(7); ok {
		t.Fatalf("expected user 7 to be offline after unregister")
	}
}

func TestLookupMissIsNotAnError(t *testing.T) {
	registry := NewRegistry()
	if _, ok := registry.Lookup(42); ok {
		t.Fatalf("expected lookup miss for unknown user")
	}
	if registry.Online() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestSnapshotListsRegisteredIdentities(t *testing.T) {
	registry := NewRegistry()
	registry.Register(1, &fakeHandle{name: "a"})
	registry.Register(2, &fakeHandle{name: "b"})

	ids := registry.Snapshot()
	if len(ids) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(ids))
	}
	if registry.Online() != 2 {
		t.Fatalf("expected 2 online, got %d", registry.Online())
	}
}
