package subscriptions

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestInMemoryStore_SubscribeIsBidirectionalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Subscribe(ctx, "sess-1", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := store.Subscribe(ctx, "sess-1", "planka://boards/b1"); err != nil {
		t.Fatalf("repeat subscribe: %v", err)
	}

	subscribed, err := store.IsSubscribed(ctx, "sess-1", "planka://boards/b1")
	if err != nil {
		t.Fatalf("is subscribed: %v", err)
	}
	if !subscribed {
		t.Fatalf("expected subscription to exist")
	}

	uris, err := store.SessionResources(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session resources: %v", err)
	}
	if !reflect.DeepEqual(uris, []string{"planka://boards/b1"}) {
		t.Fatalf("unexpected session uris: %#v", uris)
	}

	sessions, err := store.Subscribers(ctx, "planka://boards/b1")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if !reflect.DeepEqual(sessions, []string{"sess-1"}) {
		t.Fatalf("unexpected subscribers: %#v", sessions)
	}
}

func TestInMemoryStore_UnsubscribeRemovesBothDirections(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Subscribe(ctx, "sess-1", "planka://cards/c1"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := store.Unsubscribe(ctx, "sess-1", "planka://cards/c1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := store.Unsubscribe(ctx, "sess-1", "planka://cards/c1"); err != nil {
		t.Fatalf("repeat unsubscribe should be a no-op: %v", err)
	}

	subscribed, err := store.IsSubscribed(ctx, "sess-1", "planka://cards/c1")
	if err != nil {
		t.Fatalf("is subscribed: %v", err)
	}
	if subscribed {
		t.Fatalf("expected subscription removed")
	}
	sessions, err := store.Subscribers(ctx, "planka://cards/c1")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no subscribers, got %#v", sessions)
	}
}

func TestInMemoryStore_ExpiredSessionsArePrunedOnRead(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return current }

	if err := store.Subscribe(ctx, "sess-stale", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe stale: %v", err)
	}
	current = current.Add(time.Hour)
	if err := store.Subscribe(ctx, "sess-live", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe live: %v", err)
	}

	// Past the stale session's 24h deadline, before the live one's.
	current = current.Add(23*time.Hour + time.Minute)

	sessions, err := store.Subscribers(ctx, "planka://boards/b1")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if !reflect.DeepEqual(sessions, []string{"sess-live"}) {
		t.Fatalf("expected only live session, got %#v", sessions)
	}

	// Lazy cleanup removed the stale pair from both directions.
	subscribed, err := store.IsSubscribed(ctx, "sess-stale", "planka://boards/b1")
	if err != nil {
		t.Fatalf("is subscribed: %v", err)
	}
	if subscribed {
		t.Fatalf("expected stale subscription pruned")
	}
}

func TestInMemoryStore_PruneRetiresLivenessRecord(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return current }

	if err := store.Subscribe(ctx, "sess-stale", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	current = current.Add(25 * time.Hour)

	if _, err := store.Subscribers(ctx, "planka://boards/b1"); err != nil {
		t.Fatalf("subscribers: %v", err)
	}

	store.mu.Lock()
	_, tracked := store.liveness["sess-stale"]
	store.mu.Unlock()
	if tracked {
		t.Fatalf("expected liveness record retired with the pruned session")
	}
}

func TestInMemoryStore_SubscribeRefreshesLiveness(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return current }

	if err := store.Subscribe(ctx, "sess-1", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	current = current.Add(23 * time.Hour)
	if err := store.Subscribe(ctx, "sess-1", "planka://cards/c1"); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	// 25h after the first subscribe but only 2h after the refresh.
	current = current.Add(2 * time.Hour)

	sessions, err := store.Subscribers(ctx, "planka://boards/b1")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if !reflect.DeepEqual(sessions, []string{"sess-1"}) {
		t.Fatalf("expected refreshed session alive, got %#v", sessions)
	}
}

func TestInMemoryStore_RemoveSessionClearsEveryIndex(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for _, uri := range []string{"planka://boards/b1", "planka://cards/c1"} {
		if err := store.Subscribe(ctx, "sess-1", uri); err != nil {
			t.Fatalf("subscribe %s: %v", uri, err)
		}
	}
	if err := store.Subscribe(ctx, "sess-2", "planka://boards/b1"); err != nil {
		t.Fatalf("subscribe other session: %v", err)
	}

	if err := store.RemoveSession(ctx, "sess-1"); err != nil {
		t.Fatalf("remove session: %v", err)
	}

	uris, err := store.SessionResources(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session resources: %v", err)
	}
	if len(uris) != 0 {
		t.Fatalf("expected empty session set, got %#v", uris)
	}
	sessions, err := store.Subscribers(ctx, "planka://boards/b1")
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if !reflect.DeepEqual(sessions, []string{"sess-2"}) {
		t.Fatalf("expected only remaining session, got %#v", sessions)
	}
}

func TestInMemoryStore_RejectsBlankIdentifiers(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Subscribe(ctx, "  ", "planka://boards/b1"); err == nil {
		t.Fatalf("expected blank session id rejected")
	}
	if err := store.Subscribe(ctx, "sess-1", ""); err == nil {
		t.Fatalf("expected blank uri rejected")
	}
	if _, err := store.Subscribers(ctx, " "); err == nil {
		t.Fatalf("expected blank uri rejected")
	}
}
