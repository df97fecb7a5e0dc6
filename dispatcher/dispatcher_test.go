package dispatcher

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mintopia/planka-mcp-sub001/broker"
	"github.com/mintopia/planka-mcp-sub001/classifier"
	"github.com/mintopia/planka-mcp-sub001/core"
	"github.com/mintopia/planka-mcp-sub001/subscriptions"
)

type recordingNotifier struct {
	mu      sync.Mutex
	intents []string
}

func (n *recordingNotifier) NotifyResourceChanged(_ context.Context, sessionID, uri string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, sessionID+" "+uri)
	return nil
}

func (n *recordingNotifier) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.intents))
	copy(out, n.intents)
	sort.Strings(out)
	return out
}

func TestDispatchEnvelopeNotifiesSubscribedSessions(t *testing.T) {
	ctx := context.Background()
	store := subscriptions.NewInMemoryStore()
	boardURI := classifier.BoardURI("b1")
	cardURI := classifier.CardURI("c1")

	if err := store.Subscribe(ctx, "sess-a", boardURI); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := store.Subscribe(ctx, "sess-b", boardURI); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := store.Subscribe(ctx, "sess-c", cardURI); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := &recordingNotifier{}
	d := New(core.DefaultConfig(), nil, store, notifier, nil)

	d.DispatchEnvelope(ctx, core.Envelope{
		Type: "boardUpdate",
		URIs: []string{boardURI},
	})

	got := notifier.snapshot()
	want := []string{"sess-a " + boardURI, "sess-b " + boardURI}
	if len(got) != len(want) {
		t.Fatalf("expected intents %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected intents %v, got %v", want, got)
		}
	}
}

func TestDispatchEnvelopeSkipsUnrelatedSessions(t *testing.T) {
	ctx := context.Background()
	store := subscriptions.NewInMemoryStore()
	if err := store.Subscribe(ctx, "sess-a", classifier.CardURI("c1")); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := &recordingNotifier{}
	d := New(core.DefaultConfig(), nil, store, notifier, nil)

	d.DispatchEnvelope(ctx, core.Envelope{
		Type: "boardUpdate",
		URIs: []string{classifier.BoardURI("b1")},
	})

	if got := notifier.snapshot(); len(got) != 0 {
		t.Fatalf("expected no intents for unrelated session, got %v", got)
	}
}

func TestRunDispatchesBroadcastMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inproc := broker.NewInProcessBroker()
	defer inproc.Close()

	store := subscriptions.NewInMemoryStore()
	listCardsURI := classifier.ListCardsURI("l1")
	if err := store.Subscribe(ctx, "sess-a", listCardsURI); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := &recordingNotifier{}
	cfg := core.DefaultConfig()
	d := New(cfg, inproc, store, notifier, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	// Give the run loop a beat to attach its subscription.
	time.Sleep(20 * time.Millisecond)

	body, err := core.EncodeEnvelope(core.Envelope{
		Type:      "cardCreate",
		URIs:      []string{listCardsURI},
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	if err := inproc.Publish(ctx, cfg.Subscriptions.Channel, body); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if got := notifier.snapshot(); len(got) == 1 && got[0] == "sess-a "+listCardsURI {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for intent, got %v", notifier.snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop on context cancel")
	}
}

func TestRunSkipsMalformedEnvelope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inproc := broker.NewInProcessBroker()
	defer inproc.Close()

	store := subscriptions.NewInMemoryStore()
	boardURI := classifier.BoardURI("b1")
	if err := store.Subscribe(ctx, "sess-a", boardURI); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := &recordingNotifier{}
	cfg := core.DefaultConfig()
	d := New(cfg, inproc, store, notifier, nil)

	go func() { _ = d.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	if err := inproc.Publish(ctx, cfg.Subscriptions.Channel, []byte("not-json")); err != nil {
		t.Fatalf("publish malformed: %v", err)
	}
	body, err := core.EncodeEnvelope(core.Envelope{
		Type: "boardUpdate",
		URIs: []string{boardURI},
	})
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	if err := inproc.Publish(ctx, cfg.Subscriptions.Channel, body); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if got := notifier.snapshot(); len(got) == 1 && got[0] == "sess-a "+boardURI {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for intent after malformed envelope, got %v", notifier.snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestLogNotifierRejectsBlankIdentifiers(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.NotifyResourceChanged(context.Background(), " ", classifier.BoardURI("b1")); err == nil {
		t.Fatal("expected error for blank session id")
	}
	if err := n.NotifyResourceChanged(context.Background(), "sess-a", ""); err == nil {
		t.Fatal("expected error for blank uri")
	}
	if err := n.NotifyResourceChanged(context.Background(), "sess-a", classifier.BoardURI("b1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
