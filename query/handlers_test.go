package query

import (
	"context"
	"testing"
)

type stubSubscriptionReader struct {
	resources   map[string][]string
	subscribers map[string][]string
}

func (s *stubSubscriptionReader) SessionResources(_ context.Context, sessionID string) ([]string, error) {
	return s.resources[sessionID], nil
}

func (s *stubSubscriptionReader) IsSubscribed(_ context.Context, sessionID, uri string) (bool, error) {
	for _, existing := range s.resources[sessionID] {
		if existing == uri {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubSubscriptionReader) Subscribers(_ context.Context, uri string) ([]string, error) {
	return s.subscribers[uri], nil
}

func TestSessionResourcesQuery(t *testing.T) {
	reader := &stubSubscriptionReader{
		resources: map[string][]string{
			"sess-a": {"planka://boards/b1", "planka://cards/c1"},
		},
	}
	q := NewSessionResourcesQuery(reader)

	got, err := q.Query(context.Background(), SessionResourcesMessage{SessionID: "sess-a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two resources, got %v", got)
	}
}

func TestSessionResourcesQueryValidates(t *testing.T) {
	q := NewSessionResourcesQuery(&stubSubscriptionReader{})
	if _, err := q.Query(context.Background(), SessionResourcesMessage{}); err == nil {
		t.Fatal("expected validation error for blank session id")
	}
}

func TestIsSubscribedQuery(t *testing.T) {
	reader := &stubSubscriptionReader{
		resources: map[string][]string{
			"sess-a": {"planka://boards/b1"},
		},
	}
	q := NewIsSubscribedQuery(reader)

	subscribed, err := q.Query(context.Background(), IsSubscribedMessage{
		SessionID:   "sess-a",
		ResourceURI: "planka://boards/b1",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !subscribed {
		t.Fatal("expected subscribed pair")
	}

	subscribed, err = q.Query(context.Background(), IsSubscribedMessage{
		SessionID:   "sess-a",
		ResourceURI: "planka://cards/c9",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if subscribed {
		t.Fatal("expected unsubscribed pair")
	}
}

func TestSubscribersQuery(t *testing.T) {
	reader := &stubSubscriptionReader{
		subscribers: map[string][]string{
			"planka://boards/b1": {"sess-a", "sess-b"},
		},
	}
	q := NewSubscribersQuery(reader)

	got, err := q.Query(context.Background(), SubscribersMessage{ResourceURI: "planka://boards/b1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two subscribers, got %v", got)
	}
}

func TestQueriesRequireReader(t *testing.T) {
	var q *IsSubscribedQuery
	if _, err := q.Query(context.Background(), IsSubscribedMessage{SessionID: "s", ResourceURI: "u"}); err == nil {
		t.Fatal("expected dependency error for nil query")
	}
}
