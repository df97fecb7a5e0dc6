package webhooks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mintopia/planka-mcp-sub001/classifier"
	"github.com/mintopia/planka-mcp-sub001/core"
)

type stubPublisher struct {
	published []core.Message
	err       error
}

func (s *stubPublisher) Publish(ctx context.Context, channel string, body []byte) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, core.Message{Channel: channel, Body: body})
	return nil
}

func TestProcessPublishesEnvelope(t *testing.T) {
	publisher := &stubPublisher{}
	processor := NewProcessor(core.DefaultConfig(), publisher, nil)
	fixed := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	processor.Now = func() time.Time { return fixed }

	err := processor.Process(context.Background(), core.WebhookPayload{
		Type: "cardCreate",
		Data: map[string]any{"item": map[string]any{"boardId": "b1", "listId": "l1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected one published envelope, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.Channel != "planka:notifications" {
		t.Fatalf("unexpected channel %q", msg.Channel)
	}
	env, err := core.DecodeEnvelope(msg.Body)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != "cardCreate" {
		t.Fatalf("unexpected envelope type %q", env.Type)
	}
	if env.Timestamp != fixed.Unix() {
		t.Fatalf("expected timestamp %d, got %d", fixed.Unix(), env.Timestamp)
	}
	want := []string{classifier.BoardURI("b1"), classifier.ListCardsURI("l1")}
	if len(env.URIs) != len(want) {
		t.Fatalf("expected uris %v, got %v", want, env.URIs)
	}
	for i := range want {
		if env.URIs[i] != want[i] {
			t.Fatalf("expected uris %v, got %v", want, env.URIs)
		}
	}
}

func TestProcessSkipsEmptyClassification(t *testing.T) {
	publisher := &stubPublisher{}
	processor := NewProcessor(core.DefaultConfig(), publisher, nil)

	err := processor.Process(context.Background(), core.WebhookPayload{
		Type: "userUpdate",
		Data: map[string]any{"item": map[string]any{"id": "u1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("expected no publish for untracked event, got %d", len(publisher.published))
	}
}

func TestProcessReturnsTransientOnPublishFailure(t *testing.T) {
	publisher := &stubPublisher{err: fmt.Errorf("broker unavailable")}
	processor := NewProcessor(core.DefaultConfig(), publisher, nil)

	err := processor.Process(context.Background(), core.WebhookPayload{
		Type: "boardUpdate",
		Data: map[string]any{"item": map[string]any{"id": "b1"}},
	})
	if err == nil {
		t.Fatal("expected error when publish fails")
	}
}

func TestProcessJobUnpacksParameters(t *testing.T) {
	publisher := &stubPublisher{}
	processor := NewProcessor(core.DefaultConfig(), publisher, nil)

	err := processor.ProcessJob(context.Background(), &core.JobExecutionMessage{
		JobID: JobIDProcessWebhook,
		Parameters: map[string]any{
			"type": "notificationCreate",
			"data": map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(publisher.published))
	}
	env, err := core.DecodeEnvelope(publisher.published[0].Body)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(env.URIs) != 1 || env.URIs[0] != classifier.NotificationsURI {
		t.Fatalf("expected notifications uri, got %v", env.URIs)
	}
}

func TestProcessJobToleratesMalformedData(t *testing.T) {
	publisher := &stubPublisher{}
	processor := NewProcessor(core.DefaultConfig(), publisher, nil)

	err := processor.ProcessJob(context.Background(), &core.JobExecutionMessage{
		JobID: JobIDProcessWebhook,
		Parameters: map[string]any{
			"type": "cardUpdate",
			"data": "not-a-map",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("expected no publish without identifiers, got %d", len(publisher.published))
	}
}
