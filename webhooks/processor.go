package webhooks

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mintopia/planka-mcp-sub001/classifier"
	"github.com/mintopia/planka-mcp-sub001/core"
)

// Processor is the asynchronous half of ingestion: it classifies one
// webhook payload and, when anything is affected, publishes a normalized
// envelope onto the broadcast channel. Classification is pure and safe to
// redo, so the whole unit can be retried by the queue's retry policy when
// the publish step fails transiently.
type Processor struct {
	Publisher core.Publisher
	Channel   string
	Logger    core.Logger
	Now       func() time.Time
}

func NewProcessor(cfg core.Config, publisher core.Publisher, logger core.Logger) *Processor {
	return &Processor{
		Publisher: publisher,
		Channel:   strings.TrimSpace(cfg.Subscriptions.Channel),
		Logger:    glog.Ensure(logger),
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Process classifies the payload and publishes the resulting envelope. An
// empty classification ends processing with no side effect; that is the
// common case for event types the system does not track.
func (p *Processor) Process(ctx context.Context, payload core.WebhookPayload) error {
	if p == nil || p.Publisher == nil {
		return ingestInternal("webhooks: processor requires a publisher", nil)
	}
	eventType := strings.TrimSpace(payload.Type)
	if eventType == "" {
		return ingestBadInput("webhooks: event type is required", nil)
	}

	uris := classifier.Classify(eventType, payload.Data)
	if len(uris) == 0 {
		return nil
	}

	env := core.Envelope{
		Type:      eventType,
		URIs:      uris,
		Timestamp: p.now().Unix(),
	}
	body, err := core.EncodeEnvelope(env)
	if err != nil {
		return ingestInternal("webhooks: encode envelope", map[string]any{
			"event_type": eventType,
		})
	}
	if err := p.Publisher.Publish(ctx, p.Channel, body); err != nil {
		p.logError(ctx, "envelope publish failed", map[string]any{
			"event_type":    eventType,
			"resource_uris": uris,
			"error":         err.Error(),
		})
		return ingestTransient("webhooks: publish envelope", map[string]any{
			"event_type": eventType,
			"channel":    p.Channel,
		})
	}
	p.logInfo(ctx, "envelope published", map[string]any{
		"event_type":    eventType,
		"resource_uris": uris,
	})
	return nil
}

// ProcessJob unpacks a queue message into a webhook payload and runs it.
// Non-map data is coerced to an empty map; upstream senders are not fully
// trusted to honor the schema.
func (p *Processor) ProcessJob(ctx context.Context, msg *core.JobExecutionMessage) error {
	if msg == nil {
		return ingestBadInput("webhooks: job message is required", nil)
	}
	params := msg.Parameters
	if params == nil {
		params = map[string]any{}
	}
	eventType, _ := params["type"].(string)
	return p.Process(ctx, core.WebhookPayload{
		Type: eventType,
		Data: core.NormalizeData(params["data"]),
	})
}

func (p *Processor) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Processor) logInfo(ctx context.Context, message string, fields map[string]any) {
	if p == nil || p.Logger == nil {
		return
	}
	logger := p.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info(message, flatten(fields)...)
}

func (p *Processor) logError(ctx context.Context, message string, fields map[string]any) {
	if p == nil || p.Logger == nil {
		return
	}
	logger := p.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Error(message, flatten(fields)...)
}
