package dispatcher

import (
	"context"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mintopia/planka-mcp-sub001/core"
)

const DefaultNotifyTimeout = 5 * time.Second

// Dispatcher is the fan-out half of the pipeline. It holds one broadcast
// subscription for the life of the process, resolves each envelope's
// resource URIs against the subscription store, and emits one notification
// intent per live subscriber. Delivery is at-most-once: envelopes broadcast
// while the dispatcher is down are never replayed.
type Dispatcher struct {
	Subscriber    core.Subscriber
	Store         core.SubscriptionStore
	Notifier      core.Notifier
	Logger        core.Logger
	Channel       string
	NotifyTimeout time.Duration
}

func New(cfg core.Config, subscriber core.Subscriber, store core.SubscriptionStore, notifier core.Notifier, logger core.Logger) *Dispatcher {
	timeout := cfg.Dispatcher.NotifyTimeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Dispatcher{
		Subscriber:    subscriber,
		Store:         store,
		Notifier:      notifier,
		Logger:        glog.Ensure(logger),
		Channel:       strings.TrimSpace(cfg.Subscriptions.Channel),
		NotifyTimeout: timeout,
	}
}

// Run subscribes to the broadcast channel and dispatches until the context
// ends or the subscription closes. Malformed envelopes are logged and
// skipped; they never stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d == nil || d.Subscriber == nil || d.Store == nil || d.Notifier == nil {
		return dispatchInternal("dispatcher: subscriber, store, and notifier are required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	subscription, err := d.Subscriber.Subscribe(ctx, d.Channel)
	if err != nil {
		return err
	}
	defer subscription.Close()

	for {
		select {
		case msg, ok := <-subscription.Receive():
			if !ok {
				return nil
			}
			d.dispatch(ctx, msg)
		case <-ctx.Done():
			return nil
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg core.Message) {
	env, err := core.DecodeEnvelope(msg.Body)
	if err != nil {
		d.logError(ctx, "envelope decode failed", map[string]any{
			"channel": msg.Channel,
			"error":   err.Error(),
		})
		return
	}
	d.DispatchEnvelope(ctx, env)
}

// DispatchEnvelope resolves subscribers for every URI in the envelope and
// notifies each session once per URI. Notifications run concurrently, each
// bounded by the notify timeout, and the call returns once all complete.
func (d *Dispatcher) DispatchEnvelope(ctx context.Context, env core.Envelope) {
	if d == nil || d.Store == nil || d.Notifier == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var wg sync.WaitGroup
	notified := 0
	for _, uri := range env.URIs {
		sessions, err := d.Store.Subscribers(ctx, uri)
		if err != nil {
			d.logError(ctx, "subscriber lookup failed", map[string]any{
				"resource_uri": uri,
				"error":        err.Error(),
			})
			continue
		}
		for _, sessionID := range sessions {
			notified++
			wg.Add(1)
			go func(sessionID, uri string) {
				defer wg.Done()
				d.notify(ctx, sessionID, uri)
			}(sessionID, uri)
		}
	}
	wg.Wait()

	d.logInfo(ctx, "envelope dispatched", map[string]any{
		"event_type":    env.Type,
		"resource_uris": env.URIs,
		"notified":      notified,
	})
}

func (d *Dispatcher) notify(ctx context.Context, sessionID, uri string) {
	notifyCtx, cancel := context.WithTimeout(ctx, d.notifyTimeout())
	defer cancel()
	if err := d.Notifier.NotifyResourceChanged(notifyCtx, sessionID, uri); err != nil {
		d.logError(ctx, "notification failed", map[string]any{
			"session_id":   sessionID,
			"resource_uri": uri,
			"error":        err.Error(),
		})
	}
}

func (d *Dispatcher) notifyTimeout() time.Duration {
	if d != nil && d.NotifyTimeout > 0 {
		return d.NotifyTimeout
	}
	return DefaultNotifyTimeout
}

func (d *Dispatcher) logInfo(ctx context.Context, message string, fields map[string]any) {
	if d == nil || d.Logger == nil {
		return
	}
	logger := d.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info(message, flatten(fields)...)
}

func (d *Dispatcher) logError(ctx context.Context, message string, fields map[string]any) {
	if d == nil || d.Logger == nil {
		return
	}
	logger := d.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Error(message, flatten(fields)...)
}
