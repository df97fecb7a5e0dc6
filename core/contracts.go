package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// SubscriptionStore is the bidirectional index between MCP session
// identifiers and the resource URIs those sessions watch. Implementations
// keep both directions consistent for every mutation; staleness introduced
// by session expiry is reconciled lazily by Subscribers.
type SubscriptionStore interface {
	// Subscribe registers the session/URI pair and refreshes the session's
	// liveness TTL. Idempotent.
	Subscribe(ctx context.Context, sessionID string, uri string) error
	// Unsubscribe removes the pair from both directions. No-op if absent.
	Unsubscribe(ctx context.Context, sessionID string, uri string) error
	// RemoveSession drops the session from every URI index it belongs to,
	// then deletes the session's own set.
	RemoveSession(ctx context.Context, sessionID string) error
	// Subscribers returns the live sessions watching the URI, pruning any
	// session whose liveness record has expired from that URI's index.
	Subscribers(ctx context.Context, uri string) ([]string, error)
	// SessionResources lists the URIs the session is subscribed to.
	SessionResources(ctx context.Context, sessionID string) ([]string, error)
	// IsSubscribed reports whether the pair exists.
	IsSubscribed(ctx context.Context, sessionID string, uri string) (bool, error)
}

// Message is one payload delivered on a broadcast channel.
type Message struct {
	Channel string
	Body    []byte
}

// Publisher pushes a payload onto a named broadcast channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, body []byte) error
}

// ChannelSubscription is one live attachment to a broadcast channel.
// Delivery is at-most-once: payloads published while nobody is draining
// the subscription may be dropped.
type ChannelSubscription interface {
	Receive() <-chan Message
	Close() error
}

// Subscriber attaches to a named broadcast channel for the lifetime of the
// returned subscription or the context, whichever ends first.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (ChannelSubscription, error)
}

// Broker combines both halves of the broadcast channel.
type Broker interface {
	Publisher
	Subscriber
}

// Notifier receives "session S should refresh URI U" intents from the
// dispatcher. The MCP transport will implement this once it supports
// server-initiated pushes; until then LogNotifier records the intent.
type Notifier interface {
	NotifyResourceChanged(ctx context.Context, sessionID string, uri string) error
}

// JobExecutionMessage is the queue payload handed from the ingestion
// endpoint to the async processor.
type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	// Attempt reports the 1-based delivery attempt for retry accounting.
	Attempt() int
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
