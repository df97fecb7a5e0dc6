// Package planka wires Planka webhook ingestion to MCP resource change
// notifications: verified webhooks are classified into resource URIs,
// broadcast on a shared channel, and fanned out to the sessions subscribed
// to those resources.
package planka

import "github.com/mintopia/planka-mcp-sub001/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type SubscriptionStore = core.SubscriptionStore

type Publisher = core.Publisher

type Subscriber = core.Subscriber

type Broker = core.Broker

type Notifier = core.Notifier

type Envelope = core.Envelope

type WebhookPayload = core.WebhookPayload

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithSubscriptionStore = core.WithSubscriptionStore
	WithPublisher         = core.WithPublisher
	WithEnqueuer          = core.WithEnqueuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
