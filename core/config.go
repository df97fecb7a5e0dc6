package core

import (
	"fmt"
	"strings"
	"time"
)

type WebhookConfig struct {
	// Secret is the shared HMAC secret for inbound webhook signatures.
	// Empty disables signature verification.
	Secret string `koanf:"secret" mapstructure:"secret"`
	Path   string `koanf:"path" mapstructure:"path"`
}

type SubscriptionsConfig struct {
	Enabled    bool          `koanf:"enabled" mapstructure:"enabled"`
	Channel    string        `koanf:"channel" mapstructure:"channel"`
	SessionTTL time.Duration `koanf:"session_ttl" mapstructure:"session_ttl"`
}

type ProcessorConfig struct {
	MaxAttempts int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	RetryDelay  time.Duration `koanf:"retry_delay" mapstructure:"retry_delay"`
}

type DispatcherConfig struct {
	NotifyTimeout time.Duration `koanf:"notify_timeout" mapstructure:"notify_timeout"`
}

type Config struct {
	ServiceName   string              `koanf:"service_name" mapstructure:"service_name"`
	Webhook       WebhookConfig       `koanf:"webhook" mapstructure:"webhook"`
	Subscriptions SubscriptionsConfig `koanf:"subscriptions" mapstructure:"subscriptions"`
	Processor     ProcessorConfig     `koanf:"processor" mapstructure:"processor"`
	Dispatcher    DispatcherConfig    `koanf:"dispatcher" mapstructure:"dispatcher"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "planka-mcp",
		Webhook: WebhookConfig{
			Path: "/planka-webhook",
		},
		Subscriptions: SubscriptionsConfig{
			Enabled:    true,
			Channel:    "planka:notifications",
			SessionTTL: 24 * time.Hour,
		},
		Processor: ProcessorConfig{
			MaxAttempts: 3,
			RetryDelay:  10 * time.Second,
		},
		Dispatcher: DispatcherConfig{
			NotifyTimeout: 5 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Subscriptions.Channel) == "" {
		return fmt.Errorf("core: subscriptions.channel is required")
	}
	if c.Subscriptions.SessionTTL <= 0 {
		return fmt.Errorf("core: subscriptions.session_ttl must be positive")
	}
	if c.Processor.MaxAttempts < 1 {
		return fmt.Errorf("core: processor.max_attempts must be at least 1")
	}
	if c.Processor.RetryDelay < 0 {
		return fmt.Errorf("core: processor.retry_delay must not be negative")
	}
	if c.Dispatcher.NotifyTimeout < 0 {
		return fmt.Errorf("core: dispatcher.notify_timeout must not be negative")
	}
	return nil
}
