package core

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Webhook.Path != "/planka-webhook" {
		t.Fatalf("unexpected webhook path %q", cfg.Webhook.Path)
	}
	if cfg.Subscriptions.Channel != "planka:notifications" {
		t.Fatalf("unexpected channel %q", cfg.Subscriptions.Channel)
	}
	if cfg.Subscriptions.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.Subscriptions.SessionTTL)
	}
	if cfg.Processor.MaxAttempts != 3 || cfg.Processor.RetryDelay != 10*time.Second {
		t.Fatalf("unexpected processor defaults %+v", cfg.Processor)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank service name", func(c *Config) { c.ServiceName = " " }},
		{"blank channel", func(c *Config) { c.Subscriptions.Channel = "" }},
		{"zero session ttl", func(c *Config) { c.Subscriptions.SessionTTL = 0 }},
		{"zero max attempts", func(c *Config) { c.Processor.MaxAttempts = 0 }},
		{"negative retry delay", func(c *Config) { c.Processor.RetryDelay = -time.Second }},
		{"negative notify timeout", func(c *Config) { c.Dispatcher.NotifyTimeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOptionsResolverPrecedence(t *testing.T) {
	defaults := DefaultConfig()

	loaded := Config{}
	loaded.Webhook.Secret = "from-config"
	loaded.Processor.MaxAttempts = 5

	runtime := Config{}
	runtime.Webhook.Secret = "from-runtime"

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Webhook.Secret != "from-runtime" {
		t.Fatalf("expected runtime layer to win, got %q", resolved.Webhook.Secret)
	}
	if resolved.Processor.MaxAttempts != 5 {
		t.Fatalf("expected config layer value, got %d", resolved.Processor.MaxAttempts)
	}
	if resolved.Subscriptions.Channel != defaults.Subscriptions.Channel {
		t.Fatalf("expected default channel, got %q", resolved.Subscriptions.Channel)
	}
}

func TestCfgxConfigProviderAppliesRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{
		Values: map[string]any{
			"webhook": map[string]any{
				"secret": "raw-secret",
			},
		},
	})

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Webhook.Secret != "raw-secret" {
		t.Fatalf("expected raw secret applied, got %q", cfg.Webhook.Secret)
	}
	if cfg.ServiceName != "planka-mcp" {
		t.Fatalf("expected defaults preserved, got %q", cfg.ServiceName)
	}
}
