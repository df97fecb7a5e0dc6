package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the subscription surface the MCP tool layer drives. It wraps
// the registry store with validation and structured operation logging; the
// pipeline components (ingestion, processor, dispatcher) are wired against
// the same store and publisher independently.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	subscriptionStore SubscriptionStore
	publisher         Publisher
	enqueuer          JobEnqueuer
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("planka-mcp", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("planka-mcp"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		subscriptionStore: builder.subscriptionStore,
		publisher:         builder.publisher,
		enqueuer:          builder.enqueuer,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Logger() Logger {
	if s == nil {
		return glog.Nop()
	}
	return s.logger
}

func (s *Service) SubscriptionStore() SubscriptionStore {
	if s == nil {
		return nil
	}
	return s.subscriptionStore
}

func (s *Service) Publisher() Publisher {
	if s == nil {
		return nil
	}
	return s.publisher
}

func (s *Service) Enqueuer() JobEnqueuer {
	if s == nil {
		return nil
	}
	return s.enqueuer
}

func (s *Service) Subscribe(ctx context.Context, sessionID string, uri string) error {
	startedAt := time.Now()
	sessionID, uri, err := s.validatePair(sessionID, uri)
	if err != nil {
		return s.mapError(err)
	}
	err = s.subscriptionStore.Subscribe(ctx, sessionID, uri)
	s.observeOperation(ctx, startedAt, "subscription.subscribe", err, map[string]any{
		"session_id":   sessionID,
		"resource_uri": uri,
	})
	return s.mapError(err)
}

func (s *Service) Unsubscribe(ctx context.Context, sessionID string, uri string) error {
	startedAt := time.Now()
	sessionID, uri, err := s.validatePair(sessionID, uri)
	if err != nil {
		return s.mapError(err)
	}
	err = s.subscriptionStore.Unsubscribe(ctx, sessionID, uri)
	s.observeOperation(ctx, startedAt, "subscription.unsubscribe", err, map[string]any{
		"session_id":   sessionID,
		"resource_uri": uri,
	})
	return s.mapError(err)
}

func (s *Service) RemoveSession(ctx context.Context, sessionID string) error {
	startedAt := time.Now()
	if s == nil || s.subscriptionStore == nil {
		return s.mapError(fmt.Errorf("core: subscription store is required"))
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return s.mapError(fmt.Errorf("core: session id is required"))
	}
	err := s.subscriptionStore.RemoveSession(ctx, sessionID)
	s.observeOperation(ctx, startedAt, "subscription.remove_session", err, map[string]any{
		"session_id": sessionID,
	})
	return s.mapError(err)
}

func (s *Service) SessionResources(ctx context.Context, sessionID string) ([]string, error) {
	if s == nil || s.subscriptionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: subscription store is required"))
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, s.mapError(fmt.Errorf("core: session id is required"))
	}
	uris, err := s.subscriptionStore.SessionResources(ctx, sessionID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return uris, nil
}

func (s *Service) Subscribers(ctx context.Context, uri string) ([]string, error) {
	if s == nil || s.subscriptionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: subscription store is required"))
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, s.mapError(fmt.Errorf("core: resource uri is required"))
	}
	sessions, err := s.subscriptionStore.Subscribers(ctx, uri)
	if err != nil {
		return nil, s.mapError(err)
	}
	return sessions, nil
}

func (s *Service) IsSubscribed(ctx context.Context, sessionID string, uri string) (bool, error) {
	sessionID, uri, err := s.validatePair(sessionID, uri)
	if err != nil {
		return false, s.mapError(err)
	}
	subscribed, err := s.subscriptionStore.IsSubscribed(ctx, sessionID, uri)
	if err != nil {
		return false, s.mapError(err)
	}
	return subscribed, nil
}

func (s *Service) validatePair(sessionID string, uri string) (string, string, error) {
	if s == nil || s.subscriptionStore == nil {
		return "", "", fmt.Errorf("core: subscription store is required")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", "", fmt.Errorf("core: session id is required")
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", "", fmt.Errorf("core: resource uri is required")
	}
	return sessionID, uri, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
