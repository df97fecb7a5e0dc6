package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/mintopia/planka-mcp-sub001/core"
)

const subscriptionCacheKeyPrefix = "planka-mcp::subscriptions::v1"

// CachedSubscriptionStore layers read caching over a base subscription
// store. Only the session-scoped reads are cached: Subscribers is left
// uncached because reading it prunes expired sessions, and serving stale
// subscriber sets would resurrect sessions the base store already dropped.
type CachedSubscriptionStore struct {
	base  core.SubscriptionStore
	cache repositorycache.CacheService
}

func NewCachedSubscriptionStore(
	base core.SubscriptionStore,
	cacheService repositorycache.CacheService,
) (*CachedSubscriptionStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base subscription store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: subscription cache service is required")
	}
	return &CachedSubscriptionStore{base: base, cache: cacheService}, nil
}

// SessionResourcesCacheKey is the deterministic key contract for cached
// session reads: planka-mcp::subscriptions::v1::session::<session_id> with
// the identifier URL-path escaped.
func SessionResourcesCacheKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("sqlstore: session id is required")
	}
	return strings.Join([]string{
		subscriptionCacheKeyPrefix,
		"session",
		url.PathEscape(sessionID),
	}, "::"), nil
}

func (s *CachedSubscriptionStore) Subscribe(ctx context.Context, sessionID string, uri string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	if err := s.base.Subscribe(ctx, sessionID, uri); err != nil {
		return err
	}
	return s.invalidateSession(ctx, sessionID)
}

func (s *CachedSubscriptionStore) Unsubscribe(ctx context.Context, sessionID string, uri string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	if err := s.base.Unsubscribe(ctx, sessionID, uri); err != nil {
		return err
	}
	return s.invalidateSession(ctx, sessionID)
}

func (s *CachedSubscriptionStore) RemoveSession(ctx context.Context, sessionID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	if err := s.base.RemoveSession(ctx, sessionID); err != nil {
		return err
	}
	return s.invalidateSession(ctx, sessionID)
}

func (s *CachedSubscriptionStore) Subscribers(ctx context.Context, uri string) ([]string, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	return s.base.Subscribers(ctx, uri)
}

func (s *CachedSubscriptionStore) SessionResources(ctx context.Context, sessionID string) ([]string, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	cacheKey, err := SessionResourcesCacheKey(sessionID)
	if err != nil {
		return nil, err
	}
	uris, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) ([]string, error) {
		return s.base.SessionResources(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(uris))
	copy(out, uris)
	return out, nil
}

func (s *CachedSubscriptionStore) IsSubscribed(ctx context.Context, sessionID string, uri string) (bool, error) {
	if s == nil || s.base == nil {
		return false, fmt.Errorf("sqlstore: cached subscription store is not configured")
	}
	uri = strings.TrimSpace(uri)
	uris, err := s.SessionResources(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, existing := range uris {
		if existing == uri {
			return true, nil
		}
	}
	return false, nil
}

func (s *CachedSubscriptionStore) invalidateSession(ctx context.Context, sessionID string) error {
	cacheKey, err := SessionResourcesCacheKey(sessionID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.SubscriptionStore = (*CachedSubscriptionStore)(nil)
