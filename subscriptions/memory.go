// Package subscriptions holds the in-process implementation of the
// session/URI registry. The SQL-backed implementation for shared
// deployments lives in store/sql.
package subscriptions

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const DefaultSessionTTL = 24 * time.Hour

// InMemoryStore is a mutex-guarded bidirectional index between sessions
// and resource URIs. Liveness is a per-session deadline refreshed on every
// subscribe; expired sessions are pruned lazily when Subscribers reads the
// URI they were attached to.
type InMemoryStore struct {
	mu         sync.Mutex
	byURI      map[string]map[string]struct{}
	bySession  map[string]map[string]struct{}
	liveness   map[string]time.Time
	SessionTTL time.Duration
	Now        func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byURI:      map[string]map[string]struct{}{},
		bySession:  map[string]map[string]struct{}{},
		liveness:   map[string]time.Time{},
		SessionTTL: DefaultSessionTTL,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *InMemoryStore) Subscribe(_ context.Context, sessionID string, uri string) error {
	if s == nil {
		return storeInternal("subscriptions: store is nil", nil)
	}
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byURI[uri] == nil {
		s.byURI[uri] = map[string]struct{}{}
	}
	s.byURI[uri][sessionID] = struct{}{}
	if s.bySession[sessionID] == nil {
		s.bySession[sessionID] = map[string]struct{}{}
	}
	s.bySession[sessionID][uri] = struct{}{}
	s.liveness[sessionID] = s.now().Add(s.sessionTTL())
	return nil
}

func (s *InMemoryStore) Unsubscribe(_ context.Context, sessionID string, uri string) error {
	if s == nil {
		return storeInternal("subscriptions: store is nil", nil)
	}
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removePairLocked(sessionID, uri)
	return nil
}

func (s *InMemoryStore) RemoveSession(_ context.Context, sessionID string) error {
	if s == nil {
		return storeInternal("subscriptions: store is nil", nil)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storeBadInput("subscriptions: session id is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for uri := range s.bySession[sessionID] {
		s.removePairLocked(sessionID, uri)
	}
	delete(s.bySession, sessionID)
	delete(s.liveness, sessionID)
	return nil
}

func (s *InMemoryStore) Subscribers(_ context.Context, uri string) ([]string, error) {
	if s == nil {
		return nil, storeInternal("subscriptions: store is nil", nil)
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, storeBadInput("subscriptions: resource uri is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	live := []string{}
	for sessionID := range s.byURI[uri] {
		deadline, ok := s.liveness[sessionID]
		if !ok || !now.Before(deadline) {
			// Lazy cleanup: the session ended, drop it from this URI's
			// index and retire its liveness record while we are here.
			// Pairs under other URIs prune the same way on their next
			// read, treating the missing record as expired.
			s.removePairLocked(sessionID, uri)
			delete(s.liveness, sessionID)
			continue
		}
		live = append(live, sessionID)
	}
	sort.Strings(live)
	return live, nil
}

func (s *InMemoryStore) SessionResources(_ context.Context, sessionID string) ([]string, error) {
	if s == nil {
		return nil, storeInternal("subscriptions: store is nil", nil)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, storeBadInput("subscriptions: session id is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uris := []string{}
	for uri := range s.bySession[sessionID] {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris, nil
}

func (s *InMemoryStore) IsSubscribed(_ context.Context, sessionID string, uri string) (bool, error) {
	if s == nil {
		return false, storeInternal("subscriptions: store is nil", nil)
	}
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, subscribed := s.bySession[sessionID][uri]
	return subscribed, nil
}

func (s *InMemoryStore) removePairLocked(sessionID string, uri string) {
	if sessions, ok := s.byURI[uri]; ok {
		delete(sessions, sessionID)
		if len(sessions) == 0 {
			delete(s.byURI, uri)
		}
	}
	if uris, ok := s.bySession[sessionID]; ok {
		delete(uris, uri)
		if len(uris) == 0 {
			delete(s.bySession, sessionID)
		}
	}
}

func (s *InMemoryStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *InMemoryStore) sessionTTL() time.Duration {
	if s != nil && s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func normalizePair(sessionID string, uri string) (string, string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", "", storeBadInput("subscriptions: session id is required", nil)
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", "", storeBadInput("subscriptions: resource uri is required", nil)
	}
	return sessionID, uri, nil
}
