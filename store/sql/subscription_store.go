package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/mintopia/planka-mcp-sub001/core"
	"github.com/uptrace/bun"
)

// SubscriptionStore is the bun-backed subscription registry for deployments
// where the in-memory index is not enough: the session/URI pairs and the
// session liveness records survive restarts and are shared across replicas.
// Expired sessions are pruned lazily from the URI being read, never eagerly.
type SubscriptionStore struct {
	db          *bun.DB
	repo        repository.Repository[*subscriptionRecord]
	sessionRepo repository.Repository[*sessionRecord]

	SessionTTL time.Duration
	Now        func() time.Time
}

func NewSubscriptionStore(db *bun.DB, sessionTTL time.Duration) (*SubscriptionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	repo := repository.NewRepository[*subscriptionRecord](db, subscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscription repository wiring: %w", err)
		}
	}
	sessionRepo := repository.NewRepository[*sessionRecord](db, sessionHandlers())
	if validator, ok := sessionRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid session repository wiring: %w", err)
		}
	}
	return &SubscriptionStore{
		db:          db,
		repo:        repo,
		sessionRepo: sessionRepo,
		SessionTTL:  sessionTTL,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *SubscriptionStore) Subscribe(ctx context.Context, sessionID string, uri string) error {
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	now := s.now()
	expires := now.Add(s.ttl())

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		session := &sessionRecord{
			SessionID: sessionID,
			ExpiresAt: expires,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().
			Model(session).
			On("CONFLICT (session_id) DO UPDATE").
			Set("expires_at = EXCLUDED.expires_at").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return err
		}

		exists, err := tx.NewSelect().
			Model((*subscriptionRecord)(nil)).
			Where("session_id = ?", sessionID).
			Where("resource_uri = ?", uri).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		record := &subscriptionRecord{
			ID:          uuid.NewString(),
			SessionID:   sessionID,
			ResourceURI: uri,
			CreatedAt:   now,
		}
		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

func (s *SubscriptionStore) Unsubscribe(ctx context.Context, sessionID string, uri string) error {
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	_, err = s.db.NewDelete().
		Model((*subscriptionRecord)(nil)).
		Where("session_id = ?", sessionID).
		Where("resource_uri = ?", uri).
		Exec(ctx)
	return err
}

func (s *SubscriptionStore) RemoveSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*subscriptionRecord)(nil)).
			Where("session_id = ?", sessionID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*sessionRecord)(nil)).
			Where("session_id = ?", sessionID).
			Exec(ctx)
		return err
	})
}

func (s *SubscriptionStore) Subscribers(ctx context.Context, uri string) ([]string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("sqlstore: resource uri is required")
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	now := s.now()

	var live []string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var records []subscriptionRecord
		if err := tx.NewSelect().
			Model(&records).
			Where("resource_uri = ?", uri).
			Scan(ctx); err != nil {
			return err
		}

		var expired []string
		for _, record := range records {
			alive, err := s.sessionAliveTx(ctx, tx, record.SessionID, now)
			if err != nil {
				return err
			}
			if alive {
				live = append(live, record.SessionID)
			} else {
				expired = append(expired, record.SessionID)
			}
		}
		if len(expired) == 0 {
			return nil
		}
		if _, err := tx.NewDelete().
			Model((*subscriptionRecord)(nil)).
			Where("session_id IN (?)", bun.In(expired)).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*sessionRecord)(nil)).
			Where("session_id IN (?)", bun.In(expired)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(live)
	return live, nil
}

func (s *SubscriptionStore) SessionResources(ctx context.Context, sessionID string) ([]string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("sqlstore: session id is required")
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	var uris []string
	err := s.db.NewSelect().
		Model((*subscriptionRecord)(nil)).
		Column("resource_uri").
		Where("session_id = ?", sessionID).
		Order("resource_uri ASC").
		Scan(ctx, &uris)
	if err != nil {
		return nil, err
	}
	return uris, nil
}

func (s *SubscriptionStore) IsSubscribed(ctx context.Context, sessionID string, uri string) (bool, error) {
	sessionID, uri, err := normalizePair(sessionID, uri)
	if err != nil {
		return false, err
	}
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	return s.db.NewSelect().
		Model((*subscriptionRecord)(nil)).
		Where("session_id = ?", sessionID).
		Where("resource_uri = ?", uri).
		Exists(ctx)
}

func (s *SubscriptionStore) sessionAliveTx(ctx context.Context, tx bun.Tx, sessionID string, now time.Time) (bool, error) {
	session := new(sessionRecord)
	err := tx.NewSelect().
		Model(session).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return session.ExpiresAt.After(now), nil
}

func (s *SubscriptionStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SubscriptionStore) ttl() time.Duration {
	if s != nil && s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func normalizePair(sessionID, uri string) (string, string, error) {
	sessionID = strings.TrimSpace(sessionID)
	uri = strings.TrimSpace(uri)
	if sessionID == "" {
		return "", "", fmt.Errorf("sqlstore: session id is required")
	}
	if uri == "" {
		return "", "", fmt.Errorf("sqlstore: resource uri is required")
	}
	return sessionID, uri, nil
}

var _ core.SubscriptionStore = (*SubscriptionStore)(nil)
