package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type subscriptionRecord struct {
	bun.BaseModel `bun:"table:planka_subscriptions,alias:ps"`

	ID          string    `bun:"id,pk"`
	SessionID   string    `bun:"session_id,notnull"`
	ResourceURI string    `bun:"resource_uri,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type sessionRecord struct {
	bun.BaseModel `bun:"table:planka_sessions,alias:psn"`

	SessionID string    `bun:"session_id,pk"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
