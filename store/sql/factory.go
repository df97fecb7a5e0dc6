package sqlstore

import (
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the SQL-backed stores off a shared bun handle.
type RepositoryFactory struct {
	db         *bun.DB
	sessionTTL time.Duration

	subscriptionStore *SubscriptionStore
}

func NewRepositoryFactory(sessionTTL time.Duration) *RepositoryFactory {
	return &RepositoryFactory{sessionTTL: sessionTTL}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, sessionTTL time.Duration) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(sessionTTL)
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, sessionTTL time.Duration) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(sessionTTL)
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.subscriptionStore != nil {
		return nil
	}
	store, err := NewSubscriptionStore(f.db, f.sessionTTL)
	if err != nil {
		return err
	}
	f.subscriptionStore = store
	return nil
}

func (f *RepositoryFactory) SubscriptionStore() *SubscriptionStore {
	if f == nil {
		return nil
	}
	return f.subscriptionStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client %T", candidate)
	}
}
