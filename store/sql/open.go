package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// OpenDatabase opens a driver handle and pairs it with the matching bun
// dialect so callers can hand both straight to the persistence client.
func OpenDatabase(driver string, dsn string) (*sql.DB, schema.Dialect, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("sqlstore: dsn is required")
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "postgresql", "pg":
		db, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlstore: open postgres: %w", err)
		}
		return db, pgdialect.New(), nil
	case DriverSQLite, "sqlite":
		db, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
		}
		return db, sqlitedialect.New(), nil
	default:
		return nil, nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
