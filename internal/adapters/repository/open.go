package repository

import (
	"context"
	"fmt"
)

// Open builds the store named by driver: memory, sqlite or postgres.
func Open(ctx context.Context, driver, sqlitePath, databaseURL string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(ctx, sqlitePath)
	case "postgres":
		return NewPostgresStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
