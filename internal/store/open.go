package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/config"
)

// Open constructs a Store for the configured driver. Supported drivers are
// "postgres" and "sqlite".
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
