package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
)

// ValidatePostgresConfig performs basic sanity checks on Postgres-related settings.
func ValidatePostgresConfig(cfg listmeta.DatabaseConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("database.port must be a valid TCP port")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("database.maxConnections must be greater than 0")
	}
	if cfg.UseIAM && cfg.Region == "" {
		return fmt.Errorf("database.region is required when useIAM is set")
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// PingWithTimeout pings p, bounding the call by timeout (5s when zero).
func PingWithTimeout(ctx context.Context, p pinger, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return listmeta.NewListMetaError(listmeta.ErrorTypeStorage, listmeta.ErrCodeConnectionFailed, "postgres ping failed").WithCause(err)
	}
	return nil
}

// PostgresPinger is the part of a pool PostgresHealthCheck needs.
type PostgresPinger interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresHealthCheck pings p and then runs the thumbnail lookup for list 0.
// A missing row is healthy; an error means the mapping table or one of its
// columns cannot be read.
func PostgresHealthCheck(ctx context.Context, p PostgresPinger, cfg listmeta.DatabaseConfig, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := PingWithTimeout(ctx, p, timeout); err != nil {
		return err
	}

	repo := NewPostgresThumbnailRepository(p, cfg.TableNames.Thumbnails, cfg.Columns.ThumbnailPath, cfg.Columns.ThumbnailListID)
	if _, _, err := repo.ThumbnailPath(ctx, 0); err != nil {
		return fmt.Errorf("thumbnail lookup: %w", err)
	}
	return nil
}
